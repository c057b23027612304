// Package cli holds the voicekey command tree.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicekey/internal/config"
	"voicekey/internal/logx"
)

const defaultConfigFile = "config.json"

type options struct {
	configPath string
	verbose    bool
	flags      *config.FlagValues
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the hotkey loop.
func NewRootCommand() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "voicekey",
		Short: "Hold a hotkey to dictate, press another to hear the selection",
		Long: `voicekey pastes speech at the cursor and reads selected text aloud.

Hold the record key (default F9) to capture the microphone; on release the
audio is transcribed by a local whisper.cpp executable (or an HTTP endpoint)
and pasted into the focused window. Press the speak key (default F10) to read
the current selection with piper; press it again to stop playback.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHotkeys(cmd, o)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "config file (.json, .yaml or .toml; default ./config.json when present)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log caller information")
	o.flags = config.BindFlags(pf)

	root.AddCommand(
		newRunCommand(o),
		newDevicesCommand(),
		newTranscribeCommand(o),
		newSayCommand(o),
		newInitConfigCommand(),
		newHistoryCommand(o),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newRunCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Listen for the record and speak hotkeys (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHotkeys(cmd, o)
		},
	}
}

// load resolves the configuration and builds the base logger.
func (o *options) load() (config.Config, *zap.SugaredLogger, error) {
	path := o.configPath
	if path == "" {
		if info, err := os.Stat(defaultConfigFile); err == nil && !info.IsDir() {
			path = defaultConfigFile
		}
	}
	cfg, err := config.Resolve(path, o.flags)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logx.New(o.verbose)
	if err != nil {
		return cfg, nil, err
	}
	if path != "" {
		log.Debugw("loaded config", "path", path)
	}
	msg, err := config.InitCacheDir(&cfg)
	if err != nil {
		log.Warnw("cache dir disabled", "error", err)
	} else if msg != "" {
		log.Debug(msg)
	}
	return cfg, log, nil
}
