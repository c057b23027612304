package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"voicekey/internal/app"
	"voicekey/internal/clipboard"
	"voicekey/internal/config"
	"voicekey/internal/history"
	"voicekey/internal/hotkey/keystate"
	"voicekey/internal/logx"
	"voicekey/internal/notify"
	"voicekey/internal/record"
)

func runHotkeys(cmd *cobra.Command, o *options) (err error) {
	cfg, base, err := o.load()
	if err != nil {
		return err
	}
	defer func() { _ = base.Sync() }()
	ctx := cmd.Context()
	base.Info("Starting voicekey...")

	tr, err := newTranscriber(cfg, base)
	if err != nil {
		return err
	}

	terminate, err := record.Init()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, terminate()) }()

	source, err := openSource(cmd, cfg)
	if err != nil {
		return err
	}
	recLog := logx.Component(base, "record", cfg.RECORD_DEBUG)
	recLog.Infow("using input device", "name", source.Name(), "rate", source.SampleRate(), "channels", source.Channels())

	kb, err := clipboard.NewSystemKeyboard()
	if err != nil {
		return fmt.Errorf("virtual keyboard: %w", err)
	}

	deps := app.Deps{
		Config:      cfg,
		Recorder:    record.New(source, recLog),
		Transcriber: tr,
		Clipboard:   clipboard.NewManager(clipboard.SystemBoard{}, kb, cfg.RestoreClipboard, base.Named("clipboard")),
		Notifier:    notify.New(cfg.Notification, "voicekey", base.Named("notify")),
		Log:         base.Named("app"),
	}

	if n, err := newNarrator(cfg, base); err != nil {
		base.Warnf("TTS narrator not available: %v", err)
		base.Warnf("%s text-to-speech will be disabled.", cfg.SpeakKey)
	} else {
		base.Info("TTS narrator initialized with Piper.")
		deps.Narrator = n
	}

	if cfg.HistoryDB != "" {
		store, err := openHistory(ctx, cfg, base)
		if err != nil {
			base.Warnw("history disabled", "error", err)
		} else {
			defer store.Close()
			deps.History = store
		}
	}

	keyLog := logx.Component(base, "hotkey", cfg.HOTKEY_DEBUG)
	if deps.RecordKey, err = keystate.Watch(cfg.RecordKey); err != nil {
		return fmt.Errorf("record hotkey %q: %w", cfg.RecordKey, err)
	}
	if deps.SpeakKey, err = keystate.Watch(cfg.SpeakKey); err != nil {
		keyLog.Warnw("speak hotkey unavailable", "key", cfg.SpeakKey, "error", err)
		deps.SpeakKey = nil
	}
	keyLog.Debugw("hotkeys ready", "record", cfg.RecordKey, "speak", cfg.SpeakKey, "interval", cfg.PollInterval())
	deps.KeyLog = keyLog

	a, err := app.New(deps)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

// openSource picks the capture device: DEVICE_INDEX n >= 1 selects the
// n-th input, -1 the system default, 0 asks on the terminal.
func openSource(cmd *cobra.Command, cfg config.Config) (*record.PortAudioSource, error) {
	switch {
	case cfg.DeviceIndex < 0:
		return record.OpenDevice(-1, cfg.Channels)
	case cfg.DeviceIndex > 0:
		return record.OpenDevice(cfg.DeviceIndex-1, cfg.Channels)
	}
	devices, err := record.ListInputDevices()
	if err != nil {
		return nil, err
	}
	idx, err := promptDevice(cmd.InOrStdin(), cmd.OutOrStdout(), devices)
	if err != nil {
		return nil, err
	}
	return record.OpenDevice(idx, cfg.Channels)
}

func openHistory(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*history.Store, error) {
	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	if n, err := store.Prune(ctx, cfg.HistoryKeep); err != nil {
		log.Warnw("history prune failed", "error", err)
	} else if n > 0 {
		log.Debugw("pruned history", "removed", n)
	}
	return store, nil
}
