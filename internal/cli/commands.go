package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voicekey/internal/app"
	"voicekey/internal/audio/wavfile"
	"voicekey/internal/config"
	"voicekey/internal/history"
	"voicekey/internal/record"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := record.ListInputDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				return errors.New("no input devices found")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Available microphones:")
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
}

func newTranscribeCommand(o *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "transcribe <file.wav>",
		Short: "Transcribe an audio file and print the text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, base, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = base.Sync() }()

			in := args[0]
			if _, err := os.Stat(in); err != nil {
				return fmt.Errorf("file %q: %w", in, err)
			}
			if clip, err := wavfile.Read(in); err == nil {
				base.Debugw("input audio", "duration", clip.Duration(), "rate", clip.SampleRate, "channels", clip.Channels)
			}

			tr, err := newTranscriber(cfg, base)
			if err != nil {
				return err
			}
			text, err := tr.Transcribe(cmd.Context(), in)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			return os.WriteFile(output, []byte(text), 0644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the text to this file instead of stdout")
	return cmd
}

func newSayCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text...>",
		Short: "Speak text with piper and wait for playback to finish",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, base, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = base.Sync() }()

			n, err := newNarrator(cfg, base)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			text := strings.Join(args, " ")
			base.Infof("Speaking: '%s'", app.TruncateForDisplay(text, app.DisplayWidth))
			if err := n.Speak(ctx, text); err != nil {
				return err
			}
			if err := n.Wait(ctx); err != nil {
				return n.Stop()
			}
			return nil
		},
	}
}

func newInitConfigCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default config file (.json, .yaml or .toml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newHistoryCommand(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcriptions and narrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, base, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = base.Sync() }()
			if cfg.HistoryDB == "" {
				return errors.New("history is disabled; set HISTORY_DB or --history-db")
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-10s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, app.TruncateForDisplay(e.Text, 80))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
