package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"voicekey/internal/audio/vad"
	"voicekey/internal/audio/wavfile"
	"voicekey/internal/history"
	"voicekey/internal/narrate"
)

// DisplayWidth bounds previews of selected text in the log.
const DisplayWidth = 50

// RecordPress starts capturing.
func (a *App) RecordPress() {
	a.busy.Lock()
	defer a.busy.Unlock()

	a.log.Info("Recording started...")
	a.deps.Notifier.Notify("Recording started")
	if err := a.deps.Recorder.Start(); err != nil {
		a.log.Errorw("Failed to start recording", "error", err)
	}
}

// RecordRelease stops capturing, transcribes the audio and pastes the text.
// Every failure is logged; none is fatal.
func (a *App) RecordRelease(ctx context.Context) {
	a.busy.Lock()
	defer a.busy.Unlock()

	a.log.Info("Recording stopped. Transcribing...")
	samples, err := a.deps.Recorder.Stop()
	if err != nil {
		a.log.Errorw("Failed to stop recording", "error", err)
		if len(samples) == 0 {
			return
		}
	}
	if len(samples) == 0 {
		a.log.Info("Audio buffer empty, ignoring.")
		return
	}

	rate, channels := a.deps.Recorder.SampleRate(), a.deps.Recorder.Channels()
	a.log.Infof("Captured %d samples.", len(samples))
	if a.cfg.TrimSilence && channels == 1 {
		trimmed, err := vad.Trim(samples, rate, a.cfg.VADMode)
		switch {
		case err != nil:
			a.log.Warnw("silence trimming failed, using full recording", "error", err)
		case len(trimmed) == 0:
			a.log.Info("No speech detected, ignoring.")
			return
		default:
			a.log.Debugw("trimmed silence", "before", len(samples), "after", len(trimmed))
			samples = trimmed
		}
	}

	wav := tempPath(a.tempDir, recordPrefix, "wav")
	if err := wavfile.Write(wav, samples, rate, channels); err != nil {
		a.log.Errorw("Failed to save WAV file", "error", err)
		return
	}

	text, err := a.deps.Transcriber.Transcribe(ctx, wav)
	a.settle(wav, text, err == nil)
	if err != nil {
		a.log.Errorw("Transcription failed", "error", err)
		a.deps.Notifier.Notify("Transcription failed")
		return
	}
	a.log.Infof("Transcribed: '%s'", text)
	if text == "" {
		return
	}
	if err := a.deps.Clipboard.PasteText(text); err != nil {
		a.log.Errorw("Failed to paste", "error", err)
		a.deps.Notifier.Notify("Paste failed")
		return
	}
	a.deps.Notifier.Notify("Paste success")
	a.remember(ctx, history.KindTranscript, text, wavfile.Duration(len(samples), rate, channels))
}

// SpeakPress stops playback when something is playing, otherwise reads the
// current selection aloud.
func (a *App) SpeakPress(ctx context.Context) {
	a.busy.Lock()
	defer a.busy.Unlock()

	n := a.deps.Narrator
	if n == nil {
		a.log.Info("TTS not available. Please configure Piper.")
		return
	}
	if n.IsPlaying() {
		a.log.Info("Stopping TTS playback...")
		if err := n.Stop(); err != nil {
			a.log.Errorw("Failed to stop playback", "error", err)
		}
		return
	}

	text, err := a.deps.Clipboard.CopySelection()
	if err != nil {
		a.log.Errorw("Failed to get selected text", "error", err)
		return
	}
	a.log.Debugf("Clipboard contains: '%s'", TruncateForDisplay(text, DisplayWidth))
	if strings.TrimSpace(text) == "" {
		a.log.Info("No text selected.")
		return
	}
	a.log.Infof("Speaking: '%s'", TruncateForDisplay(text, DisplayWidth))
	if err := n.Speak(ctx, text); err != nil {
		if errors.Is(err, narrate.ErrEmptyText) {
			a.log.Info("No text selected.")
			return
		}
		a.log.Errorw("TTS failed", "error", err)
		return
	}
	a.remember(ctx, history.KindNarration, text, 0)
}

func (a *App) remember(ctx context.Context, kind, text string, audio time.Duration) {
	if a.deps.History == nil {
		return
	}
	if _, err := a.deps.History.Add(ctx, history.Entry{Kind: kind, Text: text, AudioMs: audio.Milliseconds()}); err != nil {
		a.log.Warnw("saving history failed", "error", err)
	}
}

// TruncateForDisplay flattens text onto one line and cuts it to limit
// runes, marking the cut with "...".
func TruncateForDisplay(text string, limit int) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
