package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"voicekey/internal/audio/wavfile"
	"voicekey/internal/config"
	"voicekey/internal/history"
	"voicekey/internal/record"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPromptDevice(t *testing.T) {
	devices := []record.DeviceInfo{
		{Name: "Built-in Mic", MaxInputChannels: 1, DefaultSampleRate: 48000, IsDefault: true},
		{Name: "USB Headset", MaxInputChannels: 2, DefaultSampleRate: 44100},
	}
	var out bytes.Buffer
	idx, err := promptDevice(strings.NewReader("0\nabc\n2\n"), &out, devices)
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	text := out.String()
	if strings.Count(text, "Invalid selection. Please try again.") != 2 {
		t.Fatalf("expected two rejections:\n%s", text)
	}
	if !strings.Contains(text, "[1] Built-in Mic (default)") || !strings.Contains(text, "Selected: USB Headset") {
		t.Fatalf("unexpected prompt output:\n%s", text)
	}
}

func TestPromptDeviceEOF(t *testing.T) {
	_, err := promptDevice(strings.NewReader("9\n"), io.Discard, []record.DeviceInfo{{Name: "a"}})
	if err == nil {
		t.Fatalf("expected error when input ends")
	}
	if _, err := promptDevice(strings.NewReader("1\n"), io.Discard, nil); err == nil {
		t.Fatalf("expected error without devices")
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicekey.yaml")
	out, err := execute(t, "init-config", path)
	if err != nil {
		t.Fatalf("init-config: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("unexpected output %q", out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.RecordKey != config.DefaultConfig().RecordKey {
		t.Fatalf("written config lost defaults: %+v", cfg)
	}
	if _, err := execute(t, "init-config", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := execute(t, "init-config", "--force", path); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}

func TestTranscribeCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\necho '[BLANK_AUDIO] hi there'\n"), 0755); err != nil {
		t.Fatal(err)
	}
	model := filepath.Join(dir, "model.bin")
	if err := os.WriteFile(model, []byte("m"), 0644); err != nil {
		t.Fatal(err)
	}
	wav := filepath.Join(dir, "in.wav")
	if err := wavfile.Write(wav, []float32{0.1, 0.2, 0.3}, 16000, 1); err != nil {
		t.Fatal(err)
	}
	outFile := filepath.Join(dir, "out.txt")

	_, err := execute(t, "transcribe", wav,
		"--whisper-path", exe, "--whisper-model", model,
		"--tts-config", filepath.Join(dir, "none.txt"),
		"--output", outFile)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	b, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(b) != "hi there" {
		t.Fatalf("unexpected transcript %q", b)
	}

	stdout, err := execute(t, "transcribe", wav, "--whisper-path", exe, "--whisper-model", model, "--tts-config", filepath.Join(dir, "none.txt"))
	if err != nil || strings.TrimSpace(stdout) != "hi there" {
		t.Fatalf("stdout transcript %q (%v)", stdout, err)
	}
}

func TestTranscribeCommandMissingModel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	wav := filepath.Join(dir, "in.wav")
	if err := wavfile.Write(wav, []float32{0.1}, 16000, 1); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "transcribe", wav, "--whisper-path", exe, "--whisper-model", filepath.Join(dir, "nope.bin"))
	if err == nil || !strings.Contains(err.Error(), "download a ggml model") {
		t.Fatalf("expected model hint, got %v", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	when := time.Date(2024, 3, 4, 5, 6, 7, 0, time.Local)
	if _, err := store.Add(context.Background(), history.Entry{Kind: history.KindTranscript, Text: "first\nline", CreatedAt: when}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	out, err := execute(t, "history", "--history-db", db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "2024-03-04 05:06:07") || !strings.Contains(out, "first line") {
		t.Fatalf("unexpected history output %q", out)
	}

	if _, err := execute(t, "history"); err == nil {
		t.Fatalf("expected error when history is disabled")
	}
}
