package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestArgs(t *testing.T) {
	args, err := Args(Options{Codec: "opus", Channels: 1, SampleRate: 16000, BitRate: 32}, "in.wav", "out.ogg")
	if err != nil {
		t.Fatalf("args: %v", err)
	}
	got := strings.Join(args, " ")
	want := "-y -hide_banner -loglevel error -i in.wav -ac 1 -ar 16000 -c:a libopus -b:a 32k out.ogg"
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}

	args, err = Args(Options{Codec: "FLAC", BitRate: 320}, "a.wav", "a.flac")
	if err != nil {
		t.Fatalf("args: %v", err)
	}
	if strings.Contains(strings.Join(args, " "), "-b:a") {
		t.Fatalf("lossless codec must not carry a bit rate: %v", args)
	}
	if strings.Contains(strings.Join(args, " "), "-ar") {
		t.Fatalf("zero sample rate must keep the input rate: %v", args)
	}
}

func TestArgsUnsupported(t *testing.T) {
	if _, err := Args(Options{Codec: "amr"}, "in", "out"); err == nil {
		t.Fatalf("expected error for unsupported codec")
	}
}

func TestConvertFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\necho 'no such encoder' >&2\nexit 1\n"), 0755); err != nil {
		t.Fatal(err)
	}
	err := Convert(context.Background(), Options{Binary: bin, Codec: "mp3"}, "in.wav", "out.mp3")
	if err == nil || !strings.Contains(err.Error(), "no such encoder") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
