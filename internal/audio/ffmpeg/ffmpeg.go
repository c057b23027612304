package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Options select the output encoding.
type Options struct {
	// Binary defaults to "ffmpeg" on PATH.
	Binary     string
	Codec      string
	Channels   int
	SampleRate int
	// BitRate in kbit/s, used by lossy codecs only.
	BitRate int
}

// Args builds the ffmpeg command line converting in to out.
func Args(opts Options, in, out string) ([]string, error) {
	codec, lossy := codecFor(opts.Codec)
	if codec == "" {
		return nil, fmt.Errorf("unsupported codec: %s", opts.Codec)
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", in, "-ac", strconv.Itoa(channels)}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}
	args = append(args, "-c:a", codec)
	if lossy {
		rate := opts.BitRate
		if rate <= 0 {
			rate = 128
		}
		args = append(args, "-b:a", strconv.Itoa(rate)+"k")
	}
	return append(args, out), nil
}

// Convert runs ffmpeg and returns its stderr in the error on failure.
func Convert(ctx context.Context, opts Options, in, out string) error {
	args, err := Args(opts, in, out)
	if err != nil {
		return err
	}
	bin := opts.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func codecFor(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "opus", "libopus":
		return "libopus", true
	case "aac":
		return "aac", true
	case "mp3":
		return "libmp3lame", true
	case "vorbis", "libvorbis":
		return "libvorbis", true
	case "flac":
		return "flac", false
	case "pcm", "wav", "pcm_s16le":
		return "pcm_s16le", false
	default:
		return "", false
	}
}
