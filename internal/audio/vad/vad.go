package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"voicekey/internal/audio/wavfile"
)

const (
	frameMs = 30
	padMs   = 300
)

// Supported reports whether the detector can process audio at rate.
func Supported(rate int) bool {
	switch rate {
	case 8000, 16000, 32000, 48000:
		return true
	}
	return false
}

// Trim drops leading and trailing non-speech from mono samples, keeping a
// short pad around the voiced region. Unsupported rates are returned
// unchanged. When no frame is voiced the result is empty.
func Trim(samples []float32, rate, mode int) ([]float32, error) {
	if !Supported(rate) || len(samples) == 0 {
		return samples, nil
	}
	frameLen := rate * frameMs / 1000
	if !webrtcvad.ValidRateAndFrameLength(rate, frameLen) {
		return samples, nil
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("create vad: %w", err)
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("set vad mode %d: %w", mode, err)
	}

	return trim(samples, rate, frameLen, func(frame []byte) (bool, error) {
		return v.Process(rate, frame)
	})
}

// trim keeps the span from the first to the last voiced frame, widened by
// padMs on both sides and clamped to the buffer.
func trim(samples []float32, rate, frameLen int, voiced func(frame []byte) (bool, error)) ([]float32, error) {
	pcm := toBytes(samples)
	first, last := -1, -1
	for start := 0; start+frameLen <= len(samples); start += frameLen {
		ok, err := voiced(pcm[start*2 : (start+frameLen)*2])
		if err != nil {
			return nil, fmt.Errorf("vad process: %w", err)
		}
		if ok {
			if first < 0 {
				first = start
			}
			last = start + frameLen
		}
	}
	if first < 0 {
		return samples[:0], nil
	}

	pad := rate * padMs / 1000
	from := max(first-pad, 0)
	to := min(last+pad, len(samples))
	return samples[from:to], nil
}

func toBytes(samples []float32) []byte {
	ints := wavfile.ToInt16(samples)
	out := make([]byte, len(ints)*2)
	for i, s := range ints {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
