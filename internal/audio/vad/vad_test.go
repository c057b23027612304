package vad

import "testing"

func TestTrimUnsupportedRate(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out, err := Trim(in, 44100, 2)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("unsupported rate must pass through, got %d samples", len(out))
	}
}

func TestTrimSilence(t *testing.T) {
	out, err := Trim(make([]float32, 16000), 16000, 3)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("digital silence should trim to nothing, got %d samples", len(out))
	}
}

// loud marks any frame with a non-zero sample as voiced.
func loud(frame []byte) (bool, error) {
	for _, b := range frame {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}

func speechAt(n int, spans ...[2]int) []float32 {
	s := make([]float32, n)
	for _, sp := range spans {
		for i := sp[0]; i < sp[1]; i++ {
			s[i] = 0.5
		}
	}
	return s
}

func TestTrimKeepsPaddedSpeech(t *testing.T) {
	const rate, frameLen = 16000, 480
	in := speechAt(32000, [2]int{9600, 14400})

	out, err := trim(in, rate, frameLen, loud)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	// 300ms pad at 16kHz is 4800 samples on each side.
	if len(out) != 14400 {
		t.Fatalf("got %d samples, want 14400", len(out))
	}
	if out[4799] != 0 || out[4800] != 0.5 || out[len(out)-4801] != 0.5 || out[len(out)-4800] != 0 {
		t.Fatalf("speech not centred in the padded window")
	}
	if &out[0] != &in[4800] {
		t.Fatalf("window should start 4800 samples into the input")
	}
}

func TestTrimClampsPadAtEdges(t *testing.T) {
	const rate, frameLen = 16000, 480
	in := speechAt(32000, [2]int{480, 960}, [2]int{31200, 31680})

	out, err := trim(in, rate, frameLen, loud)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if len(out) != len(in) || &out[0] != &in[0] {
		t.Fatalf("pad must clamp to the buffer, got %d of %d samples", len(out), len(in))
	}
}
