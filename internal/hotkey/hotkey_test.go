package hotkey

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		mods Mod
		key  string
	}{
		{"f9", 0, "f9"},
		{"F10", 0, "f10"},
		{"alt+q", ModAlt, "q"},
		{"Ctrl + Shift + F1", ModCtrl | ModShift, "f1"},
		{"escape", 0, "esc"},
		{"win+num5", ModSuper, "numpad5"},
		{"ctrl+7", ModCtrl, "7"},
		{"f24", 0, "f24"},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got.Mods != c.mods || got.Key != c.key {
			t.Fatalf("Parse(%q) = %+v, want mods=%d key=%s", c.in, got, c.mods, c.key)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "hyper+a", "f25", "f0", "ctrl+", "numpad12", "é"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) should fail", in)
		}
	}
}

func TestComboString(t *testing.T) {
	c, err := Parse("shift+ctrl+a")
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != "ctrl+shift+a" {
		t.Fatalf("unexpected %q", c.String())
	}
	if n, ok := (Combo{Key: "f12"}).Function(); !ok || n != 12 {
		t.Fatalf("Function() = %d, %v", n, ok)
	}
	if _, ok := (Combo{Key: "a"}).Function(); ok {
		t.Fatalf("a is not a function key")
	}
}

func TestDetect(t *testing.T) {
	if Detect(false, true) != Press || Detect(true, false) != Release {
		t.Fatalf("edges not detected")
	}
	if Detect(true, true) != NoEdge || Detect(false, false) != NoEdge {
		t.Fatalf("steady state must not produce edges")
	}
}

type fakeState struct {
	down   atomic.Bool
	closed atomic.Bool
}

func (f *fakeState) Pressed() bool { return f.down.Load() }
func (f *fakeState) Close() error  { f.closed.Store(true); return nil }

func TestPollerEdges(t *testing.T) {
	rec, spk := &fakeState{}, &fakeState{}
	var events []string
	p := NewPoller(time.Millisecond, nil)
	p.Add(Binding{
		Name:      "record",
		State:     rec,
		OnPress:   func() { events = append(events, "record-down") },
		OnRelease: func() { events = append(events, "record-up") },
	})
	p.Add(Binding{
		Name:    "speak",
		State:   spk,
		OnPress: func() { events = append(events, "speak-down") },
	})

	p.tick()
	rec.down.Store(true)
	p.tick()
	p.tick()
	spk.down.Store(true)
	rec.down.Store(false)
	p.tick()
	spk.down.Store(false)
	p.tick()
	spk.down.Store(true)
	p.tick()

	got := strings.Join(events, ",")
	want := "record-down,record-up,speak-down,speak-down"
	if got != want {
		t.Fatalf("events %s, want %s", got, want)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !rec.closed.Load() || !spk.closed.Load() {
		t.Fatalf("states not closed")
	}
}

func TestPollerRun(t *testing.T) {
	st := &fakeState{}
	pressed := make(chan struct{}, 1)
	p := NewPoller(2*time.Millisecond, nil)
	p.Add(Binding{Name: "k", State: st, OnPress: func() { pressed <- struct{}{} }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	st.down.Store(true)
	select {
	case <-pressed:
	case <-time.After(2 * time.Second):
		t.Fatalf("press not observed")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
