package hotkey

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTrackAutorepeat(t *testing.T) {
	var l Latch
	down := make(chan struct{})
	up := make(chan struct{})
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		Track(&l, done, down, up, 200*time.Millisecond)
		close(exited)
	}()

	down <- struct{}{}
	waitFor(t, "press", l.Pressed)

	// autorepeat: release immediately followed by press while held
	for i := 0; i < 5; i++ {
		up <- struct{}{}
		down <- struct{}{}
		for j := 0; j < 4; j++ {
			if !l.Pressed() {
				t.Fatalf("repeat %d: key reported released while held", i)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	start := time.Now()
	up <- struct{}{}
	if !l.Pressed() {
		t.Fatalf("release must wait for the delay")
	}
	waitFor(t, "release", func() bool { return !l.Pressed() })
	if time.Since(start) < 150*time.Millisecond {
		t.Fatalf("released after %v, before the delay", time.Since(start))
	}

	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatalf("Track did not return after done")
	}
}
