package hotkey

import (
	"sync/atomic"
	"time"
)

// ReleaseDelay is how long a keyup must stand before the key counts as
// released. X11 autorepeat turns a held key into keyup/keydown pairs.
const ReleaseDelay = 100 * time.Millisecond

// Latch holds the pressed flag fed by Track.
type Latch struct {
	down atomic.Bool
}

func (l *Latch) Pressed() bool { return l.down.Load() }

// Track feeds l from keydown and keyup events until done is closed. A
// keydown arriving within delay of a keyup cancels the release.
func Track[E any](l *Latch, done <-chan struct{}, keydown, keyup <-chan E, delay time.Duration) {
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	var release <-chan time.Time
	for {
		select {
		case <-done:
			return
		case <-keydown:
			timer.Stop()
			release = nil
			l.down.Store(true)
		case <-keyup:
			timer.Reset(delay)
			release = timer.C
		case <-release:
			release = nil
			l.down.Store(false)
		}
	}
}
