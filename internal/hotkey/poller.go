package hotkey

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"voicekey/internal/logx"
)

// KeyState reports whether a hotkey is currently held.
type KeyState interface {
	Pressed() bool
	Close() error
}

// Edge is a change in key state between two samples.
type Edge int

const (
	NoEdge Edge = iota
	Press
	Release
)

// Detect compares two consecutive samples.
func Detect(prev, now bool) Edge {
	switch {
	case now && !prev:
		return Press
	case !now && prev:
		return Release
	default:
		return NoEdge
	}
}

// Binding ties a key state to press and release handlers. Either handler
// may be nil.
type Binding struct {
	Name      string
	State     KeyState
	OnPress   func()
	OnRelease func()
}

type watched struct {
	Binding
	down bool
}

// Poller samples every binding at a fixed interval and fires handlers on
// edges. Handlers run on the Run goroutine in binding order.
type Poller struct {
	interval time.Duration
	bindings []*watched
	log      *zap.SugaredLogger
}

func NewPoller(interval time.Duration, log *zap.SugaredLogger) *Poller {
	return &Poller{interval: interval, log: logx.OrNop(log)}
}

// Add registers b. Call before Run.
func (p *Poller) Add(b Binding) {
	p.bindings = append(p.bindings, &watched{Binding: b})
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	for _, w := range p.bindings {
		now := w.State.Pressed()
		switch Detect(w.down, now) {
		case Press:
			p.log.Debugw("key pressed", "binding", w.Name)
			if w.OnPress != nil {
				w.OnPress()
			}
		case Release:
			p.log.Debugw("key released", "binding", w.Name)
			if w.OnRelease != nil {
				w.OnRelease()
			}
		}
		w.down = now
	}
}

// Close releases every key state.
func (p *Poller) Close() error {
	var err error
	for _, w := range p.bindings {
		err = multierr.Append(err, w.State.Close())
	}
	return err
}
