package record

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"voicekey/internal/logx"
)

// Stream is a running capture stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Source opens capture streams on an input device. onSamples receives
// interleaved float samples from the device callback.
type Source interface {
	Open(onSamples func(in []float32)) (Stream, error)
	SampleRate() int
	Channels() int
	Name() string
}

// ErrNoSource is returned by Start when no input device was configured.
var ErrNoSource = errors.New("no input device selected")

// settleDelay gives the audio backend time to release a device before it
// is reopened.
const settleDelay = 50 * time.Millisecond

// Recorder buffers samples from a Source between Start and Stop.
type Recorder struct {
	mu     sync.Mutex
	buf    []float32
	source Source
	stream Stream
	log    *zap.SugaredLogger
}

// New creates a recorder for source.
func New(source Source, log *zap.SugaredLogger) *Recorder {
	return &Recorder{source: source, log: logx.OrNop(log)}
}

// SetSource replaces the input device used by the next Start.
func (r *Recorder) SetSource(source Source) {
	r.mu.Lock()
	r.source = source
	r.mu.Unlock()
}

// Start begins capturing into a fresh buffer. A stream left over from an
// earlier Start is shut down first.
func (r *Recorder) Start() error {
	if prev := r.takeStream(); prev != nil {
		if err := shutdown(prev); err != nil {
			r.log.Debugw("closing previous stream failed", "error", err)
		}
		time.Sleep(settleDelay)
	}

	r.mu.Lock()
	source := r.source
	r.buf = r.buf[:0]
	r.mu.Unlock()

	if source == nil {
		return ErrNoSource
	}

	stream, err := source.Open(r.append)
	if err != nil {
		return fmt.Errorf("open input stream on %s: %w", source.Name(), err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	r.mu.Lock()
	r.stream = stream
	r.mu.Unlock()

	r.log.Debugw("capture started", "device", source.Name(), "rate", source.SampleRate(), "channels", source.Channels())
	return nil
}

// Stop ends capture and returns the buffered samples, leaving the buffer
// empty. Stop without a running capture returns whatever is buffered,
// usually nothing.
func (r *Recorder) Stop() ([]float32, error) {
	var err error
	if stream := r.takeStream(); stream != nil {
		err = shutdown(stream)
	}

	r.mu.Lock()
	data := r.buf
	r.buf = nil
	r.mu.Unlock()

	r.log.Debugw("capture stopped", "samples", len(data))
	if data == nil {
		data = []float32{}
	}
	return data, err
}

// Recording reports whether a capture stream is open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// SampleRate is the device-reported rate of the current source.
func (r *Recorder) SampleRate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.source == nil {
		return 0
	}
	return r.source.SampleRate()
}

// Channels of the current source.
func (r *Recorder) Channels() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.source == nil {
		return 0
	}
	return r.source.Channels()
}

func (r *Recorder) append(in []float32) {
	r.mu.Lock()
	r.buf = append(r.buf, in...)
	r.mu.Unlock()
}

func (r *Recorder) takeStream() Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stream
	r.stream = nil
	return s
}

func shutdown(s Stream) error {
	return multierr.Append(s.Stop(), s.Close())
}
