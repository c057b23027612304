package record

import (
	"errors"
	"sync"
	"testing"
)

type fakeStream struct {
	mu      sync.Mutex
	started bool
	stopped bool
	closed  bool
	stopErr error
}

func (s *fakeStream) Start() error { s.mu.Lock(); s.started = true; s.mu.Unlock(); return nil }
func (s *fakeStream) Stop() error  { s.mu.Lock(); s.stopped = true; s.mu.Unlock(); return s.stopErr }
func (s *fakeStream) Close() error { s.mu.Lock(); s.closed = true; s.mu.Unlock(); return nil }

type fakeSource struct {
	cb      func([]float32)
	streams []*fakeStream
	openErr error
}

func (f *fakeSource) Open(cb func([]float32)) (Stream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.cb = cb
	s := &fakeStream{}
	f.streams = append(f.streams, s)
	return s, nil
}
func (f *fakeSource) SampleRate() int { return 48000 }
func (f *fakeSource) Channels() int   { return 1 }
func (f *fakeSource) Name() string    { return "fake" }

func TestStartStopCollectsSamples(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil)

	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !r.Recording() {
		t.Fatalf("expected recording")
	}
	src.cb([]float32{0.1, 0.2})
	src.cb([]float32{0.3})

	data, err := r.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(data) != 3 || data[2] != 0.3 {
		t.Fatalf("unexpected samples: %v", data)
	}
	if r.Recording() {
		t.Fatalf("expected not recording after stop")
	}
	s := src.streams[0]
	if !s.started || !s.stopped || !s.closed {
		t.Fatalf("stream lifecycle incomplete: %+v", s)
	}

	again, err := r.Stop()
	if err != nil || len(again) != 0 {
		t.Fatalf("second stop should be empty, got %v %v", again, err)
	}
}

func TestStartClearsPreviousBuffer(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil)

	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	src.cb([]float32{1, 1, 1})
	if err := r.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !src.streams[0].closed {
		t.Fatalf("previous stream should be closed on restart")
	}
	src.cb([]float32{0.5})
	data, _ := r.Stop()
	if len(data) != 1 || data[0] != 0.5 {
		t.Fatalf("expected only new samples, got %v", data)
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := New(&fakeSource{}, nil)
	data, err := r.Stop()
	if err != nil || data == nil || len(data) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", data, err)
	}
}

func TestStartErrors(t *testing.T) {
	if err := New(nil, nil).Start(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	boom := errors.New("device busy")
	r := New(&fakeSource{openErr: boom}, nil)
	if err := r.Start(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	if r.Recording() {
		t.Fatalf("failed start must not leave a stream")
	}
}

func TestStopReportsStreamError(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	src.streams[0].stopErr = errors.New("stop failed")
	src.cb([]float32{0.2})
	data, err := r.Stop()
	if err == nil {
		t.Fatalf("expected stop error")
	}
	if len(data) != 1 {
		t.Fatalf("samples must still be returned, got %v", data)
	}
}

func TestConcurrentCallbacks(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				src.cb([]float32{0, 0})
			}
		}()
	}
	wg.Wait()
	data, _ := r.Stop()
	if len(data) != 8*100*2 {
		t.Fatalf("expected %d samples, got %d", 1600, len(data))
	}
}

func TestClampChannels(t *testing.T) {
	if clampChannels(2, 1) != 1 || clampChannels(0, 2) != 1 || clampChannels(2, 0) != 2 {
		t.Fatalf("unexpected clamp results")
	}
}
