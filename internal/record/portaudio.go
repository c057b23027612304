package record

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DeviceInfo describes an input device.
type DeviceInfo struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// Init initialises PortAudio. The returned function terminates it.
func Init() (func() error, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	return portaudio.Terminate, nil
}

func inputDevices() ([]*portaudio.DeviceInfo, error) {
	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	var inputs []*portaudio.DeviceInfo
	for _, d := range all {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}
	return inputs, nil
}

// ListInputDevices returns the available input devices in a stable order.
// Index values are 0-based positions in that list.
func ListInputDevices() ([]DeviceInfo, error) {
	terminate, err := Init()
	if err != nil {
		return nil, err
	}
	defer terminate()

	inputs, err := inputDevices()
	if err != nil {
		return nil, err
	}
	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	out := make([]DeviceInfo, 0, len(inputs))
	for i, d := range inputs {
		out = append(out, DeviceInfo{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefault:         d.Name == defaultName,
		})
	}
	return out, nil
}

// PortAudioSource captures from a PortAudio input device at the device's
// default sample rate. PortAudio must be initialised while it is used.
type PortAudioSource struct {
	dev      *portaudio.DeviceInfo
	channels int
}

// OpenDevice selects an input device by 0-based index into
// ListInputDevices, or the system default when index is negative.
// channels is clamped to what the device supports.
func OpenDevice(index, channels int) (*PortAudioSource, error) {
	var dev *portaudio.DeviceInfo
	if index < 0 {
		d, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		dev = d
	} else {
		inputs, err := inputDevices()
		if err != nil {
			return nil, err
		}
		if index >= len(inputs) {
			return nil, fmt.Errorf("device index %d not found (%d input devices)", index, len(inputs))
		}
		dev = inputs[index]
	}
	return &PortAudioSource{dev: dev, channels: clampChannels(channels, dev.MaxInputChannels)}, nil
}

func clampChannels(want, limit int) int {
	if want < 1 {
		want = 1
	}
	if limit > 0 && want > limit {
		return limit
	}
	return want
}

// Open starts a callback stream; PortAudio invokes onSamples from its own
// thread with interleaved samples.
func (s *PortAudioSource) Open(onSamples func(in []float32)) (Stream, error) {
	params := portaudio.HighLatencyParameters(s.dev, nil)
	params.Input.Channels = s.channels
	params.SampleRate = s.dev.DefaultSampleRate
	stream, err := portaudio.OpenStream(params, onSamples)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *PortAudioSource) SampleRate() int { return int(s.dev.DefaultSampleRate) }

func (s *PortAudioSource) Channels() int { return s.channels }

func (s *PortAudioSource) Name() string { return s.dev.Name }
