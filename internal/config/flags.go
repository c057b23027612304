package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagValues holds parsed flags with explicit set tracking. Only flags the
// user actually passed override file and environment values.
type FlagValues struct {
	staged   Config
	bindings []*binding
}

type binding struct {
	name  string
	set   bool
	apply func(dst *Config)
}

type stringFlag struct {
	target *string
	set    *bool
}

func (s *stringFlag) String() string {
	if s == nil || s.target == nil {
		return ""
	}
	return *s.target
}

func (s *stringFlag) Set(v string) error {
	*s.target = v
	*s.set = true
	return nil
}

func (s *stringFlag) Type() string { return "string" }

type intFlag struct {
	target *int
	set    *bool
}

func (i *intFlag) String() string {
	if i == nil || i.target == nil {
		return ""
	}
	return strconv.Itoa(*i.target)
}

func (i *intFlag) Set(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*i.target = n
	*i.set = true
	return nil
}

func (i *intFlag) Type() string { return "int" }

type floatFlag struct {
	target *float64
	set    *bool
}

func (f *floatFlag) String() string {
	if f == nil || f.target == nil {
		return ""
	}
	return strconv.FormatFloat(*f.target, 'g', -1, 64)
}

func (f *floatFlag) Set(v string) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return err
	}
	*f.target = n
	*f.set = true
	return nil
}

func (f *floatFlag) Type() string { return "float" }

type boolFlag struct {
	target *bool
	set    *bool
}

func (b *boolFlag) String() string {
	if b == nil || b.target == nil {
		return ""
	}
	return strconv.FormatBool(*b.target)
}

func parseBoolExt(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", v)
}

func (b *boolFlag) Set(v string) error {
	n, err := parseBoolExt(v)
	if err != nil {
		return err
	}
	*b.target = n
	*b.set = true
	return nil
}

func (b *boolFlag) Type() string { return "bool" }

func bind[T any](fs *pflag.FlagSet, fv *FlagValues, name, usage string, field func(*Config) *T, mk func(*T, *bool) pflag.Value) *pflag.Flag {
	b := &binding{name: name}
	b.apply = func(dst *Config) { *field(dst) = *field(&fv.staged) }
	fv.bindings = append(fv.bindings, b)
	return fs.VarPF(mk(field(&fv.staged), &b.set), name, "", usage)
}

func str(fs *pflag.FlagSet, fv *FlagValues, name, usage string, field func(*Config) *string) {
	bind(fs, fv, name, usage, field, func(t *string, s *bool) pflag.Value { return &stringFlag{t, s} })
}

func integer(fs *pflag.FlagSet, fv *FlagValues, name, usage string, field func(*Config) *int) {
	bind(fs, fv, name, usage, field, func(t *int, s *bool) pflag.Value { return &intFlag{t, s} })
}

func float(fs *pflag.FlagSet, fv *FlagValues, name, usage string, field func(*Config) *float64) {
	bind(fs, fv, name, usage, field, func(t *float64, s *bool) pflag.Value { return &floatFlag{t, s} })
}

func boolean(fs *pflag.FlagSet, fv *FlagValues, name, usage string, field func(*Config) *bool) {
	f := bind(fs, fv, name, usage, field, func(t *bool, s *bool) pflag.Value { return &boolFlag{t, s} })
	f.NoOptDefVal = "true"
}

// BindFlags registers all config flags on fs and returns the FlagValues
// that collects them.
func BindFlags(fs *pflag.FlagSet) *FlagValues {
	fv := &FlagValues{staged: DefaultConfig()}

	str(fs, fv, "record-key", "hold-to-record hotkey (e.g. f9, ctrl+alt+r)", func(c *Config) *string { return &c.RecordKey })
	str(fs, fv, "speak-key", "read-selection hotkey; press again to stop", func(c *Config) *string { return &c.SpeakKey })
	integer(fs, fv, "poll-interval", "hotkey polling interval (ms)", func(c *Config) *int { return &c.PollIntervalMs })

	integer(fs, fv, "device", "input device (1-based; 0 asks, -1 system default)", func(c *Config) *int { return &c.DeviceIndex })
	integer(fs, fv, "channels", "capture channels", func(c *Config) *int { return &c.Channels })
	boolean(fs, fv, "trim-silence", "trim leading/trailing silence with VAD", func(c *Config) *bool { return &c.TrimSilence })
	integer(fs, fv, "vad-mode", "VAD aggressiveness (0..3)", func(c *Config) *int { return &c.VADMode })

	str(fs, fv, "stt-backend", "transcription backend: exec or http", func(c *Config) *string { return &c.STTBackend })
	str(fs, fv, "whisper-path", "transcription executable (default: search cwd, then PATH)", func(c *Config) *string { return &c.WhisperPath })
	str(fs, fv, "whisper-model", "transcription model file", func(c *Config) *string { return &c.WhisperModel })
	str(fs, fv, "whisper-args", "extra transcription arguments (shell syntax)", func(c *Config) *string { return &c.WhisperArgs })
	str(fs, fv, "language", "transcription language (auto to detect)", func(c *Config) *string { return &c.Language })
	str(fs, fv, "prompt", "initial transcription prompt", func(c *Config) *string { return &c.Prompt })

	str(fs, fv, "api-endpoint", "remote transcription URL (http backend)", func(c *Config) *string { return &c.APIEndpoint })
	str(fs, fv, "token", "authorization token (Bearer)", func(c *Config) *string { return &c.Token })
	str(fs, fv, "api-model", "remote model name", func(c *Config) *string { return &c.APIModel })
	str(fs, fv, "text-path", "JSON path to extract text", func(c *Config) *string { return &c.TEXTPath })
	str(fs, fv, "extra-config", "extra JSON merged into the upload form", func(c *Config) *string { return &c.ExtraConfig })
	str(fs, fv, "codecs", "upload codec (wav uploads as is)", func(c *Config) *string { return &c.CODECS })
	str(fs, fv, "container", "upload container", func(c *Config) *string { return &c.CONTAINER })
	integer(fs, fv, "bit-rate", "upload bit rate (kbps)", func(c *Config) *int { return &c.BIT_RATE })
	integer(fs, fv, "request-timeout", "request timeout seconds", func(c *Config) *int { return &c.RequestTimeout })
	integer(fs, fv, "max-retry", "max upload attempts", func(c *Config) *int { return &c.MaxRetry })
	float(fs, fv, "retry-base-delay", "retry base delay seconds", func(c *Config) *float64 { return &c.RetryBaseDelay })
	boolean(fs, fv, "enable-http2", "enable HTTP/2", func(c *Config) *bool { return &c.EnableHTTP2 })
	boolean(fs, fv, "verify-ssl", "verify TLS certificates", func(c *Config) *bool { return &c.VerifySSL })

	str(fs, fv, "piper-path", "speech synthesis executable", func(c *Config) *string { return &c.PiperPath })
	str(fs, fv, "piper-model", "speech synthesis voice model", func(c *Config) *string { return &c.PiperModel })
	float(fs, fv, "speed", "speech length scale (<1 faster, >1 slower)", func(c *Config) *float64 { return &c.Speed })
	str(fs, fv, "player", "audio player command ({file} is replaced by the wav path)", func(c *Config) *string { return &c.Player })
	str(fs, fv, "tts-config", "KEY=VALUE narrator config file", func(c *Config) *string { return &c.NarratorFile })

	boolean(fs, fv, "restore-clipboard", "restore clipboard contents after pasting", func(c *Config) *bool { return &c.RestoreClipboard })
	str(fs, fv, "cache-dir", "cache directory", func(c *Config) *string { return &c.CacheDir })
	boolean(fs, fv, "keep-cache", "keep recordings and transcripts in cache-dir", func(c *Config) *bool { return &c.KeepCache })
	str(fs, fv, "history-db", "sqlite history database path", func(c *Config) *string { return &c.HistoryDB })
	integer(fs, fv, "history-keep", "history entries to keep", func(c *Config) *int { return &c.HistoryKeep })
	boolean(fs, fv, "notification", "enable desktop notifications", func(c *Config) *bool { return &c.Notification })

	boolean(fs, fv, "record-debug", "enable record debug output", func(c *Config) *bool { return &c.RECORD_DEBUG })
	boolean(fs, fv, "hotkey-debug", "enable hotkey debug output", func(c *Config) *bool { return &c.HOTKEY_DEBUG })
	boolean(fs, fv, "stt-debug", "enable transcription debug output", func(c *Config) *bool { return &c.STT_DEBUG })
	boolean(fs, fv, "tts-debug", "enable narration debug output", func(c *Config) *bool { return &c.TTS_DEBUG })
	boolean(fs, fv, "upload-debug", "enable upload debug output", func(c *Config) *bool { return &c.UPLOAD_DEBUG })
	boolean(fs, fv, "ffmpeg-debug", "enable ffmpeg debug output", func(c *Config) *bool { return &c.FFMPEG_DEBUG })

	return fv
}

// ApplyFlags applies present flags to the config.
func ApplyFlags(cfg *Config, fv *FlagValues) {
	for _, b := range fv.bindings {
		if b.set {
			b.apply(cfg)
		}
	}
}

// AnySet reports whether any flag was explicitly set by the user.
func (fv *FlagValues) AnySet() bool {
	for _, b := range fv.bindings {
		if b.set {
			return true
		}
	}
	return false
}

// IsSet reports whether the named flag was explicitly set.
func (fv *FlagValues) IsSet(name string) bool {
	for _, b := range fv.bindings {
		if b.name == name {
			return b.set
		}
	}
	return false
}
