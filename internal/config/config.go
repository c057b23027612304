package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds configurable parameters.
type Config struct {
	RecordKey      string `json:"RECORD_KEY" yaml:"RECORD_KEY" toml:"RECORD_KEY"`
	SpeakKey       string `json:"SPEAK_KEY" yaml:"SPEAK_KEY" toml:"SPEAK_KEY"`
	PollIntervalMs int    `json:"POLL_INTERVAL_MS" yaml:"POLL_INTERVAL_MS" toml:"POLL_INTERVAL_MS"`

	// DeviceIndex is 1-based. 0 asks on startup, -1 uses the system default.
	DeviceIndex int  `json:"DEVICE_INDEX" yaml:"DEVICE_INDEX" toml:"DEVICE_INDEX"`
	Channels    int  `json:"CHANNELS" yaml:"CHANNELS" toml:"CHANNELS"`
	TrimSilence bool `json:"TRIM_SILENCE" yaml:"TRIM_SILENCE" toml:"TRIM_SILENCE"`
	VADMode     int  `json:"VAD_MODE" yaml:"VAD_MODE" toml:"VAD_MODE"`

	STTBackend   string   `json:"STT_BACKEND" yaml:"STT_BACKEND" toml:"STT_BACKEND"`
	WhisperPath  string   `json:"WHISPER_PATH" yaml:"WHISPER_PATH" toml:"WHISPER_PATH"`
	WhisperModel string   `json:"WHISPER_MODEL" yaml:"WHISPER_MODEL" toml:"WHISPER_MODEL"`
	WhisperArgs  string   `json:"WHISPER_ARGS" yaml:"WHISPER_ARGS" toml:"WHISPER_ARGS"`
	Language     string   `json:"LANGUAGE" yaml:"LANGUAGE" toml:"LANGUAGE"`
	Prompt       string   `json:"PROMPT" yaml:"PROMPT" toml:"PROMPT"`
	Artifacts    []string `json:"ARTIFACTS" yaml:"ARTIFACTS" toml:"ARTIFACTS"`

	APIEndpoint    string  `json:"API_ENDPOINT" yaml:"API_ENDPOINT" toml:"API_ENDPOINT"`
	Token          string  `json:"TOKEN" yaml:"TOKEN" toml:"TOKEN"`
	APIModel       string  `json:"API_MODEL" yaml:"API_MODEL" toml:"API_MODEL"`
	TEXTPath       string  `json:"TEXT_PATH" yaml:"TEXT_PATH" toml:"TEXT_PATH"`
	ExtraConfig    string  `json:"EXTRA_CONFIG" yaml:"EXTRA_CONFIG" toml:"EXTRA_CONFIG"`
	CODECS         string  `json:"CODECS" yaml:"CODECS" toml:"CODECS"`
	CONTAINER      string  `json:"CONTAINER" yaml:"CONTAINER" toml:"CONTAINER"`
	BIT_RATE       int     `json:"BIT_RATE" yaml:"BIT_RATE" toml:"BIT_RATE"`
	RequestTimeout int     `json:"REQUEST_TIMEOUT" yaml:"REQUEST_TIMEOUT" toml:"REQUEST_TIMEOUT"`
	MaxRetry       int     `json:"MAX_RETRY" yaml:"MAX_RETRY" toml:"MAX_RETRY"`
	RetryBaseDelay float64 `json:"RETRY_BASE_DELAY" yaml:"RETRY_BASE_DELAY" toml:"RETRY_BASE_DELAY"`
	EnableHTTP2    bool    `json:"ENABLE_HTTP2" yaml:"ENABLE_HTTP2" toml:"ENABLE_HTTP2"`
	VerifySSL      bool    `json:"VERIFY_SSL" yaml:"VERIFY_SSL" toml:"VERIFY_SSL"`

	PiperPath    string  `json:"PIPER_PATH" yaml:"PIPER_PATH" toml:"PIPER_PATH"`
	PiperModel   string  `json:"PIPER_MODEL" yaml:"PIPER_MODEL" toml:"PIPER_MODEL"`
	Speed        float64 `json:"SPEED" yaml:"SPEED" toml:"SPEED"`
	Player       string  `json:"PLAYER" yaml:"PLAYER" toml:"PLAYER"`
	NarratorFile string  `json:"TTS_CONFIG" yaml:"TTS_CONFIG" toml:"TTS_CONFIG"`
	// NarratorErr is set by Resolve when the narrator file could not be
	// read. It disables text-to-speech only.
	NarratorErr  error   `json:"-" yaml:"-" toml:"-"`

	RestoreClipboard bool   `json:"RESTORE_CLIPBOARD" yaml:"RESTORE_CLIPBOARD" toml:"RESTORE_CLIPBOARD"`
	CacheDir         string `json:"CACHE_DIR" yaml:"CACHE_DIR" toml:"CACHE_DIR"`
	KeepCache        bool   `json:"KEEP_CACHE" yaml:"KEEP_CACHE" toml:"KEEP_CACHE"`
	HistoryDB        string `json:"HISTORY_DB" yaml:"HISTORY_DB" toml:"HISTORY_DB"`
	HistoryKeep      int    `json:"HISTORY_KEEP" yaml:"HISTORY_KEEP" toml:"HISTORY_KEEP"`
	Notification     bool   `json:"NOTIFICATION" yaml:"NOTIFICATION" toml:"NOTIFICATION"`

	RECORD_DEBUG bool `json:"RECORD_DEBUG" yaml:"RECORD_DEBUG" toml:"RECORD_DEBUG"`
	HOTKEY_DEBUG bool `json:"HOTKEY_DEBUG" yaml:"HOTKEY_DEBUG" toml:"HOTKEY_DEBUG"`
	STT_DEBUG    bool `json:"STT_DEBUG" yaml:"STT_DEBUG" toml:"STT_DEBUG"`
	TTS_DEBUG    bool `json:"TTS_DEBUG" yaml:"TTS_DEBUG" toml:"TTS_DEBUG"`
	UPLOAD_DEBUG bool `json:"UPLOAD_DEBUG" yaml:"UPLOAD_DEBUG" toml:"UPLOAD_DEBUG"`
	FFMPEG_DEBUG bool `json:"FFMPEG_DEBUG" yaml:"FFMPEG_DEBUG" toml:"FFMPEG_DEBUG"`
}

// DefaultArtifacts are markers whisper emits for non-speech segments.
var DefaultArtifacts = []string{"[BLANK_AUDIO]", "[MÚSICA]", "[MÚSICA DE FUNDO]"}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		RecordKey:        "f9",
		SpeakKey:         "f10",
		PollIntervalMs:   20,
		DeviceIndex:      0,
		Channels:         1,
		TrimSilence:      false,
		VADMode:          2,
		STTBackend:       "exec",
		WhisperPath:      "",
		WhisperModel:     "ggml-large-v3-turbo.bin",
		WhisperArgs:      "",
		Language:         "auto",
		Prompt:           "",
		Artifacts:        append([]string(nil), DefaultArtifacts...),
		APIEndpoint:      "",
		Token:            "",
		APIModel:         "",
		TEXTPath:         "text",
		ExtraConfig:      "",
		CODECS:           "wav",
		CONTAINER:        "wav",
		BIT_RATE:         128,
		RequestTimeout:   30,
		MaxRetry:         3,
		RetryBaseDelay:   0.5,
		EnableHTTP2:      true,
		VerifySSL:        true,
		PiperPath:        defaultPiperName(),
		PiperModel:       "piper-model.onnx",
		Speed:            1.0,
		Player:           "",
		NarratorFile:     "tts_config.txt",
		RestoreClipboard: false,
		CacheDir:         "",
		KeepCache:        false,
		HistoryDB:        "",
		HistoryKeep:      500,
		Notification:     false,
	}
}

func defaultPiperName() string {
	if runtime.GOOS == "windows" {
		return "piper.exe"
	}
	return "piper"
}

// Load loads config from a JSON, YAML or TOML file if provided.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch formatOf(path) {
	case "yaml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	case "toml":
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml config %s: %w", path, err)
		}
	default:
		if err := json.NewDecoder(bytes.NewReader(b)).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse json config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// SaveDefault writes the default config to path, in the format implied by
// its extension.
func SaveDefault(path string) error {
	return Save(path, DefaultConfig())
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	var (
		b   []byte
		err error
	)
	switch formatOf(path) {
	case "yaml":
		b, err = yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		b = buf.Bytes()
	default:
		b, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return "json"
}

// PollInterval returns PollIntervalMs as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// UsesHTTPBackend reports whether transcription goes to API_ENDPOINT.
func (c Config) UsesHTTPBackend() bool {
	return strings.EqualFold(c.STTBackend, "http")
}

// NeedsConversion reports whether recordings must go through ffmpeg before
// upload.
func (c Config) NeedsConversion() bool {
	codec := strings.ToLower(c.CODECS)
	return c.UsesHTTPBackend() && codec != "" && codec != "wav" && codec != "pcm_s16le"
}

// Validate verifies config fields and returns an error if any value is invalid.
func Validate(cfg *Config) error {
	if cfg.Channels < 1 || cfg.Channels > 8 {
		return fmt.Errorf("invalid CHANNELS: %d (allowed 1..8)", cfg.Channels)
	}
	if cfg.PollIntervalMs < 5 || cfg.PollIntervalMs > 1000 {
		return fmt.Errorf("invalid POLL_INTERVAL_MS: %d (allowed 5..1000)", cfg.PollIntervalMs)
	}
	if strings.TrimSpace(cfg.RecordKey) == "" {
		return fmt.Errorf("RECORD_KEY is empty")
	}
	if strings.TrimSpace(cfg.SpeakKey) == "" {
		return fmt.Errorf("SPEAK_KEY is empty")
	}
	if strings.EqualFold(strings.ReplaceAll(cfg.RecordKey, " ", ""), strings.ReplaceAll(cfg.SpeakKey, " ", "")) {
		return fmt.Errorf("RECORD_KEY and SPEAK_KEY must differ (both %q)", cfg.RecordKey)
	}
	if cfg.DeviceIndex < -1 {
		return fmt.Errorf("invalid DEVICE_INDEX: %d (-1 default, 0 ask, n>=1 device)", cfg.DeviceIndex)
	}
	if cfg.Speed <= 0 || cfg.Speed > 10 {
		return fmt.Errorf("invalid SPEED: %v (must be in (0, 10])", cfg.Speed)
	}
	if cfg.VADMode < 0 || cfg.VADMode > 3 {
		return fmt.Errorf("invalid VAD_MODE: %d (allowed 0..3)", cfg.VADMode)
	}
	switch strings.ToLower(cfg.STTBackend) {
	case "exec", "http":
	default:
		return fmt.Errorf("invalid STT_BACKEND: %s (allowed: exec, http)", cfg.STTBackend)
	}
	if cfg.UsesHTTPBackend() {
		if cfg.APIEndpoint == "" {
			return fmt.Errorf("API_ENDPOINT is required for the http backend")
		}
		if cfg.MaxRetry < 1 {
			return fmt.Errorf("invalid MAX_RETRY: %d (must be >= 1)", cfg.MaxRetry)
		}
		if cfg.RetryBaseDelay < 0 {
			return fmt.Errorf("invalid RETRY_BASE_DELAY: %v (must be >= 0)", cfg.RetryBaseDelay)
		}
	}
	if cfg.NeedsConversion() {
		if !allowedCodecs[strings.ToLower(cfg.CODECS)] {
			return fmt.Errorf("invalid CODECS: %s (allowed: %s)", cfg.CODECS, strings.Join(sortedKeys(allowedCodecs), ", "))
		}
		if !allowedContainers[strings.ToLower(cfg.CONTAINER)] {
			return fmt.Errorf("invalid CONTAINER: %s (allowed: %s)", cfg.CONTAINER, strings.Join(sortedKeys(allowedContainers), ", "))
		}
		if cfg.BIT_RATE <= 0 {
			return fmt.Errorf("invalid BIT_RATE: %d (must be > 0)", cfg.BIT_RATE)
		}
	}
	return nil
}

var allowedCodecs = map[string]bool{
	"opus": true, "libopus": true, "aac": true, "mp3": true,
	"flac": true, "vorbis": true, "libvorbis": true, "pcm": true,
}

var allowedContainers = map[string]bool{
	"wav": true, "ogg": true, "oga": true, "opus": true, "webm": true,
	"mp3": true, "flac": true, "m4a": true, "aac": true,
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// InitCacheDir validates/creates the configured cache directory.
// It mutates cfg.CacheDir to an absolute path or clears it on failure.
// The returned message describes what happened, for the caller to log.
func InitCacheDir(cfg *Config) (string, error) {
	if cfg.CacheDir == "" {
		return "", nil
	}
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		cfg.CacheDir = ""
		return "", fmt.Errorf("cache dir path invalid: %w", err)
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			cfg.CacheDir = ""
			return "", fmt.Errorf("cache dir %s exists but is not a directory", abs)
		}
		cfg.CacheDir = abs
		return "using existing cache dir " + abs, nil
	}
	if os.IsNotExist(err) {
		if err := os.MkdirAll(abs, 0755); err != nil {
			cfg.CacheDir = ""
			return "", fmt.Errorf("cannot create cache dir %s: %w", abs, err)
		}
		cfg.CacheDir = abs
		return "created cache dir " + abs, nil
	}
	cfg.CacheDir = ""
	return "", fmt.Errorf("cannot access cache dir %s: %w", abs, err)
}

// TempDir returns the directory to use for temporary files: the cache
// dir when set, otherwise the working directory.
func TempDir(cfg *Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ContainerExt maps container names to file extensions (lowercase).
func ContainerExt(container string) string {
	c := strings.ToLower(strings.TrimSpace(container))
	if c == "" {
		return "wav"
	}
	return c
}
