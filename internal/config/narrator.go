package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var narratorKeys = map[string]bool{
	"PIPER_PATH":  true,
	"PIPER_MODEL": true,
	"SPEED":       true,
	"PLAYER":      true,
}

// LoadNarratorFile applies a KEY=VALUE narrator file (tts_config.txt) on top
// of cfg. Recognised keys: PIPER_PATH, PIPER_MODEL, SPEED, PLAYER. Lines
// without '=' and unknown keys are skipped. A missing file is not an error.
// An unparsable SPEED falls back to 1.0.
func LoadNarratorFile(path string, cfg *Config) (bool, error) {
	if path == "" {
		return false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read narrator config %s: %w", path, err)
	}
	values, err := godotenv.Unmarshal(narratorLines(string(b)))
	if err != nil {
		return false, fmt.Errorf("parse narrator config %s: %w", path, err)
	}
	applyNarratorValues(values, cfg)
	return true, nil
}

// narratorLines keeps the known KEY=VALUE lines of a narrator file and
// quotes their values so paths keep backslashes and '$' literally.
func narratorLines(src string) string {
	var sb strings.Builder
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if !narratorKeys[key] {
			continue
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(quoteLiteral(strings.TrimSpace(value)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// quoteLiteral wraps v in single quotes, which dotenv reads verbatim.
// Values that are already quoted, or that single quotes cannot hold, are
// left alone.
func quoteLiteral(v string) string {
	if v == "" || v[0] == '"' || v[0] == '\'' {
		return v
	}
	if strings.ContainsRune(v, '\'') || strings.HasSuffix(v, `\`) {
		return v
	}
	return "'" + v + "'"
}

func applyNarratorValues(values map[string]string, cfg *Config) {
	for key, value := range values {
		value = strings.TrimSpace(value)
		switch key {
		case "PIPER_PATH":
			cfg.PiperPath = value
		case "PIPER_MODEL":
			cfg.PiperModel = value
		case "SPEED":
			speed, err := strconv.ParseFloat(value, 64)
			if err != nil || speed <= 0 {
				speed = 1.0
			}
			cfg.Speed = speed
		case "PLAYER":
			cfg.Player = value
		}
	}
}

// ApplyEnv lets environment variables override file values.
func ApplyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("PIPER_PATH"); ok && v != "" {
		cfg.PiperPath = v
	}
	if v, ok := os.LookupEnv("PIPER_MODEL"); ok && v != "" {
		cfg.PiperModel = v
	}
	if v, ok := os.LookupEnv("WHISPER_PATH"); ok && v != "" {
		cfg.WhisperPath = v
	}
	if v, ok := os.LookupEnv("WHISPER_MODEL"); ok && v != "" {
		cfg.WhisperModel = v
	}
}
