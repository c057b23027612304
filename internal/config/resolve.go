package config

// Resolve builds the effective configuration.
// Precedence: defaults < config file < narrator file < environment < flags.
// A broken narrator file is recorded in NarratorErr instead of failing.
func Resolve(path string, fv *FlagValues) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}

	narratorFile := cfg.NarratorFile
	if fv != nil && fv.IsSet("tts-config") {
		narratorFile = fv.staged.NarratorFile
	}
	if _, err := LoadNarratorFile(narratorFile, &cfg); err != nil {
		cfg.NarratorErr = err
	}

	ApplyEnv(&cfg)
	if fv != nil {
		ApplyFlags(&cfg, fv)
	}
	if len(cfg.Artifacts) == 0 {
		cfg.Artifacts = append([]string(nil), DefaultArtifacts...)
	}
	return cfg, Validate(&cfg)
}
