package cli

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"voicekey/internal/asr"
	"voicekey/internal/config"
	"voicekey/internal/logx"
	"voicekey/internal/narrate"
	"voicekey/internal/transcribe"
)

const modelHint = "Please download a ggml model (e.g. from https://huggingface.co/ggerganov/whisper.cpp) and place it in the working directory."

func newTranscriber(cfg config.Config, base *zap.SugaredLogger) (transcribe.Transcriber, error) {
	if cfg.UsesHTTPBackend() {
		return asr.New(cfg, nil, logx.Component(base, "upload", cfg.UPLOAD_DEBUG || cfg.FFMPEG_DEBUG))
	}
	log := logx.Component(base, "stt", cfg.STT_DEBUG)
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	exe, err := transcribe.FindExecutable(cwd, cfg.WhisperPath)
	if err != nil {
		return nil, err
	}
	tr, err := transcribe.NewExec(transcribe.Options{
		Executable: exe,
		Model:      cfg.WhisperModel,
		Language:   cfg.Language,
		Prompt:     cfg.Prompt,
		ExtraArgs:  cfg.WhisperArgs,
		Artifacts:  cfg.Artifacts,
	}, log)
	if errors.Is(err, transcribe.ErrModelNotFound) {
		return nil, fmt.Errorf("model file %q not found: %s", cfg.WhisperModel, modelHint)
	}
	if err != nil {
		return nil, err
	}
	log.Debugw("transcription ready", "exe", exe, "model", cfg.WhisperModel)
	return tr, nil
}

func newNarrator(cfg config.Config, base *zap.SugaredLogger) (*narrate.Narrator, error) {
	if cfg.NarratorErr != nil {
		return nil, cfg.NarratorErr
	}
	return narrate.New(narrate.Options{
		PiperPath: cfg.PiperPath,
		Model:     cfg.PiperModel,
		Speed:     cfg.Speed,
		Player:    cfg.Player,
		TempDir:   config.TempDir(&cfg),
	}, logx.Component(base, "tts", cfg.TTS_DEBUG))
}
