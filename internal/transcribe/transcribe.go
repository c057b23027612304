package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"voicekey/internal/logx"
)

// Transcriber turns a WAV file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

var (
	// ErrExecutableNotFound means no transcription executable could be located.
	ErrExecutableNotFound = errors.New("transcription executable not found")
	// ErrModelNotFound means the configured model file does not exist.
	ErrModelNotFound = errors.New("transcription model not found")
)

// ExitError is returned when the executable exits unsuccessfully.
type ExitError struct {
	Code   int
	Stdout string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("transcription process failed (exit code %d)", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// CandidateNames lists executable names tried in order.
func CandidateNames() []string {
	names := []string{"whisper-cli", "whisper", "main"}
	if runtime.GOOS == "windows" {
		for i, n := range names {
			names[i] = n + ".exe"
		}
	}
	return names
}

// FindExecutable resolves the transcription executable. An explicit path
// wins; otherwise the candidate names are tried in dir, then on PATH.
func FindExecutable(dir, explicit string) (string, error) {
	if explicit != "" {
		p := explicit
		if !filepath.IsAbs(p) && strings.ContainsRune(p, filepath.Separator) {
			p = filepath.Join(dir, p)
		}
		if isFile(p) {
			return p, nil
		}
		if lp, err := exec.LookPath(explicit); err == nil {
			return lp, nil
		}
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, explicit)
	}
	for _, name := range CandidateNames() {
		p := filepath.Join(dir, name)
		if isFile(p) {
			return p, nil
		}
	}
	for _, name := range CandidateNames() {
		if lp, err := exec.LookPath(name); err == nil {
			return lp, nil
		}
	}
	return "", fmt.Errorf("%w: place %s in %s or on PATH", ErrExecutableNotFound, CandidateNames()[0], dir)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Options configure the executable backend.
type Options struct {
	Executable string
	Model      string
	Language   string
	Prompt     string
	// ExtraArgs is appended to the command line, parsed with shell rules.
	ExtraArgs string
	Artifacts []string
}

// Exec runs an external whisper.cpp style command line tool.
type Exec struct {
	exe       string
	model     string
	language  string
	prompt    string
	extra     []string
	artifacts []string
	log       *zap.SugaredLogger
}

// NewExec checks the model and parses the extra arguments.
func NewExec(opts Options, log *zap.SugaredLogger) (*Exec, error) {
	if opts.Executable == "" {
		return nil, ErrExecutableNotFound
	}
	if !isFile(opts.Model) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, opts.Model)
	}
	model, err := filepath.Abs(opts.Model)
	if err != nil {
		return nil, err
	}
	var extra []string
	if strings.TrimSpace(opts.ExtraArgs) != "" {
		extra, err = shellwords.NewParser().Parse(opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("parse extra arguments: %w", err)
		}
	}
	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}
	return &Exec{
		exe:       opts.Executable,
		model:     model,
		language:  lang,
		prompt:    opts.Prompt,
		extra:     extra,
		artifacts: opts.Artifacts,
		log:       logx.OrNop(log),
	}, nil
}

// Args returns the command line used for wavPath, without the executable.
func (e *Exec) Args(wavPath string) []string {
	args := []string{"-m", e.model, "-f", wavPath, "-nt", "-l", e.language}
	if e.prompt != "" {
		args = append(args, "--prompt", e.prompt)
	}
	return append(args, e.extra...)
}

// Transcribe runs the executable on wavPath and returns the cleaned text
// it printed on stdout.
func (e *Exec) Transcribe(ctx context.Context, wavPath string) (string, error) {
	abs, err := filepath.Abs(wavPath)
	if err != nil {
		return "", err
	}
	args := e.Args(abs)
	e.log.Debugw("running transcription", "exe", e.exe, "args", args)

	cmd := exec.CommandContext(ctx, e.exe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	e.log.Debugw("transcription finished", "elapsed", time.Since(start))
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			e.log.Warnw("transcription process output", "stdout", stdout.String(), "stderr", stderr.String())
			return "", &ExitError{Code: ee.ExitCode(), Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
		}
		return "", fmt.Errorf("execute transcription process: %w", err)
	}
	return Clean(stdout.String(), e.artifacts), nil
}

// Clean trims raw output and removes non-speech markers.
func Clean(raw string, artifacts []string) string {
	text := strings.TrimSpace(raw)
	for _, a := range artifacts {
		if a != "" {
			text = strings.ReplaceAll(text, a, "")
		}
	}
	return strings.TrimSpace(text)
}
