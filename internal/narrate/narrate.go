// Package narrate reads text aloud with an external piper binary and a
// platform audio player that can be interrupted.
package narrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"voicekey/internal/logx"
)

var (
	ErrEmptyText      = errors.New("no text to speak")
	ErrPiperNotFound  = errors.New("piper executable not found")
	ErrModelNotFound  = errors.New("piper model not found")
	ErrPlayerNotFound = errors.New("audio player not found")
)

// TempPrefix names the synthesized files so stale ones can be found.
const TempPrefix = "SpeakTemp_"

// Options configure synthesis and playback.
type Options struct {
	PiperPath string
	Model     string
	// Speed is passed to piper as --length-scale.
	Speed float64
	// Player is a command line; {file} is replaced by the WAV path,
	// otherwise the path is appended. Empty selects the platform player.
	Player  string
	TempDir string
}

// CheckOptions resolves the piper executable and verifies the model exists.
func CheckOptions(opts Options) (Options, error) {
	exe, err := resolveExecutable(opts.PiperPath)
	if err != nil {
		return opts, fmt.Errorf("%w: %q (set PIPER_PATH or add it to tts_config.txt)", ErrPiperNotFound, opts.PiperPath)
	}
	opts.PiperPath = exe
	info, err := os.Stat(opts.Model)
	if err != nil || info.IsDir() {
		return opts, fmt.Errorf("%w: %q (set PIPER_MODEL or add it to tts_config.txt)", ErrModelNotFound, opts.Model)
	}
	if opts.Speed <= 0 {
		opts.Speed = 1.0
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return opts, nil
}

// resolveExecutable prefers a file at p (relative to the working
// directory) and falls back to PATH.
func resolveExecutable(p string) (string, error) {
	if p == "" {
		return "", ErrPiperNotFound
	}
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return filepath.Abs(p)
	}
	return exec.LookPath(p)
}

// PlayerArgs returns the argv that plays file.
func PlayerArgs(player, file string) ([]string, error) {
	if strings.TrimSpace(player) == "" {
		return defaultPlayer(file), nil
	}
	args, err := shellwords.NewParser().Parse(player)
	if err != nil {
		return nil, fmt.Errorf("parse player command: %w", err)
	}
	if len(args) == 0 {
		return defaultPlayer(file), nil
	}
	replaced := false
	for i, a := range args {
		if strings.Contains(a, "{file}") {
			args[i] = strings.ReplaceAll(a, "{file}", file)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, file)
	}
	return args, nil
}

func defaultPlayer(file string) []string {
	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(file, "'", "''"))
		return []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", script}
	case "darwin":
		return []string{"afplay", file}
	default:
		return []string{"aplay", file}
	}
}

type playback struct {
	cmd  *exec.Cmd
	done chan struct{}
}

// Narrator synthesizes speech and owns at most one playing player.
type Narrator struct {
	opts Options
	log  *zap.SugaredLogger

	mu     sync.Mutex
	player *playback
}

// New checks opts and returns a narrator.
func New(opts Options, log *zap.SugaredLogger) (*Narrator, error) {
	opts, err := CheckOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Narrator{opts: opts, log: logx.OrNop(log)}, nil
}

// Speak stops any current playback, synthesizes text and starts playing
// it. It returns once the player has been started.
func (n *Narrator) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if err := n.Stop(); err != nil {
		n.log.Debugw("stopping previous playback failed", "error", err)
	}

	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	wav := filepath.Join(n.opts.TempDir, TempPrefix+id+".wav")
	if err := n.synthesize(ctx, text, wav); err != nil {
		_ = os.Remove(wav)
		return err
	}
	if err := n.play(wav); err != nil {
		_ = os.Remove(wav)
		return err
	}
	return nil
}

func (n *Narrator) synthesize(ctx context.Context, text, wav string) error {
	args := []string{
		"--model", n.opts.Model,
		"--length-scale", strconv.FormatFloat(n.opts.Speed, 'f', -1, 64),
		"--output_file", wav,
	}
	cmd := exec.CommandContext(ctx, n.opts.PiperPath, args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	hideWindow(cmd)

	start := time.Now()
	err := cmd.Run()
	n.log.Debugw("piper finished", "elapsed", time.Since(start), "chars", len(text))
	if err != nil {
		return fmt.Errorf("piper failed: %w (stdout: %s, stderr: %s)", err,
			strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()))
	}
	if _, err := os.Stat(wav); err != nil {
		return fmt.Errorf("piper produced no audio: %w", err)
	}
	return nil
}

func (n *Narrator) play(wav string) error {
	argv, err := PlayerArgs(n.opts.Player, wav)
	if err != nil {
		return err
	}
	exe, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, argv[0])
	}
	cmd := exec.Command(exe, argv[1:]...)
	ownProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	p := &playback{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		if rmErr := os.Remove(wav); rmErr != nil && !os.IsNotExist(rmErr) {
			n.log.Debugw("removing speech file failed", "file", wav, "error", rmErr)
		}
		n.log.Debugw("player exited", "error", err)
		close(p.done)
	}()

	n.mu.Lock()
	n.player = p
	n.mu.Unlock()
	n.log.Debugw("playback started", "player", argv[0], "pid", cmd.Process.Pid)
	return nil
}

// IsPlaying reports whether the player is still running. It never blocks.
func (n *Narrator) IsPlaying() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.player == nil {
		return false
	}
	select {
	case <-n.player.done:
		n.player = nil
		return false
	default:
		return true
	}
}

// Stop kills the player with its child processes and waits for it.
func (n *Narrator) Stop() error {
	n.mu.Lock()
	p := n.player
	n.player = nil
	n.mu.Unlock()
	if p == nil {
		return nil
	}
	select {
	case <-p.done:
		return nil
	default:
	}
	err := killTree(p.cmd)
	select {
	case <-p.done:
	case <-time.After(3 * time.Second):
		return fmt.Errorf("player did not exit after kill")
	}
	return err
}

// Wait blocks until the current playback ends or ctx is done.
func (n *Narrator) Wait(ctx context.Context) error {
	n.mu.Lock()
	p := n.player
	n.mu.Unlock()
	if p == nil {
		return nil
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
