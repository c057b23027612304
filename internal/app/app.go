// Package app wires the recorder, transcriber, clipboard and narrator to
// the two hotkeys.
package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"voicekey/internal/config"
	"voicekey/internal/history"
	"voicekey/internal/hotkey"
	"voicekey/internal/logx"
	"voicekey/internal/notify"
	"voicekey/internal/transcribe"
)

// Recorder captures audio between Start and Stop.
type Recorder interface {
	Start() error
	Stop() ([]float32, error)
	SampleRate() int
	Channels() int
}

// Clipboard pastes text and reads the current selection.
type Clipboard interface {
	PasteText(text string) error
	CopySelection() (string, error)
}

// Narrator speaks text in the background.
type Narrator interface {
	Speak(ctx context.Context, text string) error
	IsPlaying() bool
	Stop() error
}

// History records what was transcribed and spoken.
type History interface {
	Add(ctx context.Context, e history.Entry) (int64, error)
}

// Deps are the collaborators of an App. Narrator, History, Notifier and
// SpeakKey are optional. KeyLog receives the poller's key events and
// defaults to Log.
type Deps struct {
	Config      config.Config
	Recorder    Recorder
	Transcriber transcribe.Transcriber
	Clipboard   Clipboard
	Narrator    Narrator
	History     History
	Notifier    *notify.Notifier
	RecordKey   hotkey.KeyState
	SpeakKey    hotkey.KeyState
	Log         *zap.SugaredLogger
	KeyLog      *zap.SugaredLogger
}

type App struct {
	cfg     config.Config
	deps    Deps
	tempDir string
	log     *zap.SugaredLogger

	// busy serializes hotkey actions.
	busy sync.Mutex
}

func New(d Deps) (*App, error) {
	switch {
	case d.Recorder == nil:
		return nil, errors.New("app: recorder is required")
	case d.Transcriber == nil:
		return nil, errors.New("app: transcriber is required")
	case d.Clipboard == nil:
		return nil, errors.New("app: clipboard is required")
	}
	return &App{
		cfg:     d.Config,
		deps:    d,
		tempDir: config.TempDir(&d.Config),
		log:     logx.OrNop(d.Log),
	}, nil
}

// Run listens for the hotkeys until ctx is done, then stops playback and
// releases the key states.
func (a *App) Run(ctx context.Context) error {
	if a.deps.RecordKey == nil {
		return errors.New("app: record hotkey is required")
	}
	removeStale(a.tempDir, a.log)

	keyLog := a.deps.KeyLog
	if keyLog == nil {
		keyLog = a.log.Named("hotkey")
	}
	p := hotkey.NewPoller(a.cfg.PollInterval(), keyLog)
	p.Add(hotkey.Binding{
		Name:      "record",
		State:     a.deps.RecordKey,
		OnPress:   a.RecordPress,
		OnRelease: func() { a.RecordRelease(ctx) },
	})
	if a.deps.SpeakKey != nil {
		p.Add(hotkey.Binding{
			Name:    "speak",
			State:   a.deps.SpeakKey,
			OnPress: func() { a.SpeakPress(ctx) },
		})
	}

	a.printHelp()
	a.log.Info("Listening...")
	err := p.Run(ctx)

	if a.deps.Narrator != nil {
		err = multierr.Append(err, a.deps.Narrator.Stop())
	}
	return multierr.Append(err, p.Close())
}

func (a *App) printHelp() {
	a.log.Infof("Hotkeys:")
	a.log.Infof("  %s - Hold to record, release to transcribe (Speech-to-Text)", a.cfg.RecordKey)
	if a.deps.Narrator != nil && a.deps.SpeakKey != nil {
		a.log.Infof("  %s - Read selected text aloud (Text-to-Speech)", a.cfg.SpeakKey)
		a.log.Infof("  press %s again while playing to stop", a.cfg.SpeakKey)
	}
}
