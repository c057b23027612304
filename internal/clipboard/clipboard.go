// Package clipboard moves text between the system clipboard and the
// focused window using synthetic Ctrl+V / Ctrl+C.
package clipboard

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"voicekey/internal/logx"
)

// Board is a text clipboard.
type Board interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Keyboard sends key chords to the focused window.
type Keyboard interface {
	Chord(ctrl bool, key int) error
}

// SystemBoard is the OS clipboard.
type SystemBoard struct{}

func (SystemBoard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (SystemBoard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Manager pastes transcripts and copies selections.
type Manager struct {
	board   Board
	keys    Keyboard
	restore bool
	log     *zap.SugaredLogger

	pasteDelay   time.Duration
	copyDelay    time.Duration
	restoreDelay time.Duration
}

// NewManager wires a clipboard and keyboard. With restore set, PasteText
// puts the previous clipboard contents back after pasting.
func NewManager(board Board, keys Keyboard, restore bool, log *zap.SugaredLogger) *Manager {
	return &Manager{
		board:        board,
		keys:         keys,
		restore:      restore,
		log:          logx.OrNop(log),
		pasteDelay:   100 * time.Millisecond,
		copyDelay:    150 * time.Millisecond,
		restoreDelay: 120 * time.Millisecond,
	}
}

// PasteText places text on the clipboard and sends Ctrl+V.
func (m *Manager) PasteText(text string) error {
	var orig string
	if m.restore {
		orig, _ = m.board.ReadAll()
	}
	if err := m.board.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	time.Sleep(m.pasteDelay)
	if err := m.keys.Chord(true, KeyV); err != nil {
		return fmt.Errorf("send paste: %w", err)
	}
	if m.restore {
		time.Sleep(m.restoreDelay)
		if err := m.board.WriteAll(orig); err != nil {
			m.log.Debugw("restoring clipboard failed", "error", err)
		}
	}
	return nil
}

// CopySelection sends Ctrl+C and returns what landed on the clipboard.
// A failed read is reported as empty text.
func (m *Manager) CopySelection() (string, error) {
	if err := m.keys.Chord(true, KeyC); err != nil {
		return "", fmt.Errorf("send copy: %w", err)
	}
	time.Sleep(m.copyDelay)
	text, err := m.board.ReadAll()
	if err != nil {
		m.log.Debugw("reading clipboard failed", "error", err)
		return "", nil
	}
	return text, nil
}
