package clipboard

import (
	"errors"
	"testing"
)

type fakeBoard struct {
	content string
	writes  []string
	readErr error
}

func (b *fakeBoard) ReadAll() (string, error) {
	if b.readErr != nil {
		return "", b.readErr
	}
	return b.content, nil
}

func (b *fakeBoard) WriteAll(text string) error {
	b.writes = append(b.writes, text)
	b.content = text
	return nil
}

type chord struct {
	ctrl bool
	key  int
}

type fakeKeys struct {
	sent []chord
	err  error
	// onChord simulates the focused application reacting to a key.
	onChord func(chord)
}

func (k *fakeKeys) Chord(ctrl bool, key int) error {
	if k.err != nil {
		return k.err
	}
	c := chord{ctrl, key}
	k.sent = append(k.sent, c)
	if k.onChord != nil {
		k.onChord(c)
	}
	return nil
}

func fastManager(b Board, k Keyboard, restore bool) *Manager {
	m := NewManager(b, k, restore, nil)
	m.pasteDelay, m.copyDelay, m.restoreDelay = 0, 0, 0
	return m
}

func TestPasteText(t *testing.T) {
	b := &fakeBoard{content: "old"}
	k := &fakeKeys{}
	if err := fastManager(b, k, false).PasteText("hello"); err != nil {
		t.Fatalf("paste: %v", err)
	}
	if b.content != "hello" {
		t.Fatalf("clipboard should hold the pasted text, got %q", b.content)
	}
	if len(k.sent) != 1 || k.sent[0] != (chord{true, KeyV}) {
		t.Fatalf("expected one Ctrl+V, got %v", k.sent)
	}
}

func TestPasteTextRestore(t *testing.T) {
	b := &fakeBoard{content: "old"}
	if err := fastManager(b, &fakeKeys{}, true).PasteText("hello"); err != nil {
		t.Fatalf("paste: %v", err)
	}
	if len(b.writes) != 2 || b.writes[0] != "hello" || b.content != "old" {
		t.Fatalf("expected write then restore, got %v", b.writes)
	}
}

func TestPasteTextKeyError(t *testing.T) {
	boom := errors.New("no uinput")
	err := fastManager(&fakeBoard{}, &fakeKeys{err: boom}, false).PasteText("x")
	if !errors.Is(err, boom) {
		t.Fatalf("expected key error, got %v", err)
	}
}

func TestCopySelection(t *testing.T) {
	b := &fakeBoard{content: "stale"}
	k := &fakeKeys{}
	k.onChord = func(c chord) {
		if c.key == KeyC {
			b.content = "selected words"
		}
	}
	text, err := fastManager(b, k, false).CopySelection()
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if text != "selected words" {
		t.Fatalf("unexpected selection %q", text)
	}
	if len(k.sent) != 1 || k.sent[0] != (chord{true, KeyC}) {
		t.Fatalf("expected one Ctrl+C, got %v", k.sent)
	}
}

func TestCopySelectionReadFailure(t *testing.T) {
	b := &fakeBoard{readErr: errors.New("locked")}
	text, err := fastManager(b, &fakeKeys{}, false).CopySelection()
	if err != nil || text != "" {
		t.Fatalf("failed read should give empty text, got %q %v", text, err)
	}
}
