//go:build linux || darwin

package keystate

import (
	"fmt"

	gohotkey "golang.design/x/hotkey"

	"voicekey/internal/hotkey"
)

var characterKeys = map[byte]gohotkey.Key{
	'a': gohotkey.KeyA, 'b': gohotkey.KeyB, 'c': gohotkey.KeyC, 'd': gohotkey.KeyD, 'e': gohotkey.KeyE,
	'f': gohotkey.KeyF, 'g': gohotkey.KeyG, 'h': gohotkey.KeyH, 'i': gohotkey.KeyI, 'j': gohotkey.KeyJ,
	'k': gohotkey.KeyK, 'l': gohotkey.KeyL, 'm': gohotkey.KeyM, 'n': gohotkey.KeyN, 'o': gohotkey.KeyO,
	'p': gohotkey.KeyP, 'q': gohotkey.KeyQ, 'r': gohotkey.KeyR, 's': gohotkey.KeyS, 't': gohotkey.KeyT,
	'u': gohotkey.KeyU, 'v': gohotkey.KeyV, 'w': gohotkey.KeyW, 'x': gohotkey.KeyX, 'y': gohotkey.KeyY,
	'z': gohotkey.KeyZ,
	'0': gohotkey.Key0, '1': gohotkey.Key1, '2': gohotkey.Key2, '3': gohotkey.Key3, '4': gohotkey.Key4,
	'5': gohotkey.Key5, '6': gohotkey.Key6, '7': gohotkey.Key7, '8': gohotkey.Key8, '9': gohotkey.Key9,
}

var namedKeys = map[string]gohotkey.Key{
	"esc": gohotkey.KeyEscape, "space": gohotkey.KeySpace, "enter": gohotkey.KeyReturn,
	"tab": gohotkey.KeyTab, "delete": gohotkey.KeyDelete,
	"left": gohotkey.KeyLeft, "right": gohotkey.KeyRight, "up": gohotkey.KeyUp, "down": gohotkey.KeyDown,
}

var functionKeys = []gohotkey.Key{
	gohotkey.KeyF1, gohotkey.KeyF2, gohotkey.KeyF3, gohotkey.KeyF4, gohotkey.KeyF5,
	gohotkey.KeyF6, gohotkey.KeyF7, gohotkey.KeyF8, gohotkey.KeyF9, gohotkey.KeyF10,
	gohotkey.KeyF11, gohotkey.KeyF12, gohotkey.KeyF13, gohotkey.KeyF14, gohotkey.KeyF15,
	gohotkey.KeyF16, gohotkey.KeyF17, gohotkey.KeyF18, gohotkey.KeyF19, gohotkey.KeyF20,
}

func keyCode(c hotkey.Combo) (gohotkey.Key, error) {
	if len(c.Key) == 1 {
		return characterKeys[c.Key[0]], nil
	}
	if k, ok := namedKeys[c.Key]; ok {
		return k, nil
	}
	if n, ok := c.Function(); ok && n <= len(functionKeys) {
		return functionKeys[n-1], nil
	}
	return 0, fmt.Errorf("key %q cannot be registered on this platform", c.Key)
}

func modifiers(m hotkey.Mod) []gohotkey.Modifier {
	var out []gohotkey.Modifier
	for _, bit := range []hotkey.Mod{hotkey.ModCtrl, hotkey.ModAlt, hotkey.ModShift, hotkey.ModSuper} {
		if m&bit != 0 {
			out = append(out, modifierMap[bit])
		}
	}
	return out
}

// grabState follows a registered global hotkey. Registration grabs the
// key, so the focused window no longer receives it.
type grabState struct {
	hotkey.Latch
	hk   *gohotkey.Hotkey
	done chan struct{}
}

// Watch registers def as a global hotkey and tracks its keydown and
// keyup events.
func Watch(def string) (hotkey.KeyState, error) {
	c, err := hotkey.Parse(def)
	if err != nil {
		return nil, err
	}
	key, err := keyCode(c)
	if err != nil {
		return nil, err
	}
	hk := gohotkey.New(modifiers(c.Mods), key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register hotkey %s: %w", c, err)
	}
	s := &grabState{hk: hk, done: make(chan struct{})}
	go hotkey.Track(&s.Latch, s.done, hk.Keydown(), hk.Keyup(), hotkey.ReleaseDelay)
	return s, nil
}

func (s *grabState) Close() error {
	close(s.done)
	return s.hk.Unregister()
}
