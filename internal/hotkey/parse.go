package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Mod is a set of modifier keys.
type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

// Combo is a parsed hotkey: modifiers plus one normalized key name such as
// "f9", "a", "7", "esc" or "numpad3".
type Combo struct {
	Mods Mod
	Key  string
}

func (c Combo) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Mod
		name string
	}{{ModCtrl, "ctrl"}, {ModAlt, "alt"}, {ModShift, "shift"}, {ModSuper, "super"}} {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, c.Key), "+")
}

var modNames = map[string]Mod{
	"ctrl": ModCtrl, "control": ModCtrl,
	"alt": ModAlt, "menu": ModAlt, "option": ModAlt,
	"shift": ModShift,
	"win": ModSuper, "meta": ModSuper, "super": ModSuper, "cmd": ModSuper,
}

var keyAliases = map[string]string{
	"escape": "esc", "return": "enter",
	"num0": "numpad0", "num1": "numpad1", "num2": "numpad2", "num3": "numpad3", "num4": "numpad4",
	"num5": "numpad5", "num6": "numpad6", "num7": "numpad7", "num8": "numpad8", "num9": "numpad9",
	"kp0": "numpad0", "kp1": "numpad1", "kp2": "numpad2", "kp3": "numpad3", "kp4": "numpad4",
	"kp5": "numpad5", "kp6": "numpad6", "kp7": "numpad7", "kp8": "numpad8", "kp9": "numpad9",
	"plus": "add", "kpadd": "add", "minus": "subtract", "kpsubtract": "subtract",
}

var namedKeys = map[string]bool{
	"esc": true, "space": true, "enter": true, "tab": true, "backspace": true,
	"insert": true, "delete": true, "home": true, "end": true, "pageup": true, "pagedown": true,
	"left": true, "up": true, "right": true, "down": true, "add": true, "subtract": true,
}

// Parse accepts strings like "f9", "alt+q", "ctrl+shift+F1" or "esc".
func Parse(def string) (Combo, error) {
	if strings.TrimSpace(def) == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}
	parts := strings.Split(strings.ToLower(def), "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	var c Combo
	for _, p := range parts[:len(parts)-1] {
		m, ok := modNames[p]
		if !ok {
			return Combo{}, fmt.Errorf("unknown modifier %q in %q", p, def)
		}
		c.Mods |= m
	}
	key := parts[len(parts)-1]
	if a, ok := keyAliases[key]; ok {
		key = a
	}
	if !validKey(key) {
		return Combo{}, fmt.Errorf("unsupported key %q in %q", key, def)
	}
	c.Key = key
	return c, nil
}

func validKey(k string) bool {
	if len(k) == 1 {
		return (k[0] >= 'a' && k[0] <= 'z') || (k[0] >= '0' && k[0] <= '9')
	}
	if namedKeys[k] {
		return true
	}
	if n, ok := strings.CutPrefix(k, "numpad"); ok {
		return len(n) == 1 && n[0] >= '0' && n[0] <= '9'
	}
	if n, ok := strings.CutPrefix(k, "f"); ok {
		i, err := strconv.Atoi(n)
		return err == nil && i >= 1 && i <= 24
	}
	return false
}

// Function returns N when the key is the function key "fN".
func (c Combo) Function() (int, bool) {
	n, ok := strings.CutPrefix(c.Key, "f")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n)
	if err != nil {
		return 0, false
	}
	return i, true
}
