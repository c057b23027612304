//go:build windows

package keystate

import (
	"fmt"

	"golang.org/x/sys/windows"

	"voicekey/internal/hotkey"
)

var procGetAsyncKeyState = windows.NewLazySystemDLL("user32.dll").NewProc("GetAsyncKeyState")

const (
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C
)

var namedVK = map[string]uint32{
	"esc": 0x1B, "space": 0x20, "enter": 0x0D, "tab": 0x09, "backspace": 0x08,
	"insert": 0x2D, "delete": 0x2E, "home": 0x24, "end": 0x23, "pageup": 0x21, "pagedown": 0x22,
	"left": 0x25, "up": 0x26, "right": 0x27, "down": 0x28, "add": 0x6B, "subtract": 0x6D,
}

func virtualKey(c hotkey.Combo) (uint32, error) {
	key := c.Key
	if len(key) == 1 {
		ch := key[0]
		if ch >= 'a' && ch <= 'z' {
			return uint32(ch - 'a' + 'A'), nil
		}
		return uint32(ch), nil
	}
	if vk, ok := namedVK[key]; ok {
		return vk, nil
	}
	if len(key) == 7 && key[:6] == "numpad" {
		return 0x60 + uint32(key[6]-'0'), nil
	}
	if n, ok := c.Function(); ok {
		return 0x70 + uint32(n-1), nil
	}
	return 0, fmt.Errorf("no virtual key for %q", key)
}

func down(vk uint32) bool {
	st, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return st&0x8000 != 0
}

type asyncState struct {
	vk   uint32
	mods hotkey.Mod
}

// Watch samples the key with GetAsyncKeyState. Nothing is registered, so
// the key still reaches the focused window.
func Watch(def string) (hotkey.KeyState, error) {
	c, err := hotkey.Parse(def)
	if err != nil {
		return nil, err
	}
	vk, err := virtualKey(c)
	if err != nil {
		return nil, err
	}
	if err := procGetAsyncKeyState.Find(); err != nil {
		return nil, fmt.Errorf("GetAsyncKeyState unavailable: %w", err)
	}
	return &asyncState{vk: vk, mods: c.Mods}, nil
}

func (s *asyncState) Pressed() bool {
	return down(s.vk) && s.modsHeld()
}

func (s *asyncState) modsHeld() bool {
	if s.mods&hotkey.ModCtrl != 0 && !down(vkControl) {
		return false
	}
	if s.mods&hotkey.ModAlt != 0 && !down(vkMenu) {
		return false
	}
	if s.mods&hotkey.ModShift != 0 && !down(vkShift) {
		return false
	}
	if s.mods&hotkey.ModSuper != 0 && !down(vkLWin) && !down(vkRWin) {
		return false
	}
	return true
}

func (s *asyncState) Close() error { return nil }
