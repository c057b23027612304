//go:build !windows && !linux && !darwin

package keystate

import (
	"fmt"
	"runtime"

	"voicekey/internal/hotkey"
)

func Watch(def string) (hotkey.KeyState, error) {
	if _, err := hotkey.Parse(def); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("global hotkeys are not supported on %s", runtime.GOOS)
}
