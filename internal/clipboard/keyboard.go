package clipboard

import (
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// Virtual key codes understood by Keyboard implementations.
var (
	KeyV = keybd_event.VK_V
	KeyC = keybd_event.VK_C
)

// SystemKeyboard injects key events through the OS.
type SystemKeyboard struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewSystemKeyboard creates the virtual keyboard. On Linux this needs
// write access to /dev/uinput and the device needs a moment to register.
func NewSystemKeyboard() (*SystemKeyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}
	return &SystemKeyboard{kb: kb}, nil
}

func (k *SystemKeyboard) Chord(ctrl bool, key int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.Clear()
	k.kb.HasCTRL(ctrl)
	k.kb.SetKeys(key)
	return k.kb.Launching()
}
