package keystate

import (
	gohotkey "golang.design/x/hotkey"

	"voicekey/internal/hotkey"
)

// X11: Mod1 is Alt, Mod4 is Super.
var modifierMap = map[hotkey.Mod]gohotkey.Modifier{
	hotkey.ModCtrl:  gohotkey.ModCtrl,
	hotkey.ModShift: gohotkey.ModShift,
	hotkey.ModAlt:   gohotkey.Mod1,
	hotkey.ModSuper: gohotkey.Mod4,
}
