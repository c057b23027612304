package keystate

import (
	gohotkey "golang.design/x/hotkey"

	"voicekey/internal/hotkey"
)

var modifierMap = map[hotkey.Mod]gohotkey.Modifier{
	hotkey.ModCtrl:  gohotkey.ModCtrl,
	hotkey.ModShift: gohotkey.ModShift,
	hotkey.ModAlt:   gohotkey.ModOption,
	hotkey.ModSuper: gohotkey.ModCmd,
}
