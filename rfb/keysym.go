package rfb

import "fmt"

// KeySym is an X11 keysym value as carried by KeyEvent. The symbolic
// classification below is finite; keys outside it are still delivered,
// and Name falls back to the raw value.
type KeySym uint32

const (
	KeyBackSpace KeySym = 0xff08
	KeyTab       KeySym = 0xff09
	KeyReturn    KeySym = 0xff0d
	KeyEscape    KeySym = 0xff1b
	KeyInsert    KeySym = 0xff63
	KeyDelete    KeySym = 0xffff
	KeyHome      KeySym = 0xff50
	KeyEnd       KeySym = 0xff57
	KeyPageUp    KeySym = 0xff55
	KeyPageDown  KeySym = 0xff56
	KeyLeft      KeySym = 0xff51
	KeyUp        KeySym = 0xff52
	KeyRight     KeySym = 0xff53
	KeyDown      KeySym = 0xff54

	KeyF1  KeySym = 0xffbe
	KeyF2  KeySym = 0xffbf
	KeyF3  KeySym = 0xffc0
	KeyF4  KeySym = 0xffc1
	KeyF5  KeySym = 0xffc2
	KeyF6  KeySym = 0xffc3
	KeyF7  KeySym = 0xffc4
	KeyF8  KeySym = 0xffc5
	KeyF9  KeySym = 0xffc6
	KeyF10 KeySym = 0xffc7
	KeyF11 KeySym = 0xffc8
	KeyF12 KeySym = 0xffc9

	KeyShiftLeft    KeySym = 0xffe1
	KeyShiftRight   KeySym = 0xffe2
	KeyControlLeft  KeySym = 0xffe3
	KeyControlRight KeySym = 0xffe4
	KeyMetaLeft     KeySym = 0xffe7
	KeyMetaRight    KeySym = 0xffe8
	KeyAltLeft      KeySym = 0xffe9
	KeyAltRight     KeySym = 0xffea
)

var keySymNames = map[KeySym]string{
	KeyBackSpace:    "BackSpace",
	KeyTab:          "Tab",
	KeyReturn:       "Return",
	KeyEscape:       "Escape",
	KeyInsert:       "Insert",
	KeyDelete:       "Delete",
	KeyHome:         "Home",
	KeyEnd:          "End",
	KeyPageUp:       "PageUp",
	KeyPageDown:     "PageDown",
	KeyLeft:         "Left",
	KeyUp:           "Up",
	KeyRight:        "Right",
	KeyDown:         "Down",
	KeyF1:           "F1",
	KeyF2:           "F2",
	KeyF3:           "F3",
	KeyF4:           "F4",
	KeyF5:           "F5",
	KeyF6:           "F6",
	KeyF7:           "F7",
	KeyF8:           "F8",
	KeyF9:           "F9",
	KeyF10:          "F10",
	KeyF11:          "F11",
	KeyF12:          "F12",
	KeyShiftLeft:    "Shift_L",
	KeyShiftRight:   "Shift_R",
	KeyControlLeft:  "Control_L",
	KeyControlRight: "Control_R",
	KeyMetaLeft:     "Meta_L",
	KeyMetaRight:    "Meta_R",
	KeyAltLeft:      "Alt_L",
	KeyAltRight:     "Alt_R",
}

// Name returns the symbolic name of the keysym. Printable Latin-1 keysyms
// render as the character itself; anything unmapped falls back to the raw
// hex value.
func (k KeySym) Name() string {
	if name, ok := keySymNames[k]; ok {
		return name
	}
	if k >= 0x20 && k <= 0x7e {
		return string(rune(k))
	}
	return fmt.Sprintf("keysym(0x%x)", uint32(k))
}

// Rune returns the character for a printable Latin-1 keysym, or false for
// control and function keys.
func (k KeySym) Rune() (rune, bool) {
	if (k >= 0x20 && k <= 0x7e) || (k >= 0xa0 && k <= 0xff) {
		return rune(k), true
	}
	return 0, false
}
