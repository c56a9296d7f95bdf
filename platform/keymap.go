package platform

import "os"

// Names of the modifiers that Keymap.ModifierActive is asked about.
const (
	ModShift   = "Shift"
	ModLock    = "Lock"
	ModControl = "Control"
	ModAlt     = "Alt"
	ModMod1    = "Mod1"
	ModMod4    = "Mod4"
)

// Keymap turns keycodes into keysyms and tracks the keyboard state. An
// implementation usually wraps xkbcommon.
type Keymap interface {
	// Load replaces the keymap with one sent by the compositor. format
	// is a wl_keyboard.keymap_format value. file is closed after Load
	// returns.
	Load(format uint32, file *os.File, size uint32) error

	// Keysyms returns the keysyms that the XKB keycode code produces
	// in the current state.
	Keysyms(code uint32) []Keysym

	UpdateKey(code uint32, down bool)
	UpdateMask(depressed, latched, locked, group uint32)

	// ModifierActive reports whether the named modifier is depressed
	// or latched.
	ModifierActive(name string) bool
}

// Modifier mask bits of the core XKB modifiers.
const (
	maskShift   = 1 << 0
	maskLock    = 1 << 1
	maskControl = 1 << 2
	maskMod1    = 1 << 3
	maskMod4    = 1 << 6
)

// Kernel keycodes that USKeymap treats specially.
const (
	codeEsc        = 1
	codeBackspace  = 14
	codeTab        = 15
	codeEnter      = 28
	codeLeftCtrl   = 29
	codeLeftShift  = 42
	codeRightShift = 54
	codeLeftAlt    = 56
	codeSpace      = 57
	codeCapsLock   = 58
	codeF1         = 59
	codeF11        = 87
	codeF12        = 88
	codeRightCtrl  = 97
	codeRightAlt   = 100
	codeHome       = 102
	codeUp         = 103
	codePageUp     = 104
	codeLeft       = 105
	codeRight      = 106
	codeEnd        = 107
	codeDown       = 108
	codePageDown   = 109
	codeInsert     = 110
	codeDelete     = 111
	codeLeftMeta   = 125
	codeRightMeta  = 126
)

// usRows lists the printable keys of a US keyboard by row. Each row
// starts at the kernel keycode first.
var usRows = []struct {
	first          uint32
	plain, shifted string
}{
	{2, "1234567890-=", "!@#$%^&*()_+"},
	{16, "qwertyuiop[]", "QWERTYUIOP{}"},
	{30, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
	{43, `\zxcvbnm,./`, "|ZXCVBNM<>?"},
}

var usSpecial = map[uint32]Keysym{
	codeEsc:        KeysymEscape,
	codeBackspace:  KeysymBackSpace,
	codeTab:        KeysymTab,
	codeEnter:      KeysymReturn,
	codeLeftCtrl:   KeysymControlL,
	codeLeftShift:  KeysymShiftL,
	codeRightShift: KeysymShiftR,
	codeLeftAlt:    KeysymAltL,
	codeSpace:      ' ',
	codeCapsLock:   KeysymCapsLock,
	codeF11:        KeysymF1 + 10,
	codeF12:        KeysymF1 + 11,
	codeRightCtrl:  KeysymControlR,
	codeRightAlt:   KeysymAltR,
	codeHome:       KeysymHome,
	codeUp:         KeysymUp,
	codePageUp:     KeysymPrior,
	codeLeft:       KeysymLeft,
	codeRight:      KeysymRight,
	codeEnd:        KeysymEnd,
	codeDown:       KeysymDown,
	codePageDown:   KeysymNext,
	codeInsert:     KeysymInsert,
	codeDelete:     KeysymDelete,
	codeLeftMeta:   KeysymSuperL,
	codeRightMeta:  KeysymSuperR,
}

// USKeymap is a fixed evdev "us" layout. It ignores keymaps sent by the
// compositor and is used when no other Keymap is configured.
type USKeymap struct {
	held                       uint32
	depressed, latched, locked uint32
}

func (km *USKeymap) Load(format uint32, file *os.File, size uint32) error {
	return nil
}

func (km *USKeymap) Keysyms(code uint32) []Keysym {
	code -= 8
	if sym, ok := usSpecial[code]; ok {
		return []Keysym{sym}
	}
	if (code >= codeF1) && (code < codeF1+10) {
		return []Keysym{KeysymF1 + Keysym(code-codeF1)}
	}

	state := km.state()
	shift := state&maskShift != 0
	for _, row := range usRows {
		if (code < row.first) || (code >= row.first+uint32(len(row.plain))) {
			continue
		}

		i := code - row.first
		plain := row.plain[i]
		upper := shift
		if (plain >= 'a') && (plain <= 'z') && (state&maskLock != 0) {
			upper = !upper
		}
		if upper {
			return []Keysym{Keysym(row.shifted[i])}
		}
		return []Keysym{Keysym(plain)}
	}

	return nil
}

func modifierMask(code uint32) uint32 {
	switch code {
	case codeLeftShift, codeRightShift:
		return maskShift
	case codeLeftCtrl, codeRightCtrl:
		return maskControl
	case codeLeftAlt, codeRightAlt:
		return maskMod1
	case codeLeftMeta, codeRightMeta:
		return maskMod4
	default:
		return 0
	}
}

func (km *USKeymap) UpdateKey(code uint32, down bool) {
	code -= 8
	if code == codeCapsLock {
		if down {
			km.locked ^= maskLock
		}
		return
	}

	mask := modifierMask(code)
	if down {
		km.held |= mask
		return
	}
	km.held &^= mask
}

func (km *USKeymap) UpdateMask(depressed, latched, locked, group uint32) {
	km.depressed = depressed
	km.latched = latched
	km.locked = locked
}

func (km *USKeymap) state() uint32 {
	return km.held | km.depressed | km.latched | km.locked
}

func (km *USKeymap) ModifierActive(name string) bool {
	active := km.held | km.depressed | km.latched
	switch name {
	case ModShift:
		return active&maskShift != 0
	case ModLock:
		return active&maskLock != 0
	case ModControl:
		return active&maskControl != 0
	case ModAlt, ModMod1:
		return active&maskMod1 != 0
	case ModMod4:
		return active&maskMod4 != 0
	default:
		return false
	}
}
