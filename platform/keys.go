package platform

// Keysym is an X11 keysym.
type Keysym uint32

const (
	KeysymISOLeftTab        Keysym = 0xfe20
	KeysymISOLevel3Shift    Keysym = 0xfe03
	KeysymBackSpace         Keysym = 0xff08
	KeysymTab               Keysym = 0xff09
	KeysymClear             Keysym = 0xff0b
	KeysymReturn            Keysym = 0xff0d
	KeysymPause             Keysym = 0xff13
	KeysymScrollLock        Keysym = 0xff14
	KeysymEscape            Keysym = 0xff1b
	KeysymMultiKey          Keysym = 0xff20
	KeysymCodeinput         Keysym = 0xff37
	KeysymSingleCandidate   Keysym = 0xff3c
	KeysymMultipleCandidate Keysym = 0xff3d
	KeysymPreviousCandidate Keysym = 0xff3e
	KeysymHome              Keysym = 0xff50
	KeysymLeft              Keysym = 0xff51
	KeysymUp                Keysym = 0xff52
	KeysymRight             Keysym = 0xff53
	KeysymDown              Keysym = 0xff54
	KeysymPrior             Keysym = 0xff55
	KeysymNext              Keysym = 0xff56
	KeysymEnd               Keysym = 0xff57
	KeysymPrint             Keysym = 0xff61
	KeysymInsert            Keysym = 0xff63
	KeysymMenu              Keysym = 0xff67
	KeysymHelp              Keysym = 0xff6a
	KeysymModeSwitch        Keysym = 0xff7e
	KeysymNumLock           Keysym = 0xff7f
	KeysymKPSpace           Keysym = 0xff80
	KeysymKPTab             Keysym = 0xff89
	KeysymKPEnter           Keysym = 0xff8d
	KeysymKPHome            Keysym = 0xff95
	KeysymKPLeft            Keysym = 0xff96
	KeysymKPUp              Keysym = 0xff97
	KeysymKPRight           Keysym = 0xff98
	KeysymKPDown            Keysym = 0xff99
	KeysymKPPrior           Keysym = 0xff9a
	KeysymKPNext            Keysym = 0xff9b
	KeysymKPEnd             Keysym = 0xff9c
	KeysymKPBegin           Keysym = 0xff9d
	KeysymKPInsert          Keysym = 0xff9e
	KeysymKPDelete          Keysym = 0xff9f
	KeysymKPMultiply        Keysym = 0xffaa
	KeysymKPAdd             Keysym = 0xffab
	KeysymKPSeparator       Keysym = 0xffac
	KeysymKPSubtract        Keysym = 0xffad
	KeysymKPDecimal         Keysym = 0xffae
	KeysymKPDivide          Keysym = 0xffaf
	KeysymKPEqual           Keysym = 0xffbd
	KeysymF1                Keysym = 0xffbe
	KeysymF35               Keysym = 0xffe0
	KeysymShiftL            Keysym = 0xffe1
	KeysymShiftR            Keysym = 0xffe2
	KeysymControlL          Keysym = 0xffe3
	KeysymControlR          Keysym = 0xffe4
	KeysymCapsLock          Keysym = 0xffe5
	KeysymShiftLock         Keysym = 0xffe6
	KeysymMetaL             Keysym = 0xffe7
	KeysymMetaR             Keysym = 0xffe8
	KeysymAltL              Keysym = 0xffe9
	KeysymAltR              Keysym = 0xffea
	KeysymSuperL            Keysym = 0xffeb
	KeysymSuperR            Keysym = 0xffec
	KeysymHyperL            Keysym = 0xffed
	KeysymHyperR            Keysym = 0xffee
	KeysymDelete            Keysym = 0xffff
)

// Key is a logical key. Keys that produce a single Latin-1 character
// use the upper case form of that character as their value.
type Key uint32

const (
	KeySpace    Key = ' '
	KeyAsterisk Key = '*'
	KeyPlus     Key = '+'
	KeyComma    Key = ','
	KeyMinus    Key = '-'
	KeyPeriod   Key = '.'
	KeySlash    Key = '/'
	KeyEqual    Key = '='
)

const (
	KeyEscape Key = 0x01000000 + iota
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyReturn
	KeyEnter
	KeyInsert
	KeyDelete
	KeyPause
	KeyPrint
	KeySysReq
	KeyClear
)

const (
	KeyHome Key = 0x01000010 + iota
	KeyEnd
	KeyLeft
	KeyUp
	KeyRight
	KeyDown
	KeyPageUp
	KeyPageDown
)

const (
	KeyShift Key = 0x01000020 + iota
	KeyControl
	KeyMeta
	KeyAlt
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
)

const (
	KeyF1  Key = 0x01000030
	KeyF35 Key = KeyF1 + 34
)

const (
	KeySuperL Key = 0x01000053 + iota
	KeySuperR
	KeyMenu
	KeyHyperL
	KeyHyperR
	KeyHelp
)

const (
	KeyAltGr             Key = 0x01001103
	KeyMultiKey          Key = 0x01001120
	KeyCodeinput         Key = 0x01001137
	KeySingleCandidate   Key = 0x0100113c
	KeyMultipleCandidate Key = 0x0100113d
	KeyPreviousCandidate Key = 0x0100113e
	KeyModeSwitch        Key = 0x0100117e
)

var keyTable = map[Keysym]Key{
	KeysymEscape:            KeyEscape,
	KeysymTab:               KeyTab,
	KeysymISOLeftTab:        KeyBacktab,
	KeysymBackSpace:         KeyBackspace,
	KeysymReturn:            KeyReturn,
	KeysymInsert:            KeyInsert,
	KeysymDelete:            KeyDelete,
	KeysymClear:             KeyDelete,
	KeysymPause:             KeyPause,
	KeysymPrint:             KeyPrint,
	KeysymHome:              KeyHome,
	KeysymEnd:               KeyEnd,
	KeysymLeft:              KeyLeft,
	KeysymUp:                KeyUp,
	KeysymRight:             KeyRight,
	KeysymDown:              KeyDown,
	KeysymPrior:             KeyPageUp,
	KeysymNext:              KeyPageDown,
	KeysymShiftL:            KeyShift,
	KeysymShiftR:            KeyShift,
	KeysymShiftLock:         KeyShift,
	KeysymControlL:          KeyControl,
	KeysymControlR:          KeyControl,
	KeysymMetaL:             KeyMeta,
	KeysymMetaR:             KeyMeta,
	KeysymAltL:              KeyAlt,
	KeysymAltR:              KeyAlt,
	KeysymCapsLock:          KeyCapsLock,
	KeysymNumLock:           KeyNumLock,
	KeysymScrollLock:        KeyScrollLock,
	KeysymSuperL:            KeySuperL,
	KeysymSuperR:            KeySuperR,
	KeysymMenu:              KeyMenu,
	KeysymHyperL:            KeyHyperL,
	KeysymHyperR:            KeyHyperR,
	KeysymHelp:              KeyHelp,
	KeysymKPSpace:           KeySpace,
	KeysymKPTab:             KeyTab,
	KeysymKPEnter:           KeyEnter,
	KeysymKPHome:            KeyHome,
	KeysymKPLeft:            KeyLeft,
	KeysymKPUp:              KeyUp,
	KeysymKPRight:           KeyRight,
	KeysymKPDown:            KeyDown,
	KeysymKPPrior:           KeyPageUp,
	KeysymKPNext:            KeyPageDown,
	KeysymKPEnd:             KeyEnd,
	KeysymKPBegin:           KeyClear,
	KeysymKPInsert:          KeyInsert,
	KeysymKPDelete:          KeyDelete,
	KeysymKPEqual:           KeyEqual,
	KeysymKPMultiply:        KeyAsterisk,
	KeysymKPAdd:             KeyPlus,
	KeysymKPSeparator:       KeyComma,
	KeysymKPSubtract:        KeyMinus,
	KeysymKPDecimal:         KeyPeriod,
	KeysymKPDivide:          KeySlash,
	KeysymISOLevel3Shift:    KeyAltGr,
	KeysymMultiKey:          KeyMultiKey,
	KeysymCodeinput:         KeyCodeinput,
	KeysymSingleCandidate:   KeySingleCandidate,
	KeysymMultipleCandidate: KeyMultipleCandidate,
	KeysymPreviousCandidate: KeyPreviousCandidate,
	KeysymModeSwitch:        KeyModeSwitch,
}

// TranslateKey returns the logical key for sym and the text that it
// produces. Only keysyms that are not in the table of special keys
// produce text.
func TranslateKey(sym Keysym) (Key, string) {
	if (sym >= KeysymF1) && (sym <= KeysymF35) {
		return KeyF1 + Key(sym-KeysymF1), ""
	}

	if key, ok := keyTable[sym]; ok {
		return key, ""
	}

	var text string
	if sym < 0x100 {
		text = string(rune(sym))
	}
	if (sym >= 'a') && (sym <= 'z') {
		sym -= 'a' - 'A'
	}
	return Key(sym), text
}

// Modifiers is a set of held modifier keys.
type Modifiers uint32

const NoModifier Modifiers = 0

const (
	ShiftModifier Modifiers = 1 << iota
	ControlModifier
	AltModifier
	MetaModifier
)

func (m Modifiers) String() string {
	if m == NoModifier {
		return "none"
	}

	var str string
	add := func(mod Modifiers, name string) {
		if m&mod == 0 {
			return
		}
		if str != "" {
			str += "+"
		}
		str += name
	}
	add(ShiftModifier, "shift")
	add(ControlModifier, "control")
	add(AltModifier, "alt")
	add(MetaModifier, "meta")
	return str
}

// translateModifiers collects the modifiers that are active in km.
func translateModifiers(km Keymap) (mods Modifiers) {
	if km.ModifierActive(ModShift) {
		mods |= ShiftModifier
	}
	if km.ModifierActive(ModControl) {
		mods |= ControlModifier
	}
	if km.ModifierActive(ModAlt) || km.ModifierActive(ModMod1) {
		mods |= AltModifier
	}
	if km.ModifierActive(ModMod4) {
		mods |= MetaModifier
	}
	return mods
}
