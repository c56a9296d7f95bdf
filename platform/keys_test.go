package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		sym  Keysym
		key  Key
		text string
	}{
		{KeysymF1, KeyF1, ""},
		{KeysymF1 + 11, KeyF1 + 11, ""},
		{KeysymF35, KeyF35, ""},
		{KeysymEscape, KeyEscape, ""},
		{KeysymISOLeftTab, KeyBacktab, ""},
		{KeysymClear, KeyDelete, ""},
		{KeysymKPEnter, KeyEnter, ""},
		{KeysymKPAdd, KeyPlus, ""},
		{KeysymShiftR, KeyShift, ""},
		{KeysymISOLevel3Shift, KeyAltGr, ""},
		{'a', 'A', "a"},
		{'z', 'Z', "z"},
		{'Q', 'Q', "Q"},
		{'1', '1', "1"},
		{' ', KeySpace, " "},
		{0xe9, 0xe9, "é"},
		{0x20ac, 0x20ac, ""},
	}
	for _, test := range tests {
		key, text := TranslateKey(test.sym)
		assert.Equal(t, test.key, key, "%#x", uint32(test.sym))
		assert.Equal(t, test.text, text, "%#x", uint32(test.sym))
	}
}

func TestModifiers(t *testing.T) {
	var km USKeymap
	assert.Equal(t, NoModifier, translateModifiers(&km))

	km.UpdateMask(maskControl|maskMod1|maskMod4, 0, 0, 0)
	mods := translateModifiers(&km)
	assert.Equal(t, ControlModifier|AltModifier|MetaModifier, mods)
	assert.Equal(t, "control+alt+meta", mods.String())

	km.UpdateMask(0, maskShift, 0, 0)
	assert.Equal(t, ShiftModifier, translateModifiers(&km))

	// Locked modifiers are not held.
	km.UpdateMask(0, 0, maskShift, 0)
	assert.Equal(t, NoModifier, translateModifiers(&km))
	assert.Equal(t, "none", NoModifier.String())
}

func TestUSKeymap(t *testing.T) {
	const (
		keyA     = 30 + 8
		key1     = 2 + 8
		keyShift = 42 + 8
		keyCaps  = 58 + 8
		keyF5    = 63 + 8
		keyUp    = 103 + 8
	)

	var km USKeymap
	assert.Equal(t, []Keysym{'a'}, km.Keysyms(keyA))
	assert.Equal(t, []Keysym{'1'}, km.Keysyms(key1))
	assert.Equal(t, []Keysym{KeysymF1 + 4}, km.Keysyms(keyF5))
	assert.Equal(t, []Keysym{KeysymUp}, km.Keysyms(keyUp))
	assert.Empty(t, km.Keysyms(0x200))

	km.UpdateKey(keyShift, true)
	assert.True(t, km.ModifierActive(ModShift))
	assert.Equal(t, []Keysym{'A'}, km.Keysyms(keyA))
	assert.Equal(t, []Keysym{'!'}, km.Keysyms(key1))
	km.UpdateKey(keyShift, false)
	assert.False(t, km.ModifierActive(ModShift))

	km.UpdateKey(keyCaps, true)
	km.UpdateKey(keyCaps, false)
	assert.Equal(t, []Keysym{'A'}, km.Keysyms(keyA))
	assert.Equal(t, []Keysym{'1'}, km.Keysyms(key1))

	km.UpdateKey(keyShift, true)
	assert.Equal(t, []Keysym{'a'}, km.Keysyms(keyA))
	km.UpdateKey(keyShift, false)

	km.UpdateKey(keyCaps, true)
	assert.Equal(t, []Keysym{'a'}, km.Keysyms(keyA))
}
