// Package pointer contains utilities for handling pointer and touch
// input.
package pointer

import "fmt"

// Button indicates a mouse button by its kernel event code.
type Button uint32

// These values were pulled from linux/input-event-codes.h. Codes from
// 0x110 up to, but not including, 0x120 are mouse buttons.
const (
	ButtonLeft Button = 0x110 + iota
	ButtonRight
	ButtonMiddle
	ButtonSide
	ButtonExtra
	ButtonForward
	ButtonBack
	ButtonTask
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonSide:
		return "side"
	case ButtonExtra:
		return "extra"
	case ButtonForward:
		return "forward"
	case ButtonBack:
		return "back"
	case ButtonTask:
		return "task"
	}

	return fmt.Sprintf("button(%#x)", uint32(b))
}

// MouseButton is a logical mouse button. Values can be combined into a
// mask of the buttons that are currently held.
type MouseButton uint32

const (
	NoButton    MouseButton = 0
	LeftButton  MouseButton = 1 << (iota - 1)
	RightButton
	MiddleButton
	ExtraButton1
	ExtraButton2
	ExtraButton3
	ExtraButton4
	ExtraButton5
	ExtraButton6
	ExtraButton7
	ExtraButton8
	ExtraButton9
	ExtraButton10
	ExtraButton11
	ExtraButton12
	ExtraButton13
)

const (
	BackButton    = ExtraButton1
	ForwardButton = ExtraButton2
	TaskButton    = ExtraButton3
)

// MouseButton maps a kernel button code to a logical button. Codes
// outside of the mouse button range yield false.
func (b Button) MouseButton() (MouseButton, bool) {
	if (b < ButtonLeft) || (b >= ButtonLeft+16) {
		return NoButton, false
	}
	return LeftButton << (b - ButtonLeft), true
}

// Code maps a single logical button back to its kernel button code.
func (m MouseButton) Code() (Button, bool) {
	for i := Button(0); i < 16; i++ {
		if m == LeftButton<<i {
			return ButtonLeft + i, true
		}
	}
	return 0, false
}

// Press returns the mask with b held.
func (m MouseButton) Press(b MouseButton) MouseButton {
	return m | b
}

// Release returns the mask with b no longer held. Other buttons are
// unaffected.
func (m MouseButton) Release(b MouseButton) MouseButton {
	return m &^ b
}

// Has reports whether every button in b is held.
func (m MouseButton) Has(b MouseButton) bool {
	return (b != NoButton) && (m&b == b)
}
