package platform

import (
	"image"
	"os"
	"time"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// touchArea is the size of the area reported for wl_touch points,
// which carry no size of their own.
const touchArea = 8

// InputDevice tracks the state of a seat and turns its events into
// window system events.
type InputDevice struct {
	d    *Display
	seat *wl.Seat
	caps uint32

	pointer  *wl.Pointer
	keyboard *wl.Keyboard
	touch    *wl.Touch
	keymap   Keymap

	time        uint32
	serial      uint32
	enterSerial uint32

	pointerFocus  Window
	keyboardFocus Window
	touchFocus    Window

	buttons    pointer.MouseButton
	surfacePos pointer.PointF
	globalPos  pointer.PointF

	touchTime uint32
	touches   pointer.Reconciler
}

func newInputDevice(d *Display, seat *wl.Seat) *InputDevice {
	dev := InputDevice{
		d:       d,
		seat:    seat,
		keymap:  d.newKeymap(),
		touches: pointer.Reconciler{Terminal: true},
	}
	if seat != nil {
		seat.Capabilities = dev.capabilities
	}
	return &dev
}

func currentTime() uint32 {
	return uint32(time.Now().UnixMilli())
}

// Seat returns the underlying wl_seat.
func (dev *InputDevice) Seat() *wl.Seat {
	return dev.seat
}

// Capabilities returns the capabilities that the seat last announced.
func (dev *InputDevice) Capabilities() uint32 {
	return dev.caps
}

// Serial returns the serial of the last input event, as is needed for
// requests such as wl_shell_surface.move.
func (dev *InputDevice) Serial() uint32 {
	return dev.serial
}

func (dev *InputDevice) Buttons() pointer.MouseButton {
	return dev.buttons
}

func (dev *InputDevice) PointerFocus() Window {
	return dev.pointerFocus
}

func (dev *InputDevice) KeyboardFocus() Window {
	return dev.keyboardFocus
}

// SetCursor sets the pointer image for the focused window. A nil
// surface hides the pointer.
func (dev *InputDevice) SetCursor(s *wl.Surface, hotspot image.Point) {
	if dev.pointer == nil {
		return
	}
	dev.pointer.SetCursor(dev.enterSerial, s, int32(hotspot.X), int32(hotspot.Y))
}

// HandleWindowDestroyed forgets w. It must be called before the
// window's surface is destroyed.
func (dev *InputDevice) HandleWindowDestroyed(w Window) {
	if w == dev.pointerFocus {
		dev.pointerFocus = nil
	}
	if w == dev.keyboardFocus {
		dev.keyboardFocus = nil
	}
	if w == dev.touchFocus {
		dev.touchFocus = nil
	}
}

func (dev *InputDevice) capabilities(caps uint32) {
	dev.caps = caps

	if (caps&protocol.SeatCapabilityKeyboard != 0) && (dev.keyboard == nil) {
		dev.keyboard = dev.seat.GetKeyboard()
		dev.keyboard.Keymap = dev.keyboardKeymap
		dev.keyboard.Enter = dev.keyboardEnter
		dev.keyboard.Leave = dev.keyboardLeave
		dev.keyboard.Key = dev.keyboardKey
		dev.keyboard.Modifiers = dev.keyboardModifiers
	}

	if (caps&protocol.SeatCapabilityPointer != 0) && (dev.pointer == nil) {
		dev.pointer = dev.seat.GetPointer()
		dev.pointer.Enter = dev.pointerEnter
		dev.pointer.Leave = dev.pointerLeave
		dev.pointer.Motion = dev.pointerMotion
		dev.pointer.Button = dev.pointerButton
		dev.pointer.Axis = dev.pointerAxis
	}

	if (caps&protocol.SeatCapabilityTouch != 0) && (dev.touch == nil) {
		dev.touch = dev.seat.GetTouch()
		dev.touch.Down = dev.touchDown
		dev.touch.Up = dev.touchUp
		dev.touch.Motion = dev.touchMotion
		dev.touch.Frame = dev.touchFrame
		dev.touch.Cancel = dev.touchCancel
	}
}

func (dev *InputDevice) mouseEvent(w Window) MouseEvent {
	return MouseEvent{
		Window:  w,
		Time:    dev.time,
		Local:   dev.surfacePos,
		Global:  dev.globalPos,
		Buttons: dev.buttons,
	}
}

func (dev *InputDevice) setPos(w Window, x, y wire.Fixed) {
	dev.surfacePos = pointer.PointF{X: x.Float(), Y: y.Float()}
	dev.globalPos = mapToGlobal(w, dev.surfacePos)
}

func (dev *InputDevice) pointerEnter(serial uint32, s *wl.Surface, x, y wire.Fixed) {
	if s == nil {
		return
	}
	w := dev.d.Window(s)
	if w == nil {
		debug.Debug("pointer entered unknown surface", "surface", s.ID())
		return
	}

	dev.time = currentTime()
	dev.serial = serial
	dev.enterSerial = serial
	dev.setPos(w, x, y)

	dev.d.ws.MouseEnter(w)
	dev.d.ws.Mouse(dev.mouseEvent(w))
	dev.pointerFocus = w
}

func (dev *InputDevice) pointerLeave(serial uint32, s *wl.Surface) {
	// The surface is nil if the window has already been destroyed.
	if s == nil {
		return
	}
	w := dev.d.Window(s)
	if (w == nil) || (w != dev.pointerFocus) {
		debug.Debug("ignoring stale pointer leave", "surface", s.ID())
		return
	}

	dev.d.ws.MouseLeave(w)
	dev.pointerFocus = nil
	dev.buttons = pointer.NoButton
	dev.serial = serial
}

func (dev *InputDevice) pointerMotion(time uint32, x, y wire.Fixed) {
	w := dev.pointerFocus
	if w == nil {
		// The focused window was destroyed before the compositor found
		// out about it.
		return
	}

	dev.time = time
	dev.setPos(w, x, y)
	dev.d.ws.Mouse(dev.mouseEvent(w))
}

func (dev *InputDevice) pointerButton(serial, time, button, state uint32) {
	b, ok := pointer.Button(button).MouseButton()
	if !ok {
		debug.Debug("dropping unknown button", "button", pointer.Button(button))
		return
	}

	if state == protocol.PointerButtonStatePressed {
		dev.buttons = dev.buttons.Press(b)
	} else {
		dev.buttons = dev.buttons.Release(b)
	}

	dev.time = time
	dev.serial = serial

	if w := dev.pointerFocus; w != nil {
		dev.d.ws.Mouse(dev.mouseEvent(w))
	}
}

func (dev *InputDevice) pointerAxis(time, axis uint32, value wire.Fixed) {
	w := dev.pointerFocus
	if w == nil {
		return
	}

	delta := value.Int() * -12
	var angle image.Point
	if axis == protocol.PointerAxisHorizontalScroll {
		angle.X = delta
	} else {
		angle.Y = delta
	}

	dev.time = time
	dev.d.ws.Wheel(WheelEvent{
		Window:     w,
		Time:       time,
		Local:      dev.surfacePos,
		Global:     dev.globalPos,
		AngleDelta: angle,
	})
}

func (dev *InputDevice) keyboardKeymap(format uint32, file *os.File, size uint32) {
	defer file.Close()

	if dev.keymap == nil {
		return
	}
	err := dev.keymap.Load(format, file, size)
	if err != nil {
		debug.Warn("load keymap", "format", format, "err", err)
	}
}

func (dev *InputDevice) keyboardEnter(serial uint32, s *wl.Surface, keys []uint32) {
	if s == nil {
		return
	}
	w := dev.d.Window(s)
	if w == nil {
		return
	}

	dev.serial = serial
	dev.keyboardFocus = w
	dev.d.lastKeyboardFocus = dev
	dev.d.ws.WindowActivated(w)
}

func (dev *InputDevice) keyboardLeave(serial uint32, s *wl.Surface) {
	dev.keyboardFocus = nil
	if dev.d.lastKeyboardFocus == dev {
		dev.d.lastKeyboardFocus = nil
	}
	dev.d.ws.WindowActivated(nil)
}

func (dev *InputDevice) keyboardKey(serial, time, key, state uint32) {
	if dev.keymap == nil {
		return
	}

	code := key + 8
	down := state == protocol.KeyboardKeyStatePressed
	syms := dev.keymap.Keysyms(code)
	dev.keymap.UpdateKey(code, down)

	w := dev.keyboardFocus
	if w == nil {
		// The focused window was destroyed before the compositor found
		// out about it.
		return
	}
	if len(syms) != 1 {
		return
	}

	dev.time = time
	dev.serial = serial

	k, text := TranslateKey(syms[0])
	dev.d.ws.Key(KeyEvent{
		Window:    w,
		Time:      time,
		Pressed:   down,
		Key:       k,
		Modifiers: translateModifiers(dev.keymap),
		Code:      code,
		Text:      text,
	})
}

func (dev *InputDevice) keyboardModifiers(serial, depressed, latched, locked, group uint32) {
	if dev.keymap != nil {
		dev.keymap.UpdateMask(depressed, latched, locked, group)
	}
}

// touchWindow returns the window that touch points are relative to.
func (dev *InputDevice) touchWindow() Window {
	switch {
	case dev.touchFocus != nil:
		return dev.touchFocus
	case dev.pointerFocus != nil:
		return dev.pointerFocus
	default:
		return dev.keyboardFocus
	}
}

func (dev *InputDevice) touchDown(serial, time uint32, s *wl.Surface, id int32, x, y wire.Fixed) {
	dev.serial = serial
	dev.touchTime = time
	dev.touchFocus = nil
	if s != nil {
		dev.touchFocus = dev.d.Window(s)
	}
	dev.handleTouchPoint(id, x.Float(), y.Float(), pointer.TouchPointPressed)
}

func (dev *InputDevice) touchUp(serial, time uint32, id int32) {
	dev.serial = serial
	dev.touchTime = time
	dev.touchFocus = nil
	dev.handleTouchPoint(id, 0, 0, pointer.TouchPointReleased)
}

func (dev *InputDevice) touchMotion(time uint32, id int32, x, y wire.Fixed) {
	dev.touchTime = time
	dev.handleTouchPoint(id, x.Float(), y.Float(), pointer.TouchPointMoved)
}

func (dev *InputDevice) handleTouchPoint(id int32, x, y float64, state pointer.TouchPointState) {
	tp := pointer.TouchPoint{
		ID:    id,
		State: state,
	}

	prev, ok := dev.touches.Previous(id)
	if (state == pointer.TouchPointReleased) && ok {
		// Releases carry no position.
		tp.Pos = prev.Pos
		tp.Size = prev.Size
	} else {
		w := dev.touchWindow()
		if w == nil {
			debug.Debug("dropping touch point without a window", "id", id)
			return
		}

		m := w.FrameMargins()
		center := w.MapToGlobal(image.Pt(int(x+float64(m.Left)), int(y+float64(m.Top))))
		tp.Pos = fromPoint(center)
		tp.Size = pointer.PointF{X: touchArea, Y: touchArea}
	}

	if state != pointer.TouchPointReleased {
		tp.Pressure = 1
	}
	dev.touches.Add(tp)
}

func (dev *InputDevice) touchFrame() {
	dev.touches.Frame(func(points []pointer.TouchPoint) {
		dev.d.ws.Touch(TouchEvent{
			Time:   dev.touchTime,
			Source: TouchScreen,
			Points: points,
		})
	})
}

func (dev *InputDevice) touchCancel() {
	dev.touches.Cancel()
	if ext := dev.d.touchExt; ext != nil {
		ext.touchCanceled()
	}
	dev.d.ws.TouchCancel(TouchScreen)
}
