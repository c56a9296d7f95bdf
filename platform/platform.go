// Package platform turns the events of a Wayland client connection
// into window system events for a toolkit. The toolkit supplies a
// Window for each of its surfaces and a WindowSystem that receives
// mouse, keyboard and touch events for them.
package platform

import (
	"image"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/pointer"
)

// Margins are the sizes of a window's decorations.
type Margins struct {
	Left, Top, Right, Bottom int
}

// Window is a toolkit window that is backed by a surface.
type Window interface {
	Surface() *wl.Surface

	// MapToGlobal and MapFromGlobal convert between window-local and
	// screen coordinates.
	MapToGlobal(p image.Point) image.Point
	MapFromGlobal(p image.Point) image.Point

	FrameMargins() Margins

	// Configure is called when the compositor suggests a new size for
	// the window. edges is a wl_shell_surface.resize value.
	Configure(edges uint32, size image.Point)
}

// WindowSystem receives the input events of a Display.
type WindowSystem interface {
	MouseEnter(w Window)
	MouseLeave(w Window)
	Mouse(ev MouseEvent)
	Wheel(ev WheelEvent)
	Key(ev KeyEvent)
	Touch(ev TouchEvent)
	TouchCancel(source TouchSource)

	// WindowActivated is called with nil when no window has the
	// keyboard focus.
	WindowActivated(w Window)
}

type MouseEvent struct {
	Window  Window
	Time    uint32
	Local   pointer.PointF
	Global  pointer.PointF
	Buttons pointer.MouseButton
}

// WheelEvent is a scroll. AngleDelta is in eighths of a degree, with
// positive values scrolling away from the user.
type WheelEvent struct {
	Window     Window
	Time       uint32
	Local      pointer.PointF
	Global     pointer.PointF
	AngleDelta image.Point
}

type KeyEvent struct {
	Window    Window
	Time      uint32
	Pressed   bool
	Key       Key
	Modifiers Modifiers

	// Code is the XKB keycode of the key.
	Code uint32

	// Text is the text that the key produces, if any.
	Text string
}

// TouchSource identifies the device that produced a touch event.
type TouchSource int

const (
	// TouchScreen is the seat's wl_touch. Its events have positions
	// and areas only.
	TouchScreen TouchSource = iota

	// TouchExtensionScreen is wl_touch_extension, which also reports
	// pressure, velocity and raw positions.
	TouchExtensionScreen
)

func (s TouchSource) String() string {
	switch s {
	case TouchScreen:
		return "touch"
	case TouchExtensionScreen:
		return "touch extension"
	default:
		return "unknown"
	}
}

// TouchEvent is a complete set of touch points. Points is empty in the
// event that follows the release of the last point.
type TouchEvent struct {
	// Window is nil for events from TouchScreen.
	Window Window
	Time   uint32
	Source TouchSource
	Points []pointer.TouchPoint
}

func toPoint(p pointer.PointF) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

func fromPoint(p image.Point) pointer.PointF {
	return pointer.PointF{X: float64(p.X), Y: float64(p.Y)}
}

// mapToGlobal maps the window-local p to screen coordinates, keeping
// its fractional part.
func mapToGlobal(w Window, p pointer.PointF) pointer.PointF {
	whole, frac := p.Round()
	return fromPoint(w.MapToGlobal(toPoint(whole))).Add(frac)
}

// mapFromGlobal is the inverse of mapToGlobal.
func mapFromGlobal(w Window, p pointer.PointF) pointer.PointF {
	whole, frac := p.Round()
	return fromPoint(w.MapFromGlobal(toPoint(whole))).Add(frac)
}
