package platform

import (
	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
)

// TouchExtension collects the points of wl_touch_extension events into
// complete touch events.
type TouchExtension struct {
	d     *Display
	ext   *wl.TouchExtension
	flags uint32

	pointsLeft int
	accepted   bool
	touches    pointer.Reconciler
	target     Window
	time       uint32

	hasMouseSource  bool
	mouseSource     int32
	lastMouseLocal  pointer.PointF
	lastMouseGlobal pointer.PointF
}

func newTouchExtension(d *Display, ext *wl.TouchExtension) *TouchExtension {
	te := TouchExtension{
		d:   d,
		ext: ext,
	}
	if ext != nil {
		ext.Touch = te.handleTouch
		ext.Configure = te.configure
	}
	return &te
}

// Flags returns the wl_touch_extension.flags that the compositor
// configured.
func (te *TouchExtension) Flags() uint32 {
	return te.flags
}

func (te *TouchExtension) configure(flags uint32) {
	te.flags = flags
}

func fromFixed(v int32) float64 {
	return float64(v) / 10000
}

// handleTouch adds one point to the event being built. The first point
// of an event carries the number of points in it. Points that cannot
// be delivered still count towards that number so that the next event
// starts in the right place.
func (te *TouchExtension) handleTouch(tp wl.TouchPoint) {
	if te.pointsLeft == 0 {
		te.pointsLeft = max(int(tp.State>>16), 1)
	}
	te.pointsLeft--

	if p, ok := te.point(tp); ok {
		te.touches.Add(p)
		te.time = tp.Time
		te.accepted = true
	}

	if te.pointsLeft > 0 {
		return
	}
	if te.accepted {
		te.sendTouchEvent()
	}
	te.accepted = false
}

func (te *TouchExtension) point(tp wl.TouchPoint) (pointer.TouchPoint, bool) {
	dev := te.d.firstInputDevice()
	if dev == nil {
		debug.Warn("touch extension event without an input device")
		return pointer.TouchPoint{}, false
	}
	w := dev.touchWindow()
	if w == nil {
		debug.Warn("touch extension event without a focused window")
		return pointer.TouchPoint{}, false
	}
	te.target = w

	p := pointer.TouchPoint{
		ID:            int32(tp.ID),
		State:         pointer.TouchPointState(tp.State & 0xFFFF),
		Flags:         tp.Flags,
		Pos:           mapToGlobal(w, pointer.PointF{X: fromFixed(tp.X), Y: fromFixed(tp.Y)}),
		Size:          pointer.PointF{X: fromFixed(tp.Width), Y: fromFixed(tp.Height)},
		NormalizedPos: pointer.PointF{X: fromFixed(tp.NormalizedX), Y: fromFixed(tp.NormalizedY)},
		Pressure:      float64(tp.Pressure) / 255,
		Velocity:      pointer.PointF{X: fromFixed(tp.VelocityX), Y: fromFixed(tp.VelocityY)},
	}
	for i := 0; i+1 < len(tp.RawPositions); i += 2 {
		p.RawPositions = append(p.RawPositions, pointer.PointF{
			X: float64(tp.RawPositions[i]),
			Y: float64(tp.RawPositions[i+1]),
		})
	}
	return p, true
}

func (te *TouchExtension) sendTouchEvent() {
	te.touches.Frame(func(points []pointer.TouchPoint) {
		te.d.ws.Touch(TouchEvent{
			Window: te.target,
			Time:   te.time,
			Source: TouchExtensionScreen,
			Points: points,
		})

		if te.flags&protocol.TouchExtensionFlagsMouseFromTouch != 0 {
			te.mouseFromTouch(points)
		}
	})
}

// mouseFromTouch moves a mouse along with the first point of a touch
// sequence.
func (te *TouchExtension) mouseFromTouch(points []pointer.TouchPoint) {
	if pointer.States(points) == pointer.TouchPointPressed {
		te.mouseSource = points[0].ID
		te.hasMouseSource = true
	}
	if !te.hasMouseSource {
		return
	}

	for _, p := range points {
		if p.ID != te.mouseSource {
			continue
		}

		buttons := pointer.LeftButton
		if p.State == pointer.TouchPointReleased {
			buttons = pointer.NoButton
		}

		te.lastMouseGlobal = p.Pos
		te.lastMouseLocal = mapFromGlobal(te.target, p.Pos)
		te.d.ws.Mouse(MouseEvent{
			Window:  te.target,
			Time:    te.time,
			Local:   te.lastMouseLocal,
			Global:  te.lastMouseGlobal,
			Buttons: buttons,
		})

		if buttons == pointer.NoButton {
			te.hasMouseSource = false
		}
		return
	}
}

// touchCanceled drops the touch history and releases the mouse if it
// is being driven by a touch point.
func (te *TouchExtension) touchCanceled() {
	te.touches.Cancel()
	te.pointsLeft = 0
	te.accepted = false
	if !te.hasMouseSource {
		return
	}

	te.hasMouseSource = false
	te.d.ws.Mouse(MouseEvent{
		Window:  te.target,
		Time:    te.time,
		Local:   te.lastMouseLocal,
		Global:  te.lastMouseGlobal,
		Buttons: pointer.NoButton,
	})
}
