package platform

import (
	"image"
	"testing"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type configureEvent struct {
	edges uint32
	size  image.Point
}

type fakeWindow struct {
	surface    *wl.Surface
	origin     image.Point
	margins    Margins
	configured []configureEvent
}

func (w *fakeWindow) Surface() *wl.Surface                    { return w.surface }
func (w *fakeWindow) MapToGlobal(p image.Point) image.Point   { return p.Add(w.origin) }
func (w *fakeWindow) MapFromGlobal(p image.Point) image.Point { return p.Sub(w.origin) }
func (w *fakeWindow) FrameMargins() Margins                   { return w.margins }

func (w *fakeWindow) Configure(edges uint32, size image.Point) {
	w.configured = append(w.configured, configureEvent{edges, size})
}

type (
	mouseEnter  struct{ w Window }
	mouseLeave  struct{ w Window }
	activated   struct{ w Window }
	touchCancel struct{ source TouchSource }
)

type recorder struct {
	events []any
}

func (r *recorder) MouseEnter(w Window)            { r.events = append(r.events, mouseEnter{w}) }
func (r *recorder) MouseLeave(w Window)            { r.events = append(r.events, mouseLeave{w}) }
func (r *recorder) Mouse(ev MouseEvent)            { r.events = append(r.events, ev) }
func (r *recorder) Wheel(ev WheelEvent)            { r.events = append(r.events, ev) }
func (r *recorder) Key(ev KeyEvent)                { r.events = append(r.events, ev) }
func (r *recorder) Touch(ev TouchEvent)            { r.events = append(r.events, ev) }
func (r *recorder) TouchCancel(source TouchSource) { r.events = append(r.events, touchCancel{source}) }
func (r *recorder) WindowActivated(w Window)       { r.events = append(r.events, activated{w}) }

func (r *recorder) reset() {
	r.events = nil
}

func eventsOf[T any](r *recorder) (events []T) {
	for _, ev := range r.events {
		if ev, ok := ev.(T); ok {
			events = append(events, ev)
		}
	}
	return events
}

func newTestDisplay() (*Display, *recorder, *InputDevice) {
	r := new(recorder)
	d := Display{
		ws:        r,
		newKeymap: func() Keymap { return new(USKeymap) },
		windows:   make(map[*wl.Surface]Window),
	}
	dev := newInputDevice(&d, nil)
	d.devices = append(d.devices, dev)
	return &d, r, dev
}

func newWindow(d *Display, origin image.Point) *fakeWindow {
	w := fakeWindow{
		surface: &wl.Surface{},
		origin:  origin,
	}
	d.AddWindow(&w)
	return &w
}

const (
	pressed  = protocol.PointerButtonStatePressed
	released = protocol.PointerButtonStateReleased
)

func TestPointerEnter(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Pt(100, 200))

	dev.pointerEnter(1, nil, 0, 0)
	dev.pointerEnter(1, &wl.Surface{}, 0, 0)
	assert.Empty(t, r.events)

	dev.pointerEnter(1, w.surface, wire.FixedFloat(10.5), wire.FixedInt(20))
	require.Len(t, r.events, 2)
	assert.Equal(t, mouseEnter{w}, r.events[0])

	ev := r.events[1].(MouseEvent)
	assert.Equal(t, Window(w), ev.Window)
	assert.Equal(t, pointer.PointF{X: 10.5, Y: 20}, ev.Local)
	assert.Equal(t, pointer.PointF{X: 110.5, Y: 220}, ev.Global)
	assert.Equal(t, pointer.NoButton, ev.Buttons)
	assert.Equal(t, Window(w), dev.PointerFocus())
	assert.Equal(t, uint32(1), dev.Serial())
}

func TestStaleLeaveIsIgnored(t *testing.T) {
	d, r, dev := newTestDisplay()
	w1 := newWindow(d, image.Point{})
	w2 := newWindow(d, image.Point{})

	dev.pointerEnter(1, w1.surface, 0, 0)
	dev.pointerButton(2, 0, uint32(pointer.ButtonLeft), pressed)
	r.reset()

	dev.pointerLeave(3, w2.surface)
	dev.pointerLeave(3, nil)
	assert.Empty(t, r.events)
	assert.Equal(t, Window(w1), dev.PointerFocus())
	assert.Equal(t, pointer.LeftButton, dev.Buttons())

	dev.pointerLeave(4, w1.surface)
	assert.Equal(t, []any{mouseLeave{w1}}, r.events)
	assert.Nil(t, dev.PointerFocus())
	assert.Equal(t, pointer.NoButton, dev.Buttons())
}

func TestMotion(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Pt(100, 200))

	dev.pointerMotion(5, wire.FixedInt(1), wire.FixedInt(1))
	assert.Empty(t, r.events)

	dev.pointerEnter(1, w.surface, 0, 0)
	r.reset()

	dev.pointerMotion(5, wire.FixedFloat(1.25), wire.FixedInt(2))
	require.Len(t, r.events, 1)
	ev := r.events[0].(MouseEvent)
	assert.Equal(t, uint32(5), ev.Time)
	assert.Equal(t, pointer.PointF{X: 1.25, Y: 2}, ev.Local)
	assert.Equal(t, pointer.PointF{X: 101.25, Y: 202}, ev.Global)
}

func TestButtons(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Point{})

	dev.pointerButton(1, 0, uint32(pointer.ButtonMiddle), pressed)
	assert.Empty(t, r.events)
	assert.Equal(t, pointer.MiddleButton, dev.Buttons())
	dev.pointerButton(1, 0, uint32(pointer.ButtonMiddle), released)

	dev.pointerEnter(1, w.surface, 0, 0)
	r.reset()

	dev.pointerButton(2, 10, uint32(pointer.ButtonLeft), pressed)
	dev.pointerButton(3, 11, uint32(pointer.ButtonRight), pressed)
	dev.pointerButton(4, 12, uint32(pointer.ButtonLeft), released)
	dev.pointerButton(5, 13, 0x120, pressed)

	events := eventsOf[MouseEvent](r)
	require.Len(t, events, 3)
	assert.Equal(t, pointer.LeftButton, events[0].Buttons)
	assert.Equal(t, pointer.LeftButton|pointer.RightButton, events[1].Buttons)
	assert.Equal(t, pointer.RightButton, events[2].Buttons)
	assert.Equal(t, uint32(12), events[2].Time)
	assert.Equal(t, pointer.RightButton, dev.Buttons())
	assert.Equal(t, uint32(4), dev.Serial())
}

func TestAxis(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Point{})

	dev.pointerAxis(1, protocol.PointerAxisVerticalScroll, wire.FixedInt(2))
	assert.Empty(t, r.events)

	dev.pointerEnter(1, w.surface, 0, 0)
	r.reset()

	dev.pointerAxis(1, protocol.PointerAxisVerticalScroll, wire.FixedInt(2))
	dev.pointerAxis(2, protocol.PointerAxisHorizontalScroll, wire.FixedFloat(-1.5))

	events := eventsOf[WheelEvent](r)
	require.Len(t, events, 2)
	assert.Equal(t, image.Pt(0, -24), events[0].AngleDelta)
	assert.Equal(t, image.Pt(12, 0), events[1].AngleDelta)
}

func TestKeyboard(t *testing.T) {
	const (
		keyA     = 30
		keyShift = 42
	)

	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Point{})

	// The keyboard state is tracked even without a focused window.
	dev.keyboardKey(1, 10, keyA, pressed)
	dev.keyboardKey(1, 10, keyA, released)
	dev.keyboardKey(1, 11, keyShift, pressed)
	assert.Empty(t, r.events)

	dev.keyboardEnter(2, w.surface, nil)
	assert.Equal(t, []any{activated{w}}, r.events)
	assert.Same(t, dev, d.LastKeyboardFocusInputDevice())
	r.reset()

	dev.keyboardKey(3, 12, keyA, pressed)
	dev.keyboardKey(4, 13, keyShift, released)
	dev.keyboardKey(5, 14, keyA, released)

	events := eventsOf[KeyEvent](r)
	require.Len(t, events, 3)
	assert.Equal(t, KeyEvent{
		Window:    w,
		Time:      12,
		Pressed:   true,
		Key:       'A',
		Modifiers: ShiftModifier,
		Code:      keyA + 8,
		Text:      "A",
	}, events[0])
	assert.Equal(t, KeyShift, events[1].Key)
	assert.False(t, events[1].Pressed)
	assert.Equal(t, KeyEvent{
		Window:    w,
		Time:      14,
		Key:       'A',
		Modifiers: NoModifier,
		Code:      keyA + 8,
		Text:      "a",
	}, events[2])

	r.reset()
	dev.keyboardLeave(6, w.surface)
	assert.Equal(t, []any{activated{nil}}, r.events)
	assert.Nil(t, dev.KeyboardFocus())
	assert.Nil(t, d.LastKeyboardFocusInputDevice())

	r.reset()
	dev.keyboardKey(7, 15, keyA, pressed)
	assert.Empty(t, r.events)
}

func TestTouchFrames(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Pt(100, 200))
	w.margins = Margins{Left: 2, Top: 3}

	states := func(ev TouchEvent) map[int32]pointer.TouchPointState {
		m := make(map[int32]pointer.TouchPointState)
		for _, p := range ev.Points {
			m[p.ID] = p.State
		}
		return m
	}
	find := func(ev TouchEvent, id int32) pointer.TouchPoint {
		for _, p := range ev.Points {
			if p.ID == id {
				return p
			}
		}
		t.Fatalf("point %v not in event", id)
		return pointer.TouchPoint{}
	}

	dev.touchDown(1, 10, w.surface, 1, wire.FixedInt(10), wire.FixedInt(20))
	dev.touchDown(2, 11, w.surface, 2, wire.FixedInt(30), wire.FixedInt(40))
	dev.touchFrame()

	dev.touchMotion(12, 1, wire.FixedInt(11), wire.FixedInt(21))
	dev.touchFrame()

	dev.touchUp(3, 13, 2)
	dev.touchFrame()

	dev.touchUp(4, 14, 1)
	dev.touchFrame()

	events := eventsOf[TouchEvent](r)
	require.Len(t, events, 5)
	for _, ev := range events {
		assert.Nil(t, ev.Window)
		assert.Equal(t, TouchScreen, ev.Source)
	}

	assert.Equal(t, map[int32]pointer.TouchPointState{
		1: pointer.TouchPointPressed,
		2: pointer.TouchPointPressed,
	}, states(events[0]))
	p := find(events[0], 1)
	assert.Equal(t, pointer.PointF{X: 112, Y: 223}, p.Pos)
	assert.Equal(t, pointer.PointF{X: 8, Y: 8}, p.Size)
	assert.Equal(t, 1.0, p.Pressure)
	assert.Equal(t, uint32(11), events[0].Time)

	assert.Equal(t, map[int32]pointer.TouchPointState{
		1: pointer.TouchPointMoved,
		2: pointer.TouchPointStationary,
	}, states(events[1]))
	assert.Equal(t, pointer.PointF{X: 113, Y: 224}, find(events[1], 1).Pos)
	assert.Equal(t, pointer.PointF{X: 132, Y: 243}, find(events[1], 2).Pos)

	assert.Equal(t, map[int32]pointer.TouchPointState{
		1: pointer.TouchPointStationary,
		2: pointer.TouchPointReleased,
	}, states(events[2]))
	p = find(events[2], 2)
	assert.Equal(t, pointer.PointF{X: 132, Y: 243}, p.Pos)
	assert.Zero(t, p.Pressure)

	assert.Equal(t, map[int32]pointer.TouchPointState{
		1: pointer.TouchPointReleased,
	}, states(events[3]))
	assert.Equal(t, pointer.PointF{X: 113, Y: 224}, find(events[3], 1).Pos)
	assert.Empty(t, events[4].Points)
}

func TestTouchWithoutWindow(t *testing.T) {
	_, r, dev := newTestDisplay()

	dev.touchDown(1, 10, &wl.Surface{}, 1, 0, 0)
	dev.touchFrame()
	assert.Empty(t, r.events)
}

func TestTouchCancel(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Point{})

	dev.touchDown(1, 10, w.surface, 1, 0, 0)
	dev.touchFrame()
	dev.touchCancel()
	dev.touchFrame()

	require.Len(t, r.events, 2)
	assert.IsType(t, TouchEvent{}, r.events[0])
	assert.Equal(t, touchCancel{TouchScreen}, r.events[1])

	_, ok := dev.touches.Previous(1)
	assert.False(t, ok)
}

func TestRemoveWindowClearsFocus(t *testing.T) {
	d, r, dev := newTestDisplay()
	w := newWindow(d, image.Point{})

	dev.pointerEnter(1, w.surface, 0, 0)
	dev.keyboardEnter(2, w.surface, nil)
	r.reset()

	d.RemoveWindow(w)
	assert.Nil(t, dev.PointerFocus())
	assert.Nil(t, dev.KeyboardFocus())
	assert.Nil(t, d.Window(w.surface))

	dev.pointerMotion(3, 0, 0)
	dev.pointerLeave(4, w.surface)
	assert.Empty(t, r.events)
}
