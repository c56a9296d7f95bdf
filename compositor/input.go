package compositor

import (
	"image"
	"os"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/internal/set"
	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/slices"
)

// InputDevice is a seat. It forwards input from the embedder to the
// clients that own the focused surfaces. Focus is weak: destroying a
// focused surface clears the focus without sending leave events.
type InputDevice struct {
	c      *Compositor
	global *wl.Global
	caps   uint32

	seats     []*wl.Seat
	pointers  []*wl.Pointer
	keyboards []*wl.Keyboard
	touches   []*wl.Touch

	keymap     *os.File
	keymapSize uint32

	mouseFocus    *Surface
	keyboardFocus *Surface
	touchFocus    *Surface

	mousePos pointer.PointF
	buttons  pointer.MouseButton
	keys     []uint32
	touchIDs set.Set[int32]

	cursor  *Surface
	hotspot image.Point
}

func newInputDevice(c *Compositor, caps uint32) *InputDevice {
	d := InputDevice{
		c:        c,
		caps:     caps,
		touchIDs: make(set.Set[int32]),
	}
	d.global = c.server.AddGlobal(protocol.SeatInterface, protocol.SeatVersion, d.bind)
	return &d
}

func (d *InputDevice) bind(client *wl.Client, version, id uint32) error {
	seat, err := wl.BindSeat(client, version, id)
	if err != nil {
		return err
	}
	seat.Listener = (*seatListener)(d)
	d.seats = append(d.seats, seat)
	seat.OnDelete(func() { d.seats = deleteItem(d.seats, seat) })

	seat.Capabilities(d.caps)
	return nil
}

// Capabilities returns the wl_seat capability bits of the device.
func (d *InputDevice) Capabilities() uint32 {
	return d.caps
}

// SetCapabilities changes the capabilities of the device and
// announces them to every client.
func (d *InputDevice) SetCapabilities(caps uint32) {
	d.caps = caps
	for _, seat := range d.seats {
		seat.Capabilities(caps)
	}
}

// SetKeymap sets the XKB keymap that is sent to keyboards. The file
// is not closed by the device.
func (d *InputDevice) SetKeymap(file *os.File, size uint32) {
	d.keymap = file
	d.keymapSize = size
	for _, k := range d.keyboards {
		k.Keymap(protocol.KeyboardKeymapFormatXkbV1, file, size)
	}
}

func (d *InputDevice) MouseFocus() *Surface {
	return d.mouseFocus
}

func (d *InputDevice) KeyboardFocus() *Surface {
	return d.keyboardFocus
}

func (d *InputDevice) TouchFocus() *Surface {
	return d.touchFocus
}

// Buttons returns the mouse buttons that are currently held.
func (d *InputDevice) Buttons() pointer.MouseButton {
	return d.buttons
}

// MousePos returns the last position of the mouse relative to the
// focused surface.
func (d *InputDevice) MousePos() pointer.PointF {
	return d.mousePos
}

// Cursor returns the surface that the focused client wants to be
// displayed as the cursor and its hotspot.
func (d *InputDevice) Cursor() (*Surface, image.Point) {
	return d.cursor, d.hotspot
}

// live returns s unless it has been destroyed.
func live(s *Surface) *Surface {
	if (s != nil) && s.Destroyed() {
		return nil
	}
	return s
}

func kernelKey(code uint32) (uint32, bool) {
	if code < 8 {
		debug.Debug("dropping invalid key code", "code", code)
		return 0, false
	}
	return code - 8, true
}

func forClient[T interface{ Client() *wl.Client }](objs []T, client *wl.Client, f func(T)) {
	for _, obj := range slices.Clone(objs) {
		if obj.Client() == client {
			f(obj)
		}
	}
}

// SetMouseFocus moves the pointer to s at the surface-local position
// pos. The previously focused surface gets a leave event and s gets
// an enter event. A nil or destroyed s removes the focus.
func (d *InputDevice) SetMouseFocus(s *Surface, pos pointer.PointF) {
	s = live(s)
	d.mousePos = pos
	if s == d.mouseFocus {
		return
	}

	serial := d.c.server.NextSerial()
	if old := d.mouseFocus; old != nil {
		forClient(d.pointers, old.Client(), func(p *wl.Pointer) { p.Leave(serial, old.obj) })
	}

	d.mouseFocus = s
	d.buttons = pointer.NoButton
	d.cursor = nil
	if s == nil {
		return
	}

	x, y := wire.FixedFloat(pos.X), wire.FixedFloat(pos.Y)
	forClient(d.pointers, s.Client(), func(p *wl.Pointer) { p.Enter(serial, s.obj, x, y) })
}

// SendMouseMove moves the pointer to pos relative to s. If s is not
// the focused surface, the focus moves to it.
func (d *InputDevice) SendMouseMove(s *Surface, pos pointer.PointF) {
	s = live(s)
	if s != d.mouseFocus {
		d.SetMouseFocus(s, pos)
		return
	}
	if s == nil {
		return
	}

	d.mousePos = pos
	time := d.c.CurrentTimeMsecs()
	x, y := wire.FixedFloat(pos.X), wire.FixedFloat(pos.Y)
	forClient(d.pointers, s.Client(), func(p *wl.Pointer) { p.Motion(time, x, y) })
}

func (d *InputDevice) SendMousePress(b pointer.MouseButton) {
	d.sendButton(b, protocol.PointerButtonStatePressed)
}

func (d *InputDevice) SendMouseRelease(b pointer.MouseButton) {
	d.sendButton(b, protocol.PointerButtonStateReleased)
}

func (d *InputDevice) sendButton(b pointer.MouseButton, state uint32) {
	code, ok := b.Code()
	if !ok {
		debug.Debug("dropping unknown mouse button", "button", uint32(b))
		return
	}

	if state == protocol.PointerButtonStatePressed {
		d.buttons = d.buttons.Press(b)
	} else {
		d.buttons = d.buttons.Release(b)
	}

	s := d.mouseFocus
	if s == nil {
		return
	}

	serial := d.c.server.NextSerial()
	time := d.c.CurrentTimeMsecs()
	forClient(d.pointers, s.Client(), func(p *wl.Pointer) { p.Button(serial, time, uint32(code), state) })
}

// SendMouseWheel scrolls along axis, which is a wl_pointer.axis value.
func (d *InputDevice) SendMouseWheel(axis uint32, delta float64) {
	s := d.mouseFocus
	if s == nil {
		return
	}

	time := d.c.CurrentTimeMsecs()
	value := wire.FixedFloat(delta)
	forClient(d.pointers, s.Client(), func(p *wl.Pointer) { p.Axis(time, axis, value) })
}

// SetKeyboardFocus gives the keyboard focus to s. A nil or destroyed s
// removes the focus.
func (d *InputDevice) SetKeyboardFocus(s *Surface) {
	s = live(s)
	if s == d.keyboardFocus {
		return
	}

	serial := d.c.server.NextSerial()
	if old := d.keyboardFocus; old != nil {
		forClient(d.keyboards, old.Client(), func(k *wl.Keyboard) { k.Leave(serial, old.obj) })
	}

	d.keyboardFocus = s
	if s == nil {
		return
	}
	forClient(d.keyboards, s.Client(), func(k *wl.Keyboard) { k.Enter(serial, s.obj, d.keys) })
}

// SendKeyPress sends a key press. code is an XKB keycode, which is the
// kernel's code plus 8. Codes below 8 have no kernel equivalent and
// are dropped.
func (d *InputDevice) SendKeyPress(code uint32) {
	key, ok := kernelKey(code)
	if !ok {
		return
	}
	if !slices.Contains(d.keys, key) {
		d.keys = append(d.keys, key)
	}
	d.sendKey(key, protocol.KeyboardKeyStatePressed)
}

func (d *InputDevice) SendKeyRelease(code uint32) {
	key, ok := kernelKey(code)
	if !ok {
		return
	}
	d.keys = deleteItem(d.keys, key)
	d.sendKey(key, protocol.KeyboardKeyStateReleased)
}

func (d *InputDevice) sendKey(key, state uint32) {
	s := d.keyboardFocus
	if s == nil {
		return
	}

	serial := d.c.server.NextSerial()
	time := d.c.CurrentTimeMsecs()
	forClient(d.keyboards, s.Client(), func(k *wl.Keyboard) { k.Key(serial, time, key, state) })
}

// SendKeyModifiers sends the XKB modifier state to the focused client.
func (d *InputDevice) SendKeyModifiers(depressed, latched, locked, group uint32) {
	s := d.keyboardFocus
	if s == nil {
		return
	}

	serial := d.c.server.NextSerial()
	forClient(d.keyboards, s.Client(), func(k *wl.Keyboard) { k.Modifiers(serial, depressed, latched, locked, group) })
}

// SendTouchPoint sends a single touch point at a position relative to
// the touched surface. The first pressed point gives the touch focus
// to the surface that has the mouse focus. Stationary points are not
// sent. Call SendTouchFrame after the last point of an event.
func (d *InputDevice) SendTouchPoint(id int32, pos pointer.PointF, state pointer.TouchPointState) {
	if (d.touchFocus == nil) && (state == pointer.TouchPointPressed) {
		d.touchFocus = d.mouseFocus
	}
	s := d.touchFocus
	if s == nil {
		debug.Debug("dropping touch point without focus", "id", id)
		return
	}

	time := d.c.CurrentTimeMsecs()
	x, y := wire.FixedFloat(pos.X), wire.FixedFloat(pos.Y)
	switch state {
	case pointer.TouchPointPressed:
		d.touchIDs.Add(id)
		serial := d.c.server.NextSerial()
		forClient(d.touches, s.Client(), func(t *wl.Touch) { t.Down(serial, time, s.obj, id, x, y) })
	case pointer.TouchPointMoved:
		forClient(d.touches, s.Client(), func(t *wl.Touch) { t.Motion(time, id, x, y) })
	case pointer.TouchPointReleased:
		d.touchIDs.Delete(id)
		serial := d.c.server.NextSerial()
		forClient(d.touches, s.Client(), func(t *wl.Touch) { t.Up(serial, time, id) })
	}
}

// SendTouchFrame ends a touch event. Once no points are left down, the
// touch focus is cleared.
func (d *InputDevice) SendTouchFrame() {
	s := d.touchFocus
	if s == nil {
		return
	}

	forClient(d.touches, s.Client(), func(t *wl.Touch) { t.Frame() })
	if len(d.touchIDs) == 0 {
		d.touchFocus = nil
	}
}

// SendTouchCancel tells the touched client to forget every point.
func (d *InputDevice) SendTouchCancel() {
	s := d.touchFocus
	d.touchFocus = nil
	clear(d.touchIDs)
	if s == nil {
		return
	}

	forClient(d.touches, s.Client(), func(t *wl.Touch) { t.Cancel() })
}

// SendFullTouchEvent sends a complete touch event to the surface that
// has the mouse focus. Point positions are in compositor coordinates.
// The touch extension is used if the client has bound it and wl_touch
// is used otherwise.
func (d *InputDevice) SendFullTouchEvent(points []pointer.TouchPoint) {
	s := d.mouseFocus
	if s == nil {
		debug.Debug("dropping touch event without focus")
		return
	}

	if (d.c.touchExt != nil) && d.c.touchExt.PostTouchEvent(points, s) {
		return
	}
	if len(points) == 0 {
		return
	}

	origin := pointer.PointF{X: float64(s.pos.X), Y: float64(s.pos.Y)}
	for _, tp := range points {
		d.SendTouchPoint(tp.ID, tp.Pos.Sub(origin), tp.State)
	}
	d.SendTouchFrame()
}

func (d *InputDevice) surfaceDestroyed(s *Surface) {
	if d.mouseFocus == s {
		d.mouseFocus = nil
		d.buttons = pointer.NoButton
	}
	if d.keyboardFocus == s {
		d.keyboardFocus = nil
	}
	if d.touchFocus == s {
		d.touchFocus = nil
		clear(d.touchIDs)
	}
	if d.cursor == s {
		d.cursor = nil
	}
}

type seatListener InputDevice

func (lis *seatListener) GetPointer(p *wl.Pointer) {
	d := (*InputDevice)(lis)
	d.pointers = append(d.pointers, p)
	p.OnDelete(func() { d.pointers = deleteItem(d.pointers, p) })
	p.Listener = &pointerListener{d: d, p: p}

	if s := d.mouseFocus; (s != nil) && (s.Client() == p.Client()) {
		p.Enter(d.c.server.NextSerial(), s.obj, wire.FixedFloat(d.mousePos.X), wire.FixedFloat(d.mousePos.Y))
	}
}

func (lis *seatListener) GetKeyboard(k *wl.Keyboard) {
	d := (*InputDevice)(lis)
	d.keyboards = append(d.keyboards, k)
	k.OnDelete(func() { d.keyboards = deleteItem(d.keyboards, k) })

	if d.keymap != nil {
		k.Keymap(protocol.KeyboardKeymapFormatXkbV1, d.keymap, d.keymapSize)
	}
	if s := d.keyboardFocus; (s != nil) && (s.Client() == k.Client()) {
		k.Enter(d.c.server.NextSerial(), s.obj, d.keys)
	}
}

func (lis *seatListener) GetTouch(t *wl.Touch) {
	d := (*InputDevice)(lis)
	d.touches = append(d.touches, t)
	t.OnDelete(func() { d.touches = deleteItem(d.touches, t) })
}

type pointerListener struct {
	d *InputDevice
	p *wl.Pointer
}

// SetCursor is only honored for the client that has the mouse focus.
func (lis *pointerListener) SetCursor(serial uint32, obj *wl.Surface, hotspotX, hotspotY int32) {
	d := lis.d
	if (d.mouseFocus == nil) || (d.mouseFocus.Client() != lis.p.Client()) {
		return
	}

	d.cursor = nil
	if obj != nil {
		d.cursor = d.c.SurfaceByID(obj.Client(), obj.ID())
	}
	d.hotspot = image.Pt(int(hotspotX), int(hotspotY))
}
