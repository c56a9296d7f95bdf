package wl

import (
	"os"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Seat is a wl_seat, a group of input devices.
type Seat struct {
	Capabilities func(caps uint32)

	proxy
}

// BindSeat binds the seat global g.
func BindSeat(r *Registry, g Global) *Seat {
	var seat Seat
	seat.display = r.display
	r.Bind(g, protocol.SeatVersion, &seat)
	return &seat
}

func (seat *Seat) Interface() string {
	return protocol.SeatInterface
}

func (seat *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.SeatEventCapabilities:
		caps := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if seat.Capabilities != nil {
			seat.Capabilities(caps)
		}
		return nil

	default:
		return unknownEvent(seat, msg.Op())
	}
}

func newDevice[T wire.Object](seat *Seat, op uint16, obj T) T {
	seat.display.add(obj)

	msg := wire.NewMessage(seat, op)
	msg.WriteUint(obj.ID())
	seat.enqueue(msg)
	return obj
}

func (seat *Seat) GetPointer() *Pointer {
	p := Pointer{}
	p.display = seat.display
	return newDevice(seat, protocol.SeatRequestGetPointer, &p)
}

func (seat *Seat) GetKeyboard() *Keyboard {
	k := Keyboard{}
	k.display = seat.display
	return newDevice(seat, protocol.SeatRequestGetKeyboard, &k)
}

func (seat *Seat) GetTouch() *Touch {
	t := Touch{}
	t.display = seat.display
	return newDevice(seat, protocol.SeatRequestGetTouch, &t)
}

// Pointer is a wl_pointer. Surfaces passed to its callbacks are nil if
// the client has already destroyed them.
type Pointer struct {
	Enter  func(serial uint32, s *Surface, x, y wire.Fixed)
	Leave  func(serial uint32, s *Surface)
	Motion func(time uint32, x, y wire.Fixed)
	Button func(serial, time, button, state uint32)
	Axis   func(time, axis uint32, value wire.Fixed)

	proxy
}

func (p *Pointer) Interface() string {
	return protocol.PointerInterface
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.PointerEventEnter:
		serial := msg.ReadUint()
		sid := msg.ReadObject()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}

		if p.Enter != nil {
			p.Enter(serial, surfaceFor(p.display, sid), x, y)
		}
		return nil

	case protocol.PointerEventLeave:
		serial := msg.ReadUint()
		sid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		if p.Leave != nil {
			p.Leave(serial, surfaceFor(p.display, sid))
		}
		return nil

	case protocol.PointerEventMotion:
		time := msg.ReadUint()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}

		if p.Motion != nil {
			p.Motion(time, x, y)
		}
		return nil

	case protocol.PointerEventButton:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		button := msg.ReadUint()
		state := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if p.Button != nil {
			p.Button(serial, time, button, state)
		}
		return nil

	case protocol.PointerEventAxis:
		time := msg.ReadUint()
		axis := msg.ReadUint()
		value := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}

		if p.Axis != nil {
			p.Axis(time, axis, value)
		}
		return nil

	default:
		return unknownEvent(p, msg.Op())
	}
}

// SetCursor sets the surface that is displayed as the pointer while it
// is over one of the client's surfaces. A nil surface hides the
// pointer.
func (p *Pointer) SetCursor(serial uint32, s *Surface, hotspotX, hotspotY int32) {
	msg := wire.NewMessage(p, protocol.PointerRequestSetCursor)
	msg.WriteUint(serial)
	msg.WriteObject(s)
	msg.WriteInt(hotspotX)
	msg.WriteInt(hotspotY)
	p.enqueue(msg)
}

// Keyboard is a wl_keyboard.
type Keyboard struct {
	// Keymap is handed ownership of file.
	Keymap    func(format uint32, file *os.File, size uint32)
	Enter     func(serial uint32, s *Surface, keys []uint32)
	Leave     func(serial uint32, s *Surface)
	Key       func(serial, time, key, state uint32)
	Modifiers func(serial, depressed, latched, locked, group uint32)

	proxy
}

func (k *Keyboard) Interface() string {
	return protocol.KeyboardInterface
}

func (k *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.KeyboardEventKeymap:
		format := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadUint()
		if err := msg.Err(); err != nil {
			if file != nil {
				file.Close()
			}
			return err
		}

		if k.Keymap == nil {
			file.Close()
			return nil
		}
		k.Keymap(format, file, size)
		return nil

	case protocol.KeyboardEventEnter:
		serial := msg.ReadUint()
		sid := msg.ReadObject()
		keys := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}

		if k.Enter != nil {
			k.Enter(serial, surfaceFor(k.display, sid), wire.Uints(keys))
		}
		return nil

	case protocol.KeyboardEventLeave:
		serial := msg.ReadUint()
		sid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		if k.Leave != nil {
			k.Leave(serial, surfaceFor(k.display, sid))
		}
		return nil

	case protocol.KeyboardEventKey:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		key := msg.ReadUint()
		state := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if k.Key != nil {
			k.Key(serial, time, key, state)
		}
		return nil

	case protocol.KeyboardEventModifiers:
		serial := msg.ReadUint()
		depressed := msg.ReadUint()
		latched := msg.ReadUint()
		locked := msg.ReadUint()
		group := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if k.Modifiers != nil {
			k.Modifiers(serial, depressed, latched, locked, group)
		}
		return nil

	default:
		return unknownEvent(k, msg.Op())
	}
}

// Touch is a wl_touch.
type Touch struct {
	Down   func(serial, time uint32, s *Surface, id int32, x, y wire.Fixed)
	Up     func(serial, time uint32, id int32)
	Motion func(time uint32, id int32, x, y wire.Fixed)
	Frame  func()
	Cancel func()

	proxy
}

func (t *Touch) Interface() string {
	return protocol.TouchInterface
}

func (t *Touch) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.TouchEventDown:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		sid := msg.ReadObject()
		id := msg.ReadInt()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}

		if t.Down != nil {
			t.Down(serial, time, surfaceFor(t.display, sid), id, x, y)
		}
		return nil

	case protocol.TouchEventUp:
		serial := msg.ReadUint()
		time := msg.ReadUint()
		id := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if t.Up != nil {
			t.Up(serial, time, id)
		}
		return nil

	case protocol.TouchEventMotion:
		time := msg.ReadUint()
		id := msg.ReadInt()
		x := msg.ReadFixed()
		y := msg.ReadFixed()
		if err := msg.Err(); err != nil {
			return err
		}

		if t.Motion != nil {
			t.Motion(time, id, x, y)
		}
		return nil

	case protocol.TouchEventFrame:
		if t.Frame != nil {
			t.Frame()
		}
		return nil

	case protocol.TouchEventCancel:
		if t.Cancel != nil {
			t.Cancel()
		}
		return nil

	default:
		return unknownEvent(t, msg.Op())
	}
}
