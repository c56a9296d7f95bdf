package wl

import (
	"os"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

type SeatListener interface {
	GetPointer(p *Pointer)
	GetKeyboard(k *Keyboard)
	GetTouch(t *Touch)
}

type Seat struct {
	object
	Listener SeatListener
}

func BindSeat(client *Client, version, id uint32) (*Seat, error) {
	s := Seat{object: newObject(client, version)}
	return &s, client.Add(&s, id)
}

func (s *Seat) Interface() string {
	return protocol.SeatInterface
}

func (s *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.SeatRequestGetPointer:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		p, err := newChild(s.client, id, &Pointer{object: newObject(s.client, s.version)})
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetPointer(p)
		}
		return nil

	case protocol.SeatRequestGetKeyboard:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		k, err := newChild(s.client, id, &Keyboard{object: newObject(s.client, s.version)})
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetKeyboard(k)
		}
		return nil

	case protocol.SeatRequestGetTouch:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		t, err := newChild(s.client, id, &Touch{object: newObject(s.client, s.version)})
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetTouch(t)
		}
		return nil

	default:
		return unknownOp(s, msg.Op())
	}
}

func (s *Seat) Capabilities(caps uint32) {
	msg := wire.NewEvent(s, protocol.SeatEventCapabilities)
	msg.WriteUint(caps)
	s.enqueue(msg)
}

type PointerListener interface {
	SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32)
}

type Pointer struct {
	object
	Listener PointerListener
}

func (p *Pointer) Interface() string {
	return protocol.PointerInterface
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.PointerRequestSetCursor:
		serial := msg.ReadUint()
		sid := msg.ReadObject()
		hx := msg.ReadInt()
		hy := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		surface, err := lookup[*Surface](p.client, sid)
		if err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetCursor(serial, surface, hx, hy)
		}
		return nil

	default:
		return unknownOp(p, msg.Op())
	}
}

func (p *Pointer) Enter(serial uint32, surface *Surface, x, y wire.Fixed) {
	msg := wire.NewEvent(p, protocol.PointerEventEnter)
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	p.enqueue(msg)
}

func (p *Pointer) Leave(serial uint32, surface *Surface) {
	msg := wire.NewEvent(p, protocol.PointerEventLeave)
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	p.enqueue(msg)
}

func (p *Pointer) Motion(time uint32, x, y wire.Fixed) {
	msg := wire.NewEvent(p, protocol.PointerEventMotion)
	msg.WriteUint(time)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	p.enqueue(msg)
}

func (p *Pointer) Button(serial, time, button, state uint32) {
	msg := wire.NewEvent(p, protocol.PointerEventButton)
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteUint(button)
	msg.WriteUint(state)
	p.enqueue(msg)
}

func (p *Pointer) Axis(time, axis uint32, value wire.Fixed) {
	msg := wire.NewEvent(p, protocol.PointerEventAxis)
	msg.WriteUint(time)
	msg.WriteUint(axis)
	msg.WriteFixed(value)
	p.enqueue(msg)
}

type Keyboard struct {
	object
}

func (k *Keyboard) Interface() string {
	return protocol.KeyboardInterface
}

func (k *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	return unknownOp(k, msg.Op())
}

func (k *Keyboard) Keymap(format uint32, file *os.File, size uint32) {
	msg := wire.NewEvent(k, protocol.KeyboardEventKeymap)
	msg.WriteUint(format)
	msg.WriteFile(file)
	msg.WriteUint(size)
	k.enqueue(msg)
}

func (k *Keyboard) Enter(serial uint32, surface *Surface, keys []uint32) {
	data := make([]byte, 0, len(keys)*4)
	for _, key := range keys {
		data = wire.AppendUint(data, key)
	}

	msg := wire.NewEvent(k, protocol.KeyboardEventEnter)
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	msg.WriteArray(data)
	k.enqueue(msg)
}

func (k *Keyboard) Leave(serial uint32, surface *Surface) {
	msg := wire.NewEvent(k, protocol.KeyboardEventLeave)
	msg.WriteUint(serial)
	msg.WriteObject(surface)
	k.enqueue(msg)
}

func (k *Keyboard) Key(serial, time, key, state uint32) {
	msg := wire.NewEvent(k, protocol.KeyboardEventKey)
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteUint(key)
	msg.WriteUint(state)
	k.enqueue(msg)
}

func (k *Keyboard) Modifiers(serial, depressed, latched, locked, group uint32) {
	msg := wire.NewEvent(k, protocol.KeyboardEventModifiers)
	msg.WriteUint(serial)
	msg.WriteUint(depressed)
	msg.WriteUint(latched)
	msg.WriteUint(locked)
	msg.WriteUint(group)
	k.enqueue(msg)
}

type Touch struct {
	object
}

func (t *Touch) Interface() string {
	return protocol.TouchInterface
}

func (t *Touch) Dispatch(msg *wire.MessageBuffer) error {
	return unknownOp(t, msg.Op())
}

func (t *Touch) Down(serial, time uint32, surface *Surface, id int32, x, y wire.Fixed) {
	msg := wire.NewEvent(t, protocol.TouchEventDown)
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteObject(surface)
	msg.WriteInt(id)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	t.enqueue(msg)
}

func (t *Touch) Up(serial, time uint32, id int32) {
	msg := wire.NewEvent(t, protocol.TouchEventUp)
	msg.WriteUint(serial)
	msg.WriteUint(time)
	msg.WriteInt(id)
	t.enqueue(msg)
}

func (t *Touch) Motion(time uint32, id int32, x, y wire.Fixed) {
	msg := wire.NewEvent(t, protocol.TouchEventMotion)
	msg.WriteUint(time)
	msg.WriteInt(id)
	msg.WriteFixed(x)
	msg.WriteFixed(y)
	t.enqueue(msg)
}

func (t *Touch) Frame() {
	t.enqueue(wire.NewEvent(t, protocol.TouchEventFrame))
}

func (t *Touch) Cancel() {
	t.enqueue(wire.NewEvent(t, protocol.TouchEventCancel))
}
