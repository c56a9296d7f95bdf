package wl

import (
	"image"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Surface is a wl_surface.
type Surface struct {
	Enter func(output *Output)
	Leave func(output *Output)

	proxy
	destroyed bool
}

func (s *Surface) Interface() string {
	return protocol.SurfaceInterface
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.SurfaceEventEnter, protocol.SurfaceEventLeave:
		oid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		output, _ := s.display.Get(oid).(*Output)
		f := s.Enter
		if msg.Op() == protocol.SurfaceEventLeave {
			f = s.Leave
		}
		if f != nil {
			f(output)
		}
		return nil

	default:
		return unknownEvent(s, msg.Op())
	}
}

// Destroy destroys the surface. The surface must not be used
// afterwards.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.enqueue(wire.NewMessage(s, protocol.SurfaceRequestDestroy))
}

// Attach sets buf as the pending content of the surface. A nil buf
// removes the content.
func (s *Surface) Attach(buf *Buffer, x, y int32) {
	msg := wire.NewMessage(s, protocol.SurfaceRequestAttach)
	msg.WriteObject(buf)
	msg.WriteInt(x)
	msg.WriteInt(y)
	s.enqueue(msg)
}

func (s *Surface) Damage(r image.Rectangle) {
	msg := wire.NewMessage(s, protocol.SurfaceRequestDamage)
	msg.WriteInt(int32(r.Min.X))
	msg.WriteInt(int32(r.Min.Y))
	msg.WriteInt(int32(r.Dx()))
	msg.WriteInt(int32(r.Dy()))
	s.enqueue(msg)
}

// Frame asks for done to be called once the content of the next
// commit has been displayed.
func (s *Surface) Frame(done func(time uint32)) {
	cb := Callback{Done: done}
	cb.display = s.display
	s.display.add(&cb)

	msg := wire.NewMessage(s, protocol.SurfaceRequestFrame)
	msg.WriteUint(cb.id)
	s.enqueue(msg)
}

func (s *Surface) Commit() {
	s.enqueue(wire.NewMessage(s, protocol.SurfaceRequestCommit))
}

// SetBufferTransform tells the compositor how the client has
// transformed its buffers.
func (s *Surface) SetBufferTransform(transform int32) {
	msg := wire.NewMessage(s, protocol.SurfaceRequestSetBufferTransform)
	msg.WriteInt(transform)
	s.enqueue(msg)
}
