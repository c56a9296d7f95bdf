package wl

import (
	"image"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

type CompositorListener interface {
	CreateSurface(s *Surface)
}

// Compositor is a client's binding of the wl_compositor global.
type Compositor struct {
	object
	Listener CompositorListener
}

// BindCompositor creates a wl_compositor object for a client that has
// bound the global.
func BindCompositor(client *Client, version, id uint32) (*Compositor, error) {
	c := Compositor{object: newObject(client, version)}
	return &c, client.Add(&c, id)
}

func (c *Compositor) Interface() string {
	return protocol.CompositorInterface
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.CompositorRequestCreateSurface:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		s, err := newChild(c.client, id, &Surface{object: newObject(c.client, c.version)})
		if err != nil {
			return err
		}
		if c.Listener != nil {
			c.Listener.CreateSurface(s)
		}
		return nil

	case protocol.CompositorRequestCreateRegion:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		_, err := newChild(c.client, id, &Region{object: newObject(c.client, 1)})
		return err

	default:
		return unknownOp(c, msg.Op())
	}
}

type SurfaceListener interface {
	Attach(buffer *Buffer, x, y int32)
	Damage(r image.Rectangle)
	Frame(cb *Callback)
	SetOpaqueRegion(area *Area)
	SetInputRegion(area *Area)
	Commit()
	SetBufferTransform(transform int32)
}

type Surface struct {
	object
	Listener SurfaceListener
}

func (s *Surface) Interface() string {
	return protocol.SurfaceInterface
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.SurfaceRequestDestroy:
		s.Destroy()
		return nil

	case protocol.SurfaceRequestAttach:
		bid := msg.ReadObject()
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		buf, err := lookup[*Buffer](s.client, bid)
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Attach(buf, x, y)
		}
		return nil

	case protocol.SurfaceRequestDamage:
		x := msg.ReadInt()
		y := msg.ReadInt()
		w := msg.ReadInt()
		h := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if s.Listener != nil {
			s.Listener.Damage(image.Rect(int(x), int(y), int(x+w), int(y+h)))
		}
		return nil

	case protocol.SurfaceRequestFrame:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		cb, err := newChild(s.client, id, &Callback{object: newObject(s.client, 1)})
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Frame(cb)
		}
		return nil

	case protocol.SurfaceRequestSetOpaqueRegion, protocol.SurfaceRequestSetInputRegion:
		rid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		r, err := lookup[*Region](s.client, rid)
		if err != nil {
			return err
		}
		if s.Listener == nil {
			return nil
		}

		var area *Area
		if r != nil {
			area = r.area.Clone()
		}
		if msg.Op() == protocol.SurfaceRequestSetOpaqueRegion {
			s.Listener.SetOpaqueRegion(area)
			return nil
		}
		s.Listener.SetInputRegion(area)
		return nil

	case protocol.SurfaceRequestCommit:
		if s.Listener != nil {
			s.Listener.Commit()
		}
		return nil

	case protocol.SurfaceRequestSetBufferTransform:
		transform := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if s.version < 2 {
			return wire.Errorf(s.id, wire.ErrorInvalidMethod, "set_buffer_transform requires version 2, have %v", s.version)
		}
		if s.Listener != nil {
			s.Listener.SetBufferTransform(transform)
		}
		return nil

	default:
		return unknownOp(s, msg.Op())
	}
}

func (s *Surface) Enter(output *Output) {
	msg := wire.NewEvent(s, protocol.SurfaceEventEnter)
	msg.WriteObject(output)
	s.enqueue(msg)
}

func (s *Surface) Leave(output *Output) {
	msg := wire.NewEvent(s, protocol.SurfaceEventLeave)
	msg.WriteObject(output)
	s.enqueue(msg)
}

// Region is a wl_region. Its contents are copied into an Area when it
// is used, so destroying it has no effect on surfaces.
type Region struct {
	object
	area Area
}

func (r *Region) Interface() string {
	return protocol.RegionInterface
}

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.RegionRequestDestroy:
		r.Destroy()
		return nil

	case protocol.RegionRequestAdd, protocol.RegionRequestSubtract:
		x := msg.ReadInt()
		y := msg.ReadInt()
		w := msg.ReadInt()
		h := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		rect := image.Rect(int(x), int(y), int(x+w), int(y+h))
		if msg.Op() == protocol.RegionRequestAdd {
			r.area.Add(rect)
			return nil
		}
		r.area.Subtract(rect)
		return nil

	default:
		return unknownOp(r, msg.Op())
	}
}

// Area returns a copy of the region's current contents.
func (r *Region) Area() *Area {
	return r.area.Clone()
}
