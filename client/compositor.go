package wl

import (
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Compositor is the wl_compositor global.
type Compositor struct {
	proxy
}

// BindCompositor binds the compositor global g.
func BindCompositor(r *Registry, g Global) *Compositor {
	var c Compositor
	c.display = r.display
	r.Bind(g, protocol.CompositorVersion, &c)
	return &c
}

func (c *Compositor) Interface() string {
	return protocol.CompositorInterface
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	return unknownEvent(c, msg.Op())
}

// CreateSurface creates a new, empty surface.
func (c *Compositor) CreateSurface() *Surface {
	s := Surface{}
	s.display = c.display
	c.display.add(&s)

	msg := wire.NewMessage(c, protocol.CompositorRequestCreateSurface)
	msg.WriteUint(s.id)
	c.enqueue(msg)

	return &s
}
