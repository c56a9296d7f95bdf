package wl

import (
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Display is the wl_display singleton that every client starts with.
type Display struct {
	object
}

func (d *Display) Interface() string {
	return protocol.DisplayInterface
}

func (d *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.DisplayRequestSync:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		cb, err := newChild(d.client, id, &Callback{object: newObject(d.client, 1)})
		if err != nil {
			return err
		}
		cb.Done(d.client.server.NextSerial())
		return nil

	case protocol.DisplayRequestGetRegistry:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		r, err := newChild(d.client, id, &Registry{object: newObject(d.client, 1)})
		if err != nil {
			return err
		}
		d.client.registries = append(d.client.registries, r)
		r.OnDelete(func() {
			d.client.registries = deleteItem(d.client.registries, r)
		})

		for _, g := range d.client.server.globals {
			r.Global(g)
		}
		return nil

	default:
		return unknownOp(d, msg.Op())
	}
}

// Error sends a fatal error event. Use Client.PostError instead, which
// also disconnects the client.
func (d *Display) Error(objectID, code uint32, message string) {
	msg := wire.NewEvent(d, protocol.DisplayEventError)
	msg.WriteUint(objectID)
	msg.WriteUint(code)
	msg.WriteString(message)
	d.enqueue(msg)
}

// DeleteID tells the client that it may reuse id.
func (d *Display) DeleteID(id uint32) {
	msg := wire.NewEvent(d, protocol.DisplayEventDeleteId)
	msg.WriteUint(id)
	d.enqueue(msg)
}

type Registry struct {
	object
}

func (r *Registry) Interface() string {
	return protocol.RegistryInterface
}

func (r *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.RegistryRequestBind:
		name := msg.ReadUint()
		nid := msg.ReadNewID()
		if err := msg.Err(); err != nil {
			return err
		}

		g := r.client.server.global(name)
		if g == nil {
			return wire.Errorf(r.id, wire.ErrorInvalidObject, "invalid global %v (%v)", name, nid.Interface)
		}
		if nid.Interface != g.iface {
			return wire.Errorf(r.id, wire.ErrorInvalidObject, "invalid interface for global %v: have %v, wanted %v", name, nid.Interface, g.iface)
		}
		if (nid.Version == 0) || (nid.Version > g.version) {
			return wire.Errorf(r.id, wire.ErrorInvalidObject, "invalid version for global %v (%v): have %v, wanted 1 to %v", name, g.iface, nid.Version, g.version)
		}

		return g.bind(r.client, nid.Version, nid.ID)

	default:
		return unknownOp(r, msg.Op())
	}
}

func (r *Registry) Global(g *Global) {
	msg := wire.NewEvent(r, protocol.RegistryEventGlobal)
	msg.WriteUint(g.name)
	msg.WriteString(g.iface)
	msg.WriteUint(g.version)
	r.enqueue(msg)
}

func (r *Registry) GlobalRemove(g *Global) {
	msg := wire.NewEvent(r, protocol.RegistryEventGlobalRemove)
	msg.WriteUint(g.name)
	r.enqueue(msg)
}

// Callback is a wl_callback. It is deleted as soon as it is done.
type Callback struct {
	object
}

func (cb *Callback) Interface() string {
	return protocol.CallbackInterface
}

func (cb *Callback) Dispatch(msg *wire.MessageBuffer) error {
	return unknownOp(cb, msg.Op())
}

// Done sends the done event and deletes the callback.
func (cb *Callback) Done(data uint32) {
	msg := wire.NewEvent(cb, protocol.CallbackEventDone)
	msg.WriteUint(data)
	cb.enqueue(msg)
	cb.Destroy()
}

func deleteItem[T comparable](s []T, v T) []T {
	for i, item := range s {
		if item == v {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}
