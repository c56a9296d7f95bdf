// Package wl implements the client half of the Wayland protocol. A
// Display owns the connection. Proxies for the objects that the client
// creates report events through func fields, which are called from
// Flush and RoundTrip on the caller's goroutine.
package wl

import "deedles.dev/wlcomp/wire"

// proxy holds the state that every client-side object shares.
type proxy struct {
	id      uint32
	display *Display
	deleted bool
	onDel   []func()
}

func (p *proxy) ID() uint32 {
	return p.id
}

func (p *proxy) SetID(id uint32) {
	p.id = id
}

// Display returns the connection that the object belongs to.
func (p *proxy) Display() *Display {
	return p.display
}

// Delete is called when the server has confirmed that the object is
// gone.
func (p *proxy) Delete() {
	if p.deleted {
		return
	}
	p.deleted = true
	for _, f := range p.onDel {
		f()
	}
}

// OnDelete registers f to be called once the object is deleted.
func (p *proxy) OnDelete(f func()) {
	p.onDel = append(p.onDel, f)
}

func (p *proxy) enqueue(msg *wire.MessageBuilder) {
	p.display.Enqueue(msg)
}

// add adds obj to the display's object table, allocating an ID.
func add[T wire.Object](display *Display, obj T) T {
	display.add(obj)
	return obj
}

func unknownEvent(obj wire.Object, op uint16) error {
	return wire.UnknownOpError{ID: obj.ID(), Interface: obj.Interface(), Type: "event", Op: op}
}

// surfaceFor returns the surface that id refers to, or nil.
func surfaceFor(display *Display, id uint32) *Surface {
	s, _ := display.Get(id).(*Surface)
	return s
}
