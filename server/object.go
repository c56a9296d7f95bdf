package wl

import (
	"deedles.dev/wlcomp/internal/objstore"
	"deedles.dev/wlcomp/wire"
)

// object is embedded in every protocol object type.
type object struct {
	id       uint32
	version  uint32
	client   *Client
	onDelete []func()
}

func newObject(client *Client, version uint32) object {
	return object{client: client, version: version}
}

func (obj *object) ID() uint32 {
	return obj.id
}

func (obj *object) SetID(id uint32) {
	obj.id = id
}

// Client returns the client that owns the object.
func (obj *object) Client() *Client {
	return obj.client
}

// Version returns the interface version that the client bound.
func (obj *object) Version() uint32 {
	return obj.version
}

// OnDelete registers f to be called when the object is deleted,
// either by a request from the client or because the client
// disconnected. Handlers run in reverse order of registration.
func (obj *object) OnDelete(f func()) {
	obj.onDelete = append(obj.onDelete, f)
}

func (obj *object) Delete() {
	handlers := obj.onDelete
	obj.onDelete = nil
	for i := len(handlers) - 1; i >= 0; i-- {
		handlers[i]()
	}
}

// Destroy deletes the object from its client's table.
func (obj *object) Destroy() {
	obj.client.Delete(obj.id)
}

func (obj *object) enqueue(msg *wire.MessageBuilder) {
	obj.client.Enqueue(msg)
}

func unknownOp(obj wire.Object, op uint16) error {
	return wire.UnknownOpError{
		ID:        obj.ID(),
		Interface: obj.Interface(),
		Type:      "request",
		Op:        op,
	}
}

func lookup[T wire.Object](client *Client, id uint32) (T, error) {
	return objstore.LookupAs[T](client.store, id)
}

// newChild creates an object in response to a request that carries a
// new_id argument.
func newChild[T wire.Object](client *Client, id uint32, obj T) (T, error) {
	err := client.Add(obj, id)
	return obj, err
}
