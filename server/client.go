package wl

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/internal/objstore"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/sys/unix"
)

// Client is a single connection to the server.
type Client struct {
	server     *Server
	done       chan struct{}
	close      sync.Once
	conn       *wire.Conn
	store      *objstore.Store
	out        []*wire.MessageBuilder
	display    *Display
	registries []*Registry
	destroyed  bool
	onDestroy  []func()
}

func newClient(server *Server, conn *wire.Conn) *Client {
	client := Client{
		server: server,
		done:   make(chan struct{}),
		conn:   conn,
		store:  objstore.New(objstore.ServerIDStart),
	}

	client.display = &Display{object: object{id: 1, version: 1, client: &client}}
	client.store.Add(client.display)

	return &client
}

func (client *Client) listen() {
	for {
		msg, err := wire.ReadMessage(client.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				debug.Warn("read from client failed", "client", client, "err", err)
			}

			select {
			case <-client.done:
			default:
				client.server.Post(func() error { client.Destroy(); return nil })
			}
			return
		}

		ok := client.server.Post(func() error { return client.dispatch(msg) })
		if !ok {
			msg.Close()
			return
		}
	}
}

func (client *Client) dispatch(msg *wire.MessageBuffer) error {
	defer msg.Close()

	if client.destroyed {
		return nil
	}

	err := client.store.Dispatch(msg)
	if err == nil {
		return nil
	}

	if perr, ok := wire.AsProtocolError(err); ok {
		client.PostError(perr)
		return nil
	}
	return fmt.Errorf("%v: %w", client, err)
}

func (client *Client) String() string {
	return fmt.Sprintf("client(%p)", client)
}

// Server returns the server that the client is connected to.
func (client *Client) Server() *Server {
	return client.server
}

// Display returns the client's wl_display object.
func (client *Client) Display() *Display {
	return client.display
}

// Credentials returns the process credentials of the client.
func (client *Client) Credentials() (*unix.Ucred, error) {
	return client.conn.Credentials()
}

// Add adds obj to the client's object table under the client-chosen
// id. It returns a protocol error if id is not valid for a new object.
func (client *Client) Add(obj wire.Object, id uint32) error {
	if (id == 0) || (id >= objstore.ServerIDStart) {
		return wire.Errorf(id, wire.ErrorInvalidObject, "invalid ID %v for new %v", id, obj.Interface())
	}
	obj.SetID(id)
	return client.store.Add(obj)
}

// AddServerObject adds an object created by the server, such as a
// wl_data_offer, allocating an ID for it.
func (client *Client) AddServerObject(obj wire.Object) {
	obj.SetID(0)
	client.store.Add(obj)
}

// Get returns the object with the given ID, or nil.
func (client *Client) Get(id uint32) wire.Object {
	return client.store.Get(id)
}

// Delete removes an object from the client's table. The client is
// told that the ID may be reused if it was one that the client
// allocated. Deleting an ID that is not in use does nothing.
func (client *Client) Delete(id uint32) {
	if client.store.Get(id) == nil {
		return
	}

	client.store.Delete(id)
	if !client.destroyed && (id < objstore.ServerIDStart) {
		client.display.DeleteID(id)
	}
}

// Enqueue queues an event to be sent the next time the server
// flushes. Events for destroyed clients are dropped along with any
// file descriptors they carry.
func (client *Client) Enqueue(msg *wire.MessageBuilder) {
	if client.destroyed {
		msg.Discard()
		return
	}
	client.out = append(client.out, msg)
}

func (client *Client) flush() error {
	out := client.out
	client.out = nil

	var errs []error
	for _, msg := range out {
		debug.Printf("%v", msg)
		err := msg.Build(client.conn)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PostError sends a fatal protocol error to the client and then
// disconnects it. Other clients are not affected.
func (client *Client) PostError(err *wire.ProtocolError) {
	if client.destroyed {
		return
	}

	debug.Warn("protocol error", "client", client, "object", err.ObjectID, "code", err.Code, "message", err.Message)
	client.display.Error(err.ObjectID, err.Code, err.Message)
	client.Destroy()
}

// OnDestroy registers f to be called after the client's objects have
// been destroyed.
func (client *Client) OnDestroy(f func()) {
	client.onDestroy = append(client.onDestroy, f)
}

// Destroyed reports whether the client has been disconnected.
func (client *Client) Destroyed() bool {
	return client.destroyed
}

// Destroy disconnects the client. Every object that belongs to it is
// deleted, newest first. Pending events are sent before the
// connection is closed.
func (client *Client) Destroy() {
	if client.destroyed {
		return
	}

	err := client.flush()
	if err != nil {
		debug.Debug("flush before disconnect", "client", client, "err", err)
	}

	client.destroyed = true
	client.store.Clear()
	client.registries = nil
	for _, f := range client.onDestroy {
		f()
	}

	client.server.removeClient(client)
	client.close.Do(func() { close(client.done) })
	client.conn.Close()
	debug.Debug("client disconnected", "client", client)
}
