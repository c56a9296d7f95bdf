package wl

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"deedles.dev/wlcomp/internal/cq"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/internal/objstore"
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Display is a connection to a server and the wl_display object that
// every connection starts with.
type Display struct {
	// Error, if not nil, is called when the server reports a fatal
	// error. The server disconnects the client right after.
	Error func(err *wire.ProtocolError)

	proxy
	done     chan struct{}
	close    sync.Once
	conn     *wire.Conn
	store    *objstore.Store
	queue    *cq.Queue[func() error]
	registry *Registry
}

// Dial connects to the server named by $WAYLAND_DISPLAY.
func Dial() (*Display, error) {
	conn, err := wire.Dial()
	if err != nil {
		return nil, err
	}
	return Connect(conn), nil
}

// Connect starts a client over an existing connection.
func Connect(conn *wire.Conn) *Display {
	display := Display{
		done:  make(chan struct{}),
		conn:  conn,
		store: objstore.New(1),
		queue: cq.New[func() error](),
	}
	display.proxy.display = &display
	display.add(&display)

	go display.listen()

	return &display
}

func (display *Display) listen() {
	for {
		msg, err := wire.ReadMessage(display.conn)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			display.queue.Push(func() error {
				display.closeDone()
				return fmt.Errorf("connection lost: %w", err)
			})
			return
		}

		ok := display.queue.Push(func() error { return display.dispatch(msg) })
		if !ok {
			msg.Close()
			return
		}
	}
}

func (display *Display) closeDone() {
	display.close.Do(func() { close(display.done) })
}

// Close disconnects from the server.
func (display *Display) Close() error {
	display.closeDone()
	display.queue.Stop()
	return display.conn.Close()
}

// Done is closed once the connection has been lost or closed.
func (display *Display) Done() <-chan struct{} {
	return display.done
}

func (display *Display) add(obj wire.Object) {
	obj.SetID(0)
	err := display.store.Add(obj)
	if err != nil {
		// Only possible if the ID space is exhausted.
		panic(err)
	}
}

// Get returns the object with the given ID, or nil.
func (display *Display) Get(id uint32) wire.Object {
	return display.store.Get(id)
}

func (display *Display) dispatch(msg *wire.MessageBuffer) error {
	defer msg.Close()

	obj := display.store.Get(msg.Sender())
	if obj == nil {
		// Events can still arrive for objects that the client has
		// destroyed but that the server has not yet confirmed.
		debug.Debug("event for unknown object", "id", msg.Sender(), "op", msg.Op())
		return nil
	}

	err := obj.Dispatch(msg)
	if debug.Tracing() {
		debug.Printf("%v", msg.Debug(obj, true))
	}
	return err
}

// Enqueue queues a request to be sent the next time that the display
// is flushed.
func (display *Display) Enqueue(msg *wire.MessageBuilder) {
	display.queue.Push(func() error {
		debug.Printf("%v", msg)
		return msg.Build(display.conn)
	})
}

// Flush sends queued requests and handles the events that have arrived
// so far. It does not wait.
func (display *Display) Flush() error {
	select {
	case queue := <-display.queue.Get():
		return errors.Join(cq.Flush(queue)...)
	default:
		return nil
	}
}

// RoundTrip sends queued requests and handles events until the server
// has processed every request sent so far.
func (display *Display) RoundTrip() error {
	done := make(chan struct{})
	display.Sync(func(uint32) { close(done) })

	var errs []error
	for {
		select {
		case <-done:
			return errors.Join(errs...)

		case <-display.done:
			errs = append(errs, net.ErrClosed)
			return errors.Join(errs...)

		case queue := <-display.queue.Get():
			errs = append(errs, cq.Flush(queue)...)
		}
	}
}

func (display *Display) Interface() string {
	return protocol.DisplayInterface
}

func (display *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.DisplayEventError:
		perr := wire.ProtocolError{
			ObjectID: msg.ReadObject(),
			Code:     msg.ReadUint(),
			Message:  msg.ReadString(),
		}
		if err := msg.Err(); err != nil {
			return err
		}

		debug.Error("protocol error", "object", perr.ObjectID, "code", perr.Code, "message", perr.Message)
		if display.Error != nil {
			display.Error(&perr)
		}
		return &perr

	case protocol.DisplayEventDeleteId:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		display.store.Delete(id)
		return nil

	default:
		return unknownEvent(display, msg.Op())
	}
}

// Sync asks the server to call done once it has handled every request
// sent before it.
func (display *Display) Sync(done func(serial uint32)) {
	cb := add(display, &Callback{Done: done})
	cb.display = display

	msg := wire.NewMessage(display, protocol.DisplayRequestSync)
	msg.WriteUint(cb.id)
	display.enqueue(msg)
}

// GetRegistry returns the display's registry, creating it on first
// use.
func (display *Display) GetRegistry() *Registry {
	if display.registry != nil {
		return display.registry
	}

	registry := Registry{globals: make(map[uint32]Global)}
	registry.display = display
	display.add(&registry)

	msg := wire.NewMessage(display, protocol.DisplayRequestGetRegistry)
	msg.WriteUint(registry.id)
	display.enqueue(msg)

	display.registry = &registry
	return &registry
}

// Callback is a wl_callback.
type Callback struct {
	Done func(data uint32)

	proxy
}

func (cb *Callback) Interface() string {
	return protocol.CallbackInterface
}

func (cb *Callback) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.CallbackEventDone:
		data := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if cb.Done != nil {
			cb.Done(data)
		}
		return nil

	default:
		return unknownEvent(cb, msg.Op())
	}
}
