// Package wl implements the server half of the Wayland protocol. It
// tracks clients and the objects that they create and hands requests
// to listeners, which are usually provided by the compositor package.
//
// All requests and all methods of the types in this package run on a
// single dispatch goroutine, the one that calls Dispatch, Run or
// Flush. Work from other goroutines must be handed over with Post.
package wl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"deedles.dev/wlcomp/internal/cq"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/slices"
)

type Server struct {
	done    chan struct{}
	close   sync.Once
	lis     *wire.Listener
	clients []*Client
	queue   *cq.Queue[func() error]

	globals    []*Global
	nextGlobal uint32
	serial     uint32

	// ClientCreated, if not nil, is called for every new client.
	ClientCreated func(*Client)
}

// ListenAndServe creates a socket named name, as per wire.Listen, and
// returns a server that accepts clients on it.
func ListenAndServe(name string) (*Server, error) {
	lis, err := wire.Listen(name)
	if err != nil {
		return nil, err
	}
	server := NewServer()
	server.Serve(lis)
	return server, nil
}

// NewServer returns a server with no clients and no listening socket.
// Clients can be added with Serve or AddClient.
func NewServer() *Server {
	return &Server{
		done:       make(chan struct{}),
		queue:      cq.New[func() error](),
		nextGlobal: 1,
	}
}

// Serve accepts clients from lis in the background. The listener is
// closed when the server is.
func (server *Server) Serve(lis *wire.Listener) {
	server.lis = lis
	go server.listen(lis)
}

// Listener returns the socket the server is accepting clients on, if
// any.
func (server *Server) Listener() *wire.Listener {
	return server.lis
}

const maxAcceptDelay = time.Second

type accepter interface {
	Accept() (*wire.Conn, error)
}

// listen accepts clients until lis is closed. Failed accepts, such as
// from running out of file descriptors, are retried after a delay
// that doubles up to maxAcceptDelay.
func (server *Server) listen(lis accepter) {
	var delay time.Duration
	for {
		c, err := lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			if !server.Post(func() error { return fmt.Errorf("accept: %w", err) }) {
				return
			}

			delay = min(max(2*delay, 5*time.Millisecond), maxAcceptDelay)
			select {
			case <-server.done:
				return
			case <-time.After(delay):
			}
			continue
		}
		delay = 0

		ok := server.Post(func() error { server.AddClient(c); return nil })
		if !ok {
			c.Close()
			return
		}
	}
}

// Close disconnects every client and stops the server.
func (server *Server) Close() error {
	var err error
	server.close.Do(func() {
		for _, c := range slices.Clone(server.clients) {
			c.Destroy()
		}
		close(server.done)
		server.queue.Stop()
		if server.lis != nil {
			err = server.lis.Close()
		}
	})
	return err
}

// Done is closed when the server is closed.
func (server *Server) Done() <-chan struct{} {
	return server.done
}

// Post queues f to be run on the dispatch goroutine. It returns false
// if the server has been closed.
func (server *Server) Post(f func() error) bool {
	return server.queue.Push(f)
}

// AddClient starts serving a client over conn.
func (server *Server) AddClient(conn *wire.Conn) *Client {
	client := newClient(server, conn)
	server.clients = append(server.clients, client)
	debug.Debug("client connected", "client", client)

	if server.ClientCreated != nil {
		server.ClientCreated(client)
	}

	go client.listen()
	return client
}

func (server *Server) removeClient(client *Client) {
	i := slices.Index(server.clients, client)
	if i >= 0 {
		server.clients = slices.Delete(server.clients, i, i+1)
	}
}

// Clients returns the connected clients in the order in which they
// connected.
func (server *Server) Clients() []*Client {
	return slices.Clone(server.clients)
}

// NextSerial returns a new serial number for an event.
func (server *Server) NextSerial() uint32 {
	server.serial++
	return server.serial
}

// Dispatch waits until there is queued work, runs it and then sends
// every event that has been queued for the clients.
func (server *Server) Dispatch(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-server.done:
		return net.ErrClosed
	case queue := <-server.queue.Get():
		errs := cq.Flush(queue)
		server.flushClients()
		return errors.Join(errs...)
	}
}

// Flush is like Dispatch but does not wait. If there is no queued
// work, it only sends pending events.
func (server *Server) Flush() error {
	var errs []error
	select {
	case queue := <-server.queue.Get():
		errs = cq.Flush(queue)
	default:
	}
	server.flushClients()
	return errors.Join(errs...)
}

// Run calls Dispatch until ctx is canceled or the server is closed.
// Errors that do not concern the server as a whole are logged.
func (server *Server) Run(ctx context.Context) error {
	for {
		err := server.Dispatch(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, net.ErrClosed):
			return nil
		case err != nil:
			debug.Error("dispatch", "err", err)
		}
	}
}

func (server *Server) flushClients() {
	for _, c := range slices.Clone(server.clients) {
		err := c.flush()
		if err != nil {
			debug.Warn("write to client failed", "client", c, "err", err)
			c.Destroy()
		}
	}
}

// Global is an object that is advertised to clients through
// wl_registry.
type Global struct {
	server  *Server
	name    uint32
	iface   string
	version uint32
	bind    func(client *Client, version, id uint32) error
}

// AddGlobal advertises a global to all current and future clients.
// When a client binds to it, bind is called with the version that the
// client asked for and the ID of the new object.
func (server *Server) AddGlobal(iface string, version uint32, bind func(client *Client, version, id uint32) error) *Global {
	g := Global{
		server:  server,
		name:    server.nextGlobal,
		iface:   iface,
		version: version,
		bind:    bind,
	}
	server.nextGlobal++
	server.globals = append(server.globals, &g)

	for _, c := range server.clients {
		for _, r := range c.registries {
			r.Global(&g)
		}
	}

	return &g
}

// Globals returns the globals currently advertised.
func (server *Server) Globals() []*Global {
	return slices.Clone(server.globals)
}

func (server *Server) global(name uint32) *Global {
	for _, g := range server.globals {
		if g.name == name {
			return g
		}
	}
	return nil
}

func (g *Global) Name() uint32 {
	return g.name
}

func (g *Global) Interface() string {
	return g.iface
}

func (g *Global) Version() uint32 {
	return g.version
}

// Remove stops advertising the global. Objects already bound to it are
// unaffected.
func (g *Global) Remove() {
	i := slices.Index(g.server.globals, g)
	if i < 0 {
		return
	}
	g.server.globals = slices.Delete(g.server.globals, i, i+1)

	for _, c := range g.server.clients {
		for _, r := range c.registries {
			r.GlobalRemove(g)
		}
	}
}
