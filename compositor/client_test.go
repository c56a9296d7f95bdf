package compositor

import (
	"context"
	"errors"
	"testing"
	"time"

	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/shm"
	"deedles.dev/wlcomp/wire"
	"github.com/stretchr/testify/require"
)

// proxy is the client's side of a protocol object. Tests decode events
// by hand, so it does nothing with them.
type proxy struct {
	id    uint32
	iface string
}

func (p *proxy) ID() uint32                         { return p.id }
func (p *proxy) SetID(id uint32)                    { p.id = id }
func (p *proxy) Interface() string                  { return p.iface }
func (p *proxy) Dispatch(*wire.MessageBuffer) error { return nil }
func (p *proxy) Delete()                            {}

type recordingEmbedder struct {
	created   []*Surface
	destroyed []*Surface
}

func (e *recordingEmbedder) SurfaceCreated(s *Surface) {
	e.created = append(e.created, s)
}

func (e *recordingEmbedder) SurfaceAboutToBeDestroyed(s *Surface) {
	e.destroyed = append(e.destroyed, s)
}

func newTestCompositor(t *testing.T, embedder Embedder) *Compositor {
	t.Helper()

	c := New(wl.NewServer(), embedder)
	t.Cleanup(func() { c.Close() })
	return c
}

// dispatch runs whatever the server has queued, waiting briefly for
// something to arrive.
func dispatch(t *testing.T, c *Compositor) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.server.Dispatch(ctx)
	if (err != nil) && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("dispatch: %v", err)
	}
}

type testClient struct {
	t        *testing.T
	c        *Compositor
	conn     *wire.Conn
	client   *wl.Client
	events   chan *wire.MessageBuffer
	nextID   uint32
	display  *proxy
	registry *proxy
	globals  map[string]uint32
}

func connect(t *testing.T, c *Compositor) *testClient {
	t.Helper()

	sc, cc, err := wire.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { cc.Close() })

	tc := testClient{
		t:       t,
		c:       c,
		conn:    cc,
		events:  make(chan *wire.MessageBuffer, 1024),
		nextID:  2,
		display: &proxy{id: 1, iface: protocol.DisplayInterface},
		globals: make(map[string]uint32),
	}
	tc.client = c.server.AddClient(sc)
	go tc.read()

	tc.registry = tc.newProxy(protocol.RegistryInterface)
	tc.send(tc.display, protocol.DisplayRequestGetRegistry, func(mb *wire.MessageBuilder) {
		mb.WriteUint(tc.registry.id)
	})
	tc.roundtrip()
	return &tc
}

func (tc *testClient) read() {
	defer close(tc.events)
	for {
		msg, err := wire.ReadMessage(tc.conn)
		if err != nil {
			return
		}
		tc.events <- msg
	}
}

// updateGlobals tracks the registry so that globals added after the
// client connected can be bound.
func (tc *testClient) updateGlobals(events []*wire.MessageBuffer) {
	for _, msg := range events {
		if msg.Sender() != tc.registry.id {
			continue
		}

		switch msg.Op() {
		case protocol.RegistryEventGlobal:
			name := msg.ReadUint()
			iface := msg.ReadString()
			msg.ReadUint()
			require.NoError(tc.t, msg.Err())
			tc.globals[iface] = name

		case protocol.RegistryEventGlobalRemove:
			name := msg.ReadUint()
			require.NoError(tc.t, msg.Err())
			for iface, n := range tc.globals {
				if n == name {
					delete(tc.globals, iface)
				}
			}
		}
	}
}

func (tc *testClient) newProxy(iface string) *proxy {
	p := proxy{id: tc.nextID, iface: iface}
	tc.nextID++
	return &p
}

func (tc *testClient) send(sender *proxy, op uint16, args func(mb *wire.MessageBuilder)) {
	tc.t.Helper()

	mb := wire.NewMessage(sender, op)
	if args != nil {
		args(mb)
	}
	require.NoError(tc.t, mb.Build(tc.conn))
}

// roundtrip waits until the server has handled every request sent so
// far and returns the events that arrived in the meantime.
func (tc *testClient) roundtrip() []*wire.MessageBuffer {
	tc.t.Helper()

	cb := tc.newProxy(protocol.CallbackInterface)
	tc.send(tc.display, protocol.DisplayRequestSync, func(mb *wire.MessageBuilder) {
		mb.WriteUint(cb.id)
	})

	var got []*wire.MessageBuffer
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		dispatch(tc.t, tc.c)
		for {
			select {
			case msg, ok := <-tc.events:
				if !ok {
					tc.t.Fatal("connection closed during roundtrip")
				}
				if (msg.Sender() == cb.id) && (msg.Op() == protocol.CallbackEventDone) {
					tc.updateGlobals(got)
					return got
				}
				got = append(got, msg)
				continue
			default:
			}
			break
		}
	}
	tc.t.Fatal("roundtrip timed out")
	return nil
}

// waitClosed dispatches until the server disconnects the client and
// returns the events that were sent before it did.
func (tc *testClient) waitClosed() []*wire.MessageBuffer {
	tc.t.Helper()

	var got []*wire.MessageBuffer
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		dispatch(tc.t, tc.c)
		for {
			select {
			case msg, ok := <-tc.events:
				if !ok {
					return got
				}
				got = append(got, msg)
				continue
			default:
			}
			break
		}
	}
	tc.t.Fatal("client was not disconnected")
	return nil
}

func (tc *testClient) bind(iface string, version uint32) *proxy {
	tc.t.Helper()

	name, ok := tc.globals[iface]
	require.True(tc.t, ok, "global %v is not advertised", iface)

	p := tc.newProxy(iface)
	tc.send(tc.registry, protocol.RegistryRequestBind, func(mb *wire.MessageBuilder) {
		mb.WriteUint(name)
		mb.WriteNewID(wire.NewID{Interface: iface, Version: version, ID: p.id})
	})
	return p
}

// createSurface creates a surface and returns both halves of it.
func (tc *testClient) createSurface(comp *proxy) (*proxy, *Surface) {
	tc.t.Helper()

	p := tc.newProxy(protocol.SurfaceInterface)
	tc.send(comp, protocol.CompositorRequestCreateSurface, func(mb *wire.MessageBuilder) {
		mb.WriteUint(p.id)
	})
	tc.roundtrip()

	s := tc.c.SurfaceByID(tc.client, p.id)
	require.NotNil(tc.t, s)
	return p, s
}

func (tc *testClient) createBuffer(shmp *proxy, width, height int) *proxy {
	tc.t.Helper()

	size := width * height * 4
	file, err := shm.Create("wlcomp-test", size)
	require.NoError(tc.t, err)
	defer file.Close()

	pool := tc.newProxy(protocol.ShmPoolInterface)
	tc.send(shmp, protocol.ShmRequestCreatePool, func(mb *wire.MessageBuilder) {
		mb.WriteUint(pool.id)
		mb.WriteFile(file)
		mb.WriteInt(int32(size))
	})

	buf := tc.newProxy(protocol.BufferInterface)
	tc.send(pool, protocol.ShmPoolRequestCreateBuffer, func(mb *wire.MessageBuilder) {
		mb.WriteUint(buf.id)
		mb.WriteInt(0)
		mb.WriteInt(int32(width))
		mb.WriteInt(int32(height))
		mb.WriteInt(int32(width * 4))
		mb.WriteUint(protocol.ShmFormatArgb8888)
	})
	return buf
}

func (tc *testClient) attach(surface, buf *proxy) {
	tc.send(surface, protocol.SurfaceRequestAttach, func(mb *wire.MessageBuilder) {
		mb.WriteUint(buf.id)
		mb.WriteInt(0)
		mb.WriteInt(0)
	})
}

func (tc *testClient) commit(surface *proxy) {
	tc.send(surface, protocol.SurfaceRequestCommit, nil)
}

func (tc *testClient) frame(surface *proxy) *proxy {
	cb := tc.newProxy(protocol.CallbackInterface)
	tc.send(surface, protocol.SurfaceRequestFrame, func(mb *wire.MessageBuilder) {
		mb.WriteUint(cb.id)
	})
	return cb
}

func filter(events []*wire.MessageBuffer, sender *proxy, op uint16) []*wire.MessageBuffer {
	var found []*wire.MessageBuffer
	for _, msg := range events {
		if (msg.Sender() == sender.id) && (msg.Op() == op) {
			found = append(found, msg)
		}
	}
	return found
}
