package wl_test

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// peer stands in for a client-side proxy when building raw requests.
type peer uint32

func (p peer) ID() uint32                             { return uint32(p) }
func (p peer) SetID(uint32)                           {}
func (p peer) Interface() string                      { return "" }
func (p peer) Dispatch(msg *wire.MessageBuffer) error { return nil }
func (p peer) Delete()                                {}

type harness struct {
	t      *testing.T
	server *wl.Server
	client *wl.Client
	conn   *wire.Conn
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	sc, cc, err := wire.Pipe()
	require.NoError(t, err)

	server := wl.NewServer()
	client := server.AddClient(sc)
	t.Cleanup(func() {
		cc.Close()
		server.Close()
	})

	return &harness{t: t, server: server, client: client, conn: cc}
}

func (h *harness) send(id uint32, op uint16, args func(*wire.MessageBuilder)) {
	h.t.Helper()

	msg := wire.NewMessage(peer(id), op)
	if args != nil {
		args(msg)
	}
	require.NoError(h.t, msg.Build(h.conn))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(h.t, h.server.Dispatch(ctx))
}

func (h *harness) recv() *wire.MessageBuffer {
	h.t.Helper()

	require.NoError(h.t, h.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	msg, err := wire.ReadMessage(h.conn)
	require.NoError(h.t, err)
	return msg
}

func (h *harness) getRegistry(id uint32) {
	h.send(1, protocol.DisplayRequestGetRegistry, func(msg *wire.MessageBuilder) {
		msg.WriteUint(id)
	})
}

func (h *harness) bind(registry, name uint32, nid wire.NewID) {
	h.send(registry, protocol.RegistryRequestBind, func(msg *wire.MessageBuilder) {
		msg.WriteUint(name)
		msg.WriteNewID(nid)
	})
}

type protocolError struct {
	object, code uint32
}

func (h *harness) recvError() protocolError {
	h.t.Helper()

	msg := h.recv()
	require.Equal(h.t, uint32(1), msg.Sender())
	require.Equal(h.t, protocol.DisplayEventError, msg.Op())
	perr := protocolError{object: msg.ReadUint(), code: msg.ReadUint()}
	msg.ReadString()
	require.NoError(h.t, msg.Err())
	return perr
}

func TestRegistry(t *testing.T) {
	h := newHarness(t)

	type bound struct{ version, id uint32 }
	var binds []bound
	h.server.AddGlobal("wl_first", 3, func(client *wl.Client, version, id uint32) error {
		assert.Same(t, h.client, client)
		binds = append(binds, bound{version, id})
		return nil
	})

	h.getRegistry(2)
	msg := h.recv()
	assert.Equal(t, uint32(2), msg.Sender())
	assert.Equal(t, protocol.RegistryEventGlobal, msg.Op())
	assert.Equal(t, uint32(1), msg.ReadUint())
	assert.Equal(t, "wl_first", msg.ReadString())
	assert.Equal(t, uint32(3), msg.ReadUint())
	require.NoError(t, msg.Err())

	second := h.server.AddGlobal("wl_second", 1, func(*wl.Client, uint32, uint32) error { return nil })
	require.NoError(t, h.server.Flush())
	msg = h.recv()
	assert.Equal(t, protocol.RegistryEventGlobal, msg.Op())
	assert.Equal(t, uint32(2), msg.ReadUint())
	assert.Equal(t, "wl_second", msg.ReadString())

	second.Remove()
	require.NoError(t, h.server.Flush())
	msg = h.recv()
	assert.Equal(t, protocol.RegistryEventGlobalRemove, msg.Op())
	assert.Equal(t, uint32(2), msg.ReadUint())
	assert.Len(t, h.server.Globals(), 1)

	h.bind(2, 1, wire.NewID{Interface: "wl_first", Version: 2, ID: 3})
	assert.Equal(t, []bound{{2, 3}}, binds)
}

func TestBindErrors(t *testing.T) {
	tests := []struct {
		name string
		nid  wire.NewID
		gn   uint32
	}{
		{"unknown global", wire.NewID{Interface: "wl_first", Version: 1, ID: 3}, 7},
		{"wrong interface", wire.NewID{Interface: "wl_other", Version: 1, ID: 3}, 1},
		{"version too high", wire.NewID{Interface: "wl_first", Version: 2, ID: 3}, 1},
		{"version zero", wire.NewID{Interface: "wl_first", Version: 0, ID: 3}, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t)
			h.server.AddGlobal("wl_first", 1, func(*wl.Client, uint32, uint32) error {
				t.Error("global was bound")
				return nil
			})

			h.getRegistry(2)
			h.recv()

			h.bind(2, test.gn, test.nid)
			assert.Equal(t, protocolError{object: 2, code: wire.ErrorInvalidObject}, h.recvError())
			assert.True(t, h.client.Destroyed())
			assert.Empty(t, h.server.Clients())
		})
	}
}

func TestSync(t *testing.T) {
	h := newHarness(t)

	h.send(1, protocol.DisplayRequestSync, func(msg *wire.MessageBuilder) {
		msg.WriteUint(2)
	})

	msg := h.recv()
	assert.Equal(t, uint32(2), msg.Sender())
	assert.Equal(t, protocol.CallbackEventDone, msg.Op())
	serial := msg.ReadUint()
	assert.NotZero(t, serial)

	msg = h.recv()
	assert.Equal(t, uint32(1), msg.Sender())
	assert.Equal(t, protocol.DisplayEventDeleteId, msg.Op())
	assert.Equal(t, uint32(2), msg.ReadUint())
	assert.Nil(t, h.client.Get(2))

	assert.Equal(t, serial+1, h.server.NextSerial())
}

func TestUnknownObject(t *testing.T) {
	h := newHarness(t)

	h.send(99, 0, nil)
	assert.Equal(t, protocolError{object: 99, code: wire.ErrorInvalidObject}, h.recvError())
	assert.True(t, h.client.Destroyed())
}

func TestUnknownOpcode(t *testing.T) {
	h := newHarness(t)

	h.send(1, 17, nil)
	assert.Equal(t, protocolError{object: 1, code: wire.ErrorInvalidMethod}, h.recvError())
}

func TestInvalidNewID(t *testing.T) {
	h := newHarness(t)

	h.send(1, protocol.DisplayRequestSync, func(msg *wire.MessageBuilder) {
		msg.WriteUint(0xff000001)
	})
	perr := h.recvError()
	assert.Equal(t, wire.ErrorInvalidObject, perr.code)
}

func TestOtherClientsUnaffected(t *testing.T) {
	h := newHarness(t)

	sc, cc, err := wire.Pipe()
	require.NoError(t, err)
	defer cc.Close()
	other := h.server.AddClient(sc)

	h.send(99, 0, nil)
	h.recvError()

	assert.False(t, other.Destroyed())
	assert.Equal(t, []*wl.Client{other}, h.server.Clients())
}

func TestSendToDestroyedSourceClosesFile(t *testing.T) {
	h := newHarness(t)
	h.server.AddGlobal(protocol.DataDeviceManagerInterface, protocol.DataDeviceManagerVersion, func(client *wl.Client, version, id uint32) error {
		_, err := wl.BindDataDeviceManager(client, version, id)
		return err
	})

	h.getRegistry(2)
	h.recv()
	h.bind(2, 1, wire.NewID{Interface: protocol.DataDeviceManagerInterface, Version: protocol.DataDeviceManagerVersion, ID: 3})
	h.send(3, protocol.DataDeviceManagerRequestCreateDataSource, func(msg *wire.MessageBuilder) {
		msg.WriteUint(4)
	})
	source, ok := h.client.Get(4).(*wl.DataSource)
	require.True(t, ok)

	h.send(99, 0, nil)
	h.recvError()
	require.True(t, h.client.Destroyed())

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	source.Send("text/plain", w)
	w.Close()

	// The reader only sees EOF once every copy of the write end is
	// closed.
	require.NoError(t, r.SetReadDeadline(time.Now().Add(5*time.Second)))
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
}
