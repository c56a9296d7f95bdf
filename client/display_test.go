package wl_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/compositor"
	"deedles.dev/wlcomp/protocol"
	server "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// start runs a compositor in the background and connects a client to
// it.
func start(t *testing.T) (*compositor.Compositor, *wl.Display) {
	t.Helper()

	c := compositor.New(server.NewServer(), nil)
	sc, cc, err := wire.Pipe()
	require.NoError(t, err)
	c.Server().AddClient(sc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx, time.Millisecond)
	}()

	display := wl.Connect(cc)
	t.Cleanup(func() {
		display.Close()
		cancel()
		<-done
		c.Close()
	})
	return c, display
}

// onServer runs f on the compositor's dispatch goroutine and waits for
// it to finish.
func onServer(t *testing.T, c *compositor.Compositor, f func()) {
	t.Helper()

	done := make(chan struct{})
	require.True(t, c.Post(func() { defer close(done); f() }))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the server")
	}
}

type globals struct {
	registry   *wl.Registry
	compositor *wl.Compositor
	shm        *wl.Shm
	output     *wl.Output
	shell      *wl.Shell
}

func bindGlobals(t *testing.T, display *wl.Display) globals {
	t.Helper()

	registry := display.GetRegistry()
	require.NoError(t, display.RoundTrip())

	bind := func(iface string) wl.Global {
		g, ok := registry.Find(iface)
		require.True(t, ok, "%v not advertised", iface)
		return g
	}

	gs := globals{
		registry:   registry,
		compositor: wl.BindCompositor(registry, bind(protocol.CompositorInterface)),
		shm:        wl.BindShm(registry, bind(protocol.ShmInterface)),
		output:     wl.BindOutput(registry, bind(protocol.OutputInterface)),
		shell:      wl.BindShell(registry, bind(protocol.ShellInterface)),
	}
	require.NoError(t, display.RoundTrip())
	return gs
}

func TestRegistryListsGlobals(t *testing.T) {
	_, display := start(t)

	var announced []string
	registry := display.GetRegistry()
	registry.Global = func(g wl.Global) { announced = append(announced, g.Interface) }
	require.NoError(t, display.RoundTrip())

	assert.Contains(t, announced, protocol.CompositorInterface)
	assert.Contains(t, announced, protocol.ShmInterface)
	assert.Contains(t, announced, protocol.OutputInterface)

	globals := registry.Globals()
	require.Len(t, globals, len(announced))
	for i := 1; i < len(globals); i++ {
		assert.Less(t, globals[i-1].Name, globals[i].Name)
	}
}

func TestGlobalsAddedLater(t *testing.T) {
	c, display := start(t)
	registry := display.GetRegistry()
	require.NoError(t, display.RoundTrip())

	_, ok := registry.Find(protocol.TouchExtensionInterface)
	require.False(t, ok)

	onServer(t, c, func() { c.EnableTouchExtension() })
	require.NoError(t, display.RoundTrip())

	_, ok = registry.Find(protocol.TouchExtensionInterface)
	assert.True(t, ok)
}

func TestShmAndOutputState(t *testing.T) {
	_, display := start(t)
	gs := bindGlobals(t, display)

	assert.Contains(t, gs.shm.Formats(), protocol.ShmFormatArgb8888)
	assert.Contains(t, gs.shm.Formats(), protocol.ShmFormatXrgb8888)

	assert.Equal(t, image.Rect(0, 0, 800, 600), gs.output.Rect())
	assert.Equal(t, "wlcomp", gs.output.CurrentGeometry().Make)
}

func TestFrameCallback(t *testing.T) {
	c, display := start(t)
	gs := bindGlobals(t, display)

	s := gs.compositor.CreateSurface()
	buf, err := wl.NewImageBuffer(gs.shm, image.Pt(4, 4))
	require.NoError(t, err)
	defer buf.Destroy()

	red := color.RGBA{R: 0x80, A: 0x80}
	draw.Draw(buf.Image(), buf.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)

	var done bool
	s.Attach(buf.Buffer(), 0, 0)
	s.Damage(buf.Bounds())
	s.Frame(func(uint32) { done = true })
	s.Commit()

	deadline := time.Now().Add(5 * time.Second)
	for !done && time.Now().Before(deadline) {
		require.NoError(t, display.RoundTrip())
	}
	assert.True(t, done)

	var sizes []image.Point
	var pixel color.Color
	onServer(t, c, func() {
		for _, s := range c.Surfaces() {
			sizes = append(sizes, s.Size())
			pixel = s.Image().At(1, 1)
		}
	})
	assert.Equal(t, []image.Point{{X: 4, Y: 4}}, sizes)
	assert.Equal(t, red, pixel, "premultiplied pixels arrive unchanged")
}

func TestBufferReleasedAfterReplacement(t *testing.T) {
	_, display := start(t)
	gs := bindGlobals(t, display)

	s := gs.compositor.CreateSurface()
	b1, err := wl.NewImageBuffer(gs.shm, image.Pt(2, 2))
	require.NoError(t, err)
	defer b1.Destroy()
	b2, err := wl.NewImageBuffer(gs.shm, image.Pt(2, 2))
	require.NoError(t, err)
	defer b2.Destroy()

	var released bool
	b1.Buffer().Release = func() { released = true }

	s.Attach(b1.Buffer(), 0, 0)
	s.Commit()
	require.NoError(t, display.RoundTrip())
	s.Attach(b2.Buffer(), 0, 0)
	s.Commit()

	deadline := time.Now().Add(5 * time.Second)
	for !released && time.Now().Before(deadline) {
		require.NoError(t, display.RoundTrip())
	}
	assert.True(t, released)
}

func TestProtocolErrorIsReported(t *testing.T) {
	_, display := start(t)
	gs := bindGlobals(t, display)

	var reported *wire.ProtocolError
	display.Error = func(err *wire.ProtocolError) { reported = err }

	s1 := gs.compositor.CreateSurface()
	s2 := gs.compositor.CreateSurface()
	buf, err := wl.NewImageBuffer(gs.shm, image.Pt(2, 2))
	require.NoError(t, err)
	defer buf.Destroy()
	s1.Attach(buf.Buffer(), 0, 0)
	s2.Attach(buf.Buffer(), 0, 0)

	err = display.RoundTrip()
	var perr *wire.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, wire.ErrorInvalidObject, perr.Code)
	assert.Equal(t, s2.ID(), perr.ObjectID)
	require.NotNil(t, reported)
	assert.Equal(t, perr.Message, reported.Message)
}

func TestPingIsAnswered(t *testing.T) {
	c, display := start(t)
	gs := bindGlobals(t, display)

	s := gs.compositor.CreateSurface()
	ss := gs.shell.GetShellSurface(s)
	ss.SetToplevel()
	ss.SetTitle("test")
	require.NoError(t, display.RoundTrip())

	var shell *compositor.ShellSurface
	var responsive bool
	onServer(t, c, func() {
		shell = c.Surfaces()[0].ShellSurface()
		if shell != nil {
			shell.Ping()
			responsive = shell.Responsive()
		}
	})
	require.NotNil(t, shell)
	assert.False(t, responsive)

	var pinged bool
	ss.Ping = func(uint32) { pinged = true }
	require.NoError(t, display.RoundTrip())
	require.True(t, pinged)
	require.NoError(t, display.RoundTrip())

	var title string
	var state compositor.ShellSurfaceState
	onServer(t, c, func() {
		responsive = shell.Responsive()
		title = shell.Title()
		state = shell.State()
	})
	assert.True(t, responsive)
	assert.Equal(t, "test", title)
	assert.Equal(t, compositor.ShellSurfaceToplevel, state)
}
