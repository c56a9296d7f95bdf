package platform_test

import (
	"context"
	"image"
	"testing"
	"time"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/compositor"
	"deedles.dev/wlcomp/platform"
	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
	server "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	surface    *wl.Surface
	configured []image.Point
}

func (w *window) Surface() *wl.Surface                    { return w.surface }
func (w *window) MapToGlobal(p image.Point) image.Point   { return p }
func (w *window) MapFromGlobal(p image.Point) image.Point { return p }
func (w *window) FrameMargins() platform.Margins          { return platform.Margins{} }

func (w *window) Configure(edges uint32, size image.Point) {
	w.configured = append(w.configured, size)
}

type windowSystem struct {
	entered   []platform.Window
	mouse     []platform.MouseEvent
	keys      []platform.KeyEvent
	activated []platform.Window
}

func (ws *windowSystem) MouseEnter(w platform.Window)            { ws.entered = append(ws.entered, w) }
func (ws *windowSystem) MouseLeave(w platform.Window)            {}
func (ws *windowSystem) Mouse(ev platform.MouseEvent)            { ws.mouse = append(ws.mouse, ev) }
func (ws *windowSystem) Wheel(ev platform.WheelEvent)            {}
func (ws *windowSystem) Key(ev platform.KeyEvent)                { ws.keys = append(ws.keys, ev) }
func (ws *windowSystem) Touch(ev platform.TouchEvent)            {}
func (ws *windowSystem) TouchCancel(source platform.TouchSource) {}
func (ws *windowSystem) WindowActivated(w platform.Window)       { ws.activated = append(ws.activated, w) }

func start(t *testing.T) *compositor.Compositor {
	t.Helper()

	c := compositor.New(server.NewServer(), nil)
	c.InitializeDefaultInputDevice(protocol.SeatCapabilityPointer | protocol.SeatCapabilityKeyboard)
	c.EnableTouchExtension()
	return c
}

func connect(t *testing.T, c *compositor.Compositor, ws platform.WindowSystem) *platform.Display {
	t.Helper()

	sc, cc, err := wire.Pipe()
	require.NoError(t, err)
	c.Server().AddClient(sc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx, time.Millisecond)
	}()

	conn := wl.Connect(cc)
	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
		c.Close()
	})

	d, err := platform.New(conn, ws)
	require.NoError(t, err)
	return d
}

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

func TestDisplayBindsGlobals(t *testing.T) {
	c := start(t)
	d := connect(t, c, new(windowSystem))

	assert.NotNil(t, d.Compositor())
	assert.NotNil(t, d.Shm())
	assert.NotNil(t, d.TouchExtension())

	devices := d.InputDevices()
	require.Len(t, devices, 1)
	assert.Equal(t, protocol.SeatCapabilityPointer|protocol.SeatCapabilityKeyboard, devices[0].Capabilities())

	screens := d.Screens()
	require.Len(t, screens, 1)
	assert.Equal(t, image.Rect(0, 0, 800, 600), screens[0].Geometry())
	assert.Zero(t, screens[0].Rotation())

	onServer(t, c, func() { c.SetScreenOrientation(compositor.LandscapeOrientation) })
	require.NoError(t, d.RoundTrip())
	assert.Equal(t, int32(compositor.LandscapeOrientation), screens[0].Rotation())
}

func TestDisplayDeliversInput(t *testing.T) {
	c := start(t)
	ws := new(windowSystem)
	d := connect(t, c, ws)

	s, err := d.CreateSurface()
	require.NoError(t, err)
	w := &window{surface: s}
	d.AddWindow(w)

	shell, err := d.CreateShellSurface(w)
	require.NoError(t, err)
	shell.SetToplevel()
	require.NoError(t, d.RoundTrip())

	onServer(t, c, func() {
		surfaces := c.Surfaces()
		if len(surfaces) != 1 {
			return
		}

		dev := c.DefaultInputDevice()
		dev.SetMouseFocus(surfaces[0], pointer.PointF{X: 3, Y: 4})
		dev.SendMousePress(pointer.LeftButton)
		dev.SetKeyboardFocus(surfaces[0])
		dev.SendKeyPress(30 + 8)
		surfaces[0].ShellSurface().Configure(protocol.ShellSurfaceResizeNone, image.Pt(320, 240))
	})
	require.NoError(t, d.RoundTrip())

	assert.Equal(t, []platform.Window{w}, ws.entered)
	require.Len(t, ws.mouse, 2)
	assert.Equal(t, pointer.PointF{X: 3, Y: 4}, ws.mouse[0].Local)
	assert.Equal(t, pointer.PointF{X: 3, Y: 4}, ws.mouse[0].Global)
	assert.Equal(t, pointer.LeftButton, ws.mouse[1].Buttons)

	assert.Equal(t, []platform.Window{w}, ws.activated)
	require.Len(t, ws.keys, 1)
	assert.Equal(t, platform.Key('A'), ws.keys[0].Key)
	assert.Equal(t, "a", ws.keys[0].Text)

	assert.Equal(t, []image.Point{{X: 320, Y: 240}}, w.configured)
	assert.Equal(t, platform.Window(w), d.InputDevices()[0].PointerFocus())
}
