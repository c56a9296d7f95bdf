// Package compositor tracks the state that a compositor needs on top
// of the raw protocol objects of package wl: surfaces and their
// buffers, frame callbacks, input focus, outputs and the optional
// extensions. Rendering is left to an Embedder.
//
// Like package wl, everything here must be used from the server's
// dispatch goroutine. Work that originates elsewhere should be handed
// over with Post.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"golang.org/x/exp/slices"
)

var (
	// ErrResourceExhausted is returned when the compositor's socket
	// could not be created.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrHardwareIntegrationUnavailable is returned when a surface
	// could not be handed to the hardware for direct rendering.
	ErrHardwareIntegrationUnavailable = errors.New("hardware integration unavailable")

	// ErrSurfaceDestroyed is returned when a destroyed surface is
	// given to an operation that needs a live one.
	ErrSurfaceDestroyed = errors.New("surface destroyed")
)

// Embedder is implemented by the code that displays surfaces.
type Embedder interface {
	SurfaceCreated(s *Surface)
	SurfaceAboutToBeDestroyed(s *Surface)
}

// HardwareIntegration is implemented by graphics backends that can
// scan out a client's buffer directly.
type HardwareIntegration interface {
	InitializeHardware(server *wl.Server) error

	// SetDirectRenderSurface returns true if s will now be displayed
	// directly. s is nil when direct rendering should stop.
	SetDirectRenderSurface(s *Surface) bool
}

// Compositor is the top-level state of a compositor. Create one with
// New or Listen.
type Compositor struct {
	server   *wl.Server
	embedder Embedder
	hw       HardwareIntegration

	surfaces     []*Surface
	dirty        []*Surface
	directRender *Surface
	buffers      map[*wl.Buffer]*Buffer

	input     *InputDevice
	output    *Output
	shell     *Shell
	selection *Selection
	outputExt *OutputExtension
	surfExt   *SurfaceExtension
	subExt    *SubSurfaceExtension
	touchExt  *TouchExtension
	wm        *WindowManager

	// FrameFinished, if not nil, is called for every surface after its
	// frame callbacks have been sent.
	FrameFinished func(s *Surface)
}

// Listen creates a server listening on a socket with the given name
// and a compositor on top of it.
func Listen(socket string, embedder Embedder) (*Compositor, error) {
	server, err := wl.ListenAndServe(socket)
	if err != nil {
		return nil, fmt.Errorf("%w: listen on %q: %w", ErrResourceExhausted, socket, err)
	}
	return New(server, embedder), nil
}

// New creates a compositor that serves the clients of server. The core
// globals are advertised immediately. Optional parts, such as input
// and the extensions, need to be enabled separately.
func New(server *wl.Server, embedder Embedder) *Compositor {
	c := Compositor{
		server:   server,
		embedder: embedder,
		buffers:  make(map[*wl.Buffer]*Buffer),
	}

	server.AddGlobal(protocol.CompositorInterface, protocol.CompositorVersion, c.bindCompositor)
	server.AddGlobal(protocol.ShmInterface, protocol.ShmVersion, func(client *wl.Client, version, id uint32) error {
		_, err := wl.BindShm(client, version, id)
		return err
	})

	c.output = newOutput(&c)
	c.selection = newSelection(&c)
	c.shell = newShell(&c)
	c.outputExt = newOutputExtension(&c)
	c.surfExt = newSurfaceExtension(&c)

	return &c
}

// Server returns the underlying protocol server.
func (c *Compositor) Server() *wl.Server {
	return c.server
}

func (c *Compositor) bindCompositor(client *wl.Client, version, id uint32) error {
	obj, err := wl.BindCompositor(client, version, id)
	if err != nil {
		return err
	}
	obj.Listener = (*compositorListener)(c)
	return nil
}

type compositorListener Compositor

func (lis *compositorListener) CreateSurface(obj *wl.Surface) {
	(*Compositor)(lis).createSurface(obj)
}

func (c *Compositor) createSurface(obj *wl.Surface) *Surface {
	s := newSurface(c, obj)
	c.surfaces = append(c.surfaces, s)
	obj.OnDelete(func() { c.surfaceDestroyed(s) })

	debug.Debug("surface created", "client", obj.Client(), "surface", obj.ID())
	if c.embedder != nil {
		c.embedder.SurfaceCreated(s)
	}
	return s
}

func (c *Compositor) surfaceDestroyed(s *Surface) {
	if c.input != nil {
		c.input.surfaceDestroyed(s)
	}
	if c.directRender == s {
		c.directRender = nil
		if c.hw != nil {
			c.hw.SetDirectRenderSurface(nil)
		}
	}

	c.surfaces = deleteItem(c.surfaces, s)
	c.dirty = deleteItem(c.dirty, s)
	s.destroyed()
	for _, other := range c.surfaces {
		if (other.shell != nil) && (other.shell.parent == s) {
			other.shell.parent = nil
		}
	}

	debug.Debug("surface destroyed", "client", s.Client(), "surface", s.ID())
	if c.embedder != nil {
		c.embedder.SurfaceAboutToBeDestroyed(s)
	}
}

// MarkDirty flags s as having content that the next frame will
// consume. Marking a surface that is already dirty does nothing.
func (c *Compositor) MarkDirty(s *Surface) {
	if s.dirty {
		return
	}
	s.dirty = true
	c.dirty = append(c.dirty, s)
}

// Dirty returns the surfaces that are waiting for a frame, in the
// order in which they were marked.
func (c *Compositor) Dirty() []*Surface {
	return slices.Clone(c.dirty)
}

// FinishFrame tells the client that owns s that its content has been
// displayed. It does nothing if s is not dirty.
func (c *Compositor) FinishFrame(s *Surface) {
	if !s.dirty {
		return
	}
	s.dirty = false
	c.dirty = deleteItem(c.dirty, s)
	c.frameFinished(s)
}

// FinishAllFrames is like FinishFrame for every dirty surface.
// Surfaces that are marked dirty while callbacks are being sent stay
// dirty until the next call.
func (c *Compositor) FinishAllFrames() {
	dirty := c.dirty
	c.dirty = nil
	for _, s := range dirty {
		s.dirty = false
	}

	for _, s := range dirty {
		c.frameFinished(s)
	}
}

func (c *Compositor) frameFinished(s *Surface) {
	s.sendFrameCallbacks(c.CurrentTimeMsecs())
	if c.FrameFinished != nil {
		c.FrameFinished(s)
	}
}

// Surfaces returns every live surface in order of creation.
func (c *Compositor) Surfaces() []*Surface {
	return slices.Clone(c.surfaces)
}

// SurfacesForClient returns the live surfaces that belong to client.
func (c *Compositor) SurfacesForClient(client *wl.Client) []*Surface {
	var surfaces []*Surface
	for _, s := range c.surfaces {
		if s.Client() == client {
			surfaces = append(surfaces, s)
		}
	}
	return surfaces
}

// SurfaceByID finds a surface by its protocol object ID. IDs are only
// unique per client. It returns nil if no such surface exists.
func (c *Compositor) SurfaceByID(client *wl.Client, id uint32) *Surface {
	for _, s := range c.surfaces {
		if (s.Client() == client) && (s.ID() == id) {
			return s
		}
	}
	return nil
}

// Clients returns the clients that own at least one surface.
func (c *Compositor) Clients() []*wl.Client {
	var clients []*wl.Client
	for _, s := range c.surfaces {
		if !slices.Contains(clients, s.Client()) {
			clients = append(clients, s.Client())
		}
	}
	return clients
}

// DestroyClientForSurface disconnects the client that owns s.
func (c *Compositor) DestroyClientForSurface(s *Surface) {
	client := s.Client()
	if c.wm != nil {
		c.wm.removeClient(client)
	}
	client.Destroy()
}

// InitializeHardwareIntegration sets up direct rendering. Without it,
// SetDirectRenderSurface always fails.
func (c *Compositor) InitializeHardwareIntegration(hw HardwareIntegration) error {
	err := hw.InitializeHardware(c.server)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHardwareIntegrationUnavailable, err)
	}
	c.hw = hw
	return nil
}

// SetDirectRenderSurface asks the hardware integration to display s
// directly. At most one surface is displayed directly at a time. If
// the integration refuses, the previous surface stays designated and
// ErrHardwareIntegrationUnavailable is returned. A nil s stops direct
// rendering. A destroyed s is rejected with ErrSurfaceDestroyed.
func (c *Compositor) SetDirectRenderSurface(s *Surface) error {
	if (s != nil) && s.Destroyed() {
		return ErrSurfaceDestroyed
	}
	if (c.hw == nil) || !c.hw.SetDirectRenderSurface(s) {
		return ErrHardwareIntegrationUnavailable
	}
	c.directRender = s
	return nil
}

// DirectRenderSurface returns the surface that is being displayed
// directly, if any.
func (c *Compositor) DirectRenderSurface() *Surface {
	return c.directRender
}

// InitializeDefaultInputDevice advertises a wl_seat with the given
// capabilities and returns it. Calling it again returns the existing
// seat.
func (c *Compositor) InitializeDefaultInputDevice(caps uint32) *InputDevice {
	if c.input == nil {
		c.input = newInputDevice(c, caps)
	}
	return c.input
}

// DefaultInputDevice returns the seat created by
// InitializeDefaultInputDevice, or nil.
func (c *Compositor) DefaultInputDevice() *InputDevice {
	return c.input
}

// InitializeWindowManagerProtocol advertises the window manager
// extension.
func (c *Compositor) InitializeWindowManagerProtocol() *WindowManager {
	if c.wm == nil {
		c.wm = newWindowManager(c)
	}
	return c.wm
}

// SetClientFullScreenHint tells every client whether to show its
// windows full screen.
func (c *Compositor) SetClientFullScreenHint(fullscreen bool) {
	if c.wm != nil {
		c.wm.SetShowIsFullscreen(fullscreen)
	}
}

// EnableSubSurfaceExtension advertises the sub-surface extension.
func (c *Compositor) EnableSubSurfaceExtension() {
	if c.subExt == nil {
		c.subExt = newSubSurfaceExtension(c)
	}
}

// EnableTouchExtension advertises the touch extension. Touch events
// sent with SendFullTouchEvent will use it when the client has bound
// it.
func (c *Compositor) EnableTouchExtension() *TouchExtension {
	if c.touchExt == nil {
		c.touchExt = newTouchExtension(c)
	}
	return c.touchExt
}

// ConfigureTouchExtension sets the flags that are sent to clients of
// the touch extension. It does nothing if the extension is not
// enabled.
func (c *Compositor) ConfigureTouchExtension(flags uint32) {
	if c.touchExt != nil {
		c.touchExt.SetFlags(flags)
	}
}

// TouchExtension returns the touch extension if it has been enabled.
func (c *Compositor) TouchExtension() *TouchExtension {
	return c.touchExt
}

// Output returns the compositor's only output.
func (c *Compositor) Output() *Output {
	return c.output
}

// SetScreenOrientation changes the orientation of the output and tells
// the clients that are using the output extension.
func (c *Compositor) SetScreenOrientation(o Orientation) {
	c.output.SetOrientation(o)
}

// ScreenOrientation returns the orientation of the output.
func (c *Compositor) ScreenOrientation() Orientation {
	return c.output.Orientation()
}

// SetOutputGeometry changes the position and size of the output.
func (c *Compositor) SetOutputGeometry(g Geometry) {
	c.output.SetGeometry(g)
}

// Selection returns the clipboard state.
func (c *Compositor) Selection() *Selection {
	return c.selection
}

// SetRetainedSelectionWatcher registers f to be called with the
// contents of every selection that a client sets. The compositor reads
// the data as soon as the selection is set so that it survives the
// client.
func (c *Compositor) SetRetainedSelectionWatcher(f func(data map[string][]byte)) {
	c.selection.watcher = f
}

// OverrideSelection replaces the current selection with data provided
// by the compositor itself.
func (c *Compositor) OverrideSelection(data map[string][]byte) {
	c.selection.Override(data)
}

// Post queues f to be run on the dispatch goroutine. It is safe to
// call from any goroutine. It returns false if the server has been
// closed.
func (c *Compositor) Post(f func()) bool {
	return c.server.Post(func() error { f(); return nil })
}

// ScheduleReleaseBuffer releases b on the dispatch goroutine. It is
// safe to call from any goroutine.
func (c *Compositor) ScheduleReleaseBuffer(b *Buffer) {
	c.Post(b.Release)
}

// CurrentTimeMsecs returns a millisecond timestamp for events. It
// wraps around.
func (c *Compositor) CurrentTimeMsecs() uint32 {
	return uint32(time.Now().UnixMilli())
}

// Run dispatches requests until ctx is canceled or the compositor is
// closed. If interval is positive, FinishAllFrames is called at that
// interval, as a display that shows every frame would.
func (c *Compositor) Run(ctx context.Context, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if interval > 0 {
		go c.tick(ctx, interval)
	}

	return c.server.Run(ctx)
}

func (c *Compositor) tick(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.Post(c.FinishAllFrames) {
				return
			}
		}
	}
}

// Close disconnects every client and closes the server.
func (c *Compositor) Close() error {
	return c.server.Close()
}

func deleteItem[T comparable](s []T, v T) []T {
	i := slices.Index(s, v)
	if i < 0 {
		return s
	}
	return slices.Delete(s, i, i+1)
}
