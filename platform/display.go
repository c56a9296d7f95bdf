package platform

import (
	"errors"
	"image"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
)

// ErrNoShell is returned when a shell surface is requested from a
// compositor that does not advertise wl_shell.
var ErrNoShell = errors.New("compositor does not provide wl_shell")

// ErrNoCompositor is returned when a surface is requested from a
// server that does not advertise wl_compositor.
var ErrNoCompositor = errors.New("server does not provide wl_compositor")

// Display binds the globals of a client connection and routes their
// events to a WindowSystem.
type Display struct {
	ws        WindowSystem
	display   *wl.Display
	registry  *wl.Registry
	newKeymap func() Keymap

	compositor *wl.Compositor
	shm        *wl.Shm
	shell      *wl.Shell
	outputExt  *wl.OutputExtension
	screens    []*Screen
	devices    []*InputDevice
	touchExt   *TouchExtension

	windows           map[*wl.Surface]Window
	lastKeyboardFocus *InputDevice
}

// Option configures a Display.
type Option func(*Display)

// WithKeymap sets the function that creates the Keymap of each input
// device. The default is a USKeymap.
func WithKeymap(newKeymap func() Keymap) Option {
	return func(d *Display) {
		d.newKeymap = newKeymap
	}
}

// New binds the globals of display and waits until their initial state
// has arrived.
func New(display *wl.Display, ws WindowSystem, opts ...Option) (*Display, error) {
	d := Display{
		ws:        ws,
		display:   display,
		newKeymap: func() Keymap { return new(USKeymap) },
		windows:   make(map[*wl.Surface]Window),
	}
	for _, opt := range opts {
		opt(&d)
	}

	d.registry = display.GetRegistry()
	d.registry.Global = d.global
	d.registry.GlobalRemove = d.globalRemove

	// Globals, then their initial events, then the replies to requests
	// made while handling those events.
	for range 3 {
		err := display.RoundTrip()
		if err != nil {
			return nil, err
		}
	}

	return &d, nil
}

func (d *Display) global(g wl.Global) {
	switch g.Interface {
	case protocol.CompositorInterface:
		d.compositor = wl.BindCompositor(d.registry, g)

	case protocol.ShmInterface:
		d.shm = wl.BindShm(d.registry, g)

	case protocol.ShellInterface:
		d.shell = wl.BindShell(d.registry, g)

	case protocol.SeatInterface:
		d.devices = append(d.devices, newInputDevice(d, wl.BindSeat(d.registry, g)))

	case protocol.OutputInterface:
		screen := Screen{name: g.Name, output: wl.BindOutput(d.registry, g)}
		if d.outputExt != nil {
			screen.ext = d.outputExt.GetExtendedOutput(screen.output)
		}
		d.screens = append(d.screens, &screen)

	case protocol.OutputExtensionInterface:
		d.outputExt = wl.BindOutputExtension(d.registry, g)
		for _, screen := range d.screens {
			if screen.ext == nil {
				screen.ext = d.outputExt.GetExtendedOutput(screen.output)
			}
		}

	case protocol.TouchExtensionInterface:
		d.touchExt = newTouchExtension(d, wl.BindTouchExtension(d.registry, g))

	default:
		debug.Debug("ignoring global", "name", g.Name, "interface", g.Interface)
	}
}

func (d *Display) globalRemove(name uint32) {
	for i, screen := range d.screens {
		if screen.name == name {
			d.screens = append(d.screens[:i], d.screens[i+1:]...)
			return
		}
	}
}

// Conn returns the underlying connection.
func (d *Display) Conn() *wl.Display {
	return d.display
}

// Globals returns every global that the server currently advertises.
func (d *Display) Globals() []wl.Global {
	return d.registry.Globals()
}

func (d *Display) Compositor() *wl.Compositor {
	return d.compositor
}

func (d *Display) Shm() *wl.Shm {
	return d.shm
}

func (d *Display) Screens() []*Screen {
	return d.screens
}

func (d *Display) InputDevices() []*InputDevice {
	return d.devices
}

func (d *Display) firstInputDevice() *InputDevice {
	if len(d.devices) == 0 {
		return nil
	}
	return d.devices[0]
}

// LastKeyboardFocusInputDevice returns the input device whose keyboard
// most recently entered one of the client's windows, or nil if that
// keyboard has left again.
func (d *Display) LastKeyboardFocusInputDevice() *InputDevice {
	return d.lastKeyboardFocus
}

// TouchExtension returns the touch extension, or nil if the compositor
// does not provide one.
func (d *Display) TouchExtension() *TouchExtension {
	return d.touchExt
}

// CreateSurface creates a surface for a new window.
func (d *Display) CreateSurface() (*wl.Surface, error) {
	if d.compositor == nil {
		return nil, ErrNoCompositor
	}
	return d.compositor.CreateSurface(), nil
}

// AddWindow makes events for w's surface go to w.
func (d *Display) AddWindow(w Window) {
	d.windows[w.Surface()] = w
}

// RemoveWindow forgets w. Its surface can be destroyed afterwards.
func (d *Display) RemoveWindow(w Window) {
	delete(d.windows, w.Surface())
	for _, dev := range d.devices {
		dev.HandleWindowDestroyed(w)
	}
	if (d.touchExt != nil) && (d.touchExt.target == w) {
		d.touchExt.target = nil
	}
}

// Window returns the window of s, or nil.
func (d *Display) Window(s *wl.Surface) Window {
	return d.windows[s]
}

// CreateShellSurface gives w a shell surface. Configure events for it
// are passed to w.Configure.
func (d *Display) CreateShellSurface(w Window) (*ShellSurface, error) {
	if d.shell == nil {
		return nil, ErrNoShell
	}
	return newShellSurface(d.shell.GetShellSurface(w.Surface()), w), nil
}

// Flush sends pending requests and handles events that have arrived.
func (d *Display) Flush() error {
	return d.display.Flush()
}

// RoundTrip waits until the compositor has handled every request sent
// so far, handling events in the meantime.
func (d *Display) RoundTrip() error {
	return d.display.RoundTrip()
}

// Screen is an output of the compositor.
type Screen struct {
	name   uint32
	output *wl.Output
	ext    *wl.ExtendedOutput
}

// Output returns the screen's wl_output. It returns nil for a nil
// screen.
func (s *Screen) Output() *wl.Output {
	if s == nil {
		return nil
	}
	return s.output
}

// Geometry returns the area of the screen in global coordinates.
func (s *Screen) Geometry() image.Rectangle {
	return s.output.Rect()
}

func (s *Screen) Make() string {
	return s.output.CurrentGeometry().Make
}

func (s *Screen) Model() string {
	return s.output.CurrentGeometry().Model
}

// Rotation returns the last wl_extended_output.rotation value that the
// compositor sent. It is zero if the screen has not been rotated or if
// the output extension is missing.
func (s *Screen) Rotation() int32 {
	if s.ext == nil {
		return 0
	}
	return s.ext.Rotation()
}
