package compositor

import (
	"image"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
)

// Shell is the wl_shell global, which turns surfaces into windows.
type Shell struct {
	c      *Compositor
	global *wl.Global

	// Move and Resize, if not nil, are called when a client asks for
	// an interactive move or resize of one of its windows.
	Move   func(ss *ShellSurface)
	Resize func(ss *ShellSurface, edges uint32)
}

func newShell(c *Compositor) *Shell {
	shell := Shell{c: c}
	shell.global = c.server.AddGlobal(protocol.ShellInterface, protocol.ShellVersion, shell.bind)
	return &shell
}

// Shell returns the wl_shell global.
func (c *Compositor) Shell() *Shell {
	return c.shell
}

func (shell *Shell) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindShell(client, version, id)
	if err != nil {
		return err
	}
	r.Listener = (*shellListener)(shell)
	return nil
}

type shellListener Shell

func (lis *shellListener) GetShellSurface(obj *wl.ShellSurface, s *wl.Surface) {
	shell := (*Shell)(lis)
	surface := shell.c.SurfaceByID(s.Client(), s.ID())
	if surface == nil {
		return
	}

	ss := ShellSurface{
		shell:   shell,
		obj:     obj,
		surface: surface,
	}
	obj.Listener = (*shellSurfaceListener)(&ss)
	obj.OnDelete(func() {
		if ss.surface != nil {
			ss.surface.shell = nil
			ss.surface = nil
		}
	})
	surface.shell = &ss
}

// ShellSurfaceState is the role that a client has given to a window.
type ShellSurfaceState int

const (
	ShellSurfaceNone ShellSurfaceState = iota
	ShellSurfaceToplevel
	ShellSurfaceTransient
	ShellSurfaceFullscreen
	ShellSurfacePopup
	ShellSurfaceMaximized
)

func (s ShellSurfaceState) String() string {
	switch s {
	case ShellSurfaceNone:
		return "none"
	case ShellSurfaceToplevel:
		return "toplevel"
	case ShellSurfaceTransient:
		return "transient"
	case ShellSurfaceFullscreen:
		return "fullscreen"
	case ShellSurfacePopup:
		return "popup"
	case ShellSurfaceMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// ShellSurface is a window.
type ShellSurface struct {
	shell   *Shell
	obj     *wl.ShellSurface
	surface *Surface

	state  ShellSurfaceState
	title  string
	class  string
	parent *Surface
	flags  uint32

	pingSerial  uint32
	pingPending bool
}

// Surface returns the surface that the window displays, or nil once
// the surface has been destroyed.
func (ss *ShellSurface) Surface() *Surface {
	return ss.surface
}

func (ss *ShellSurface) State() ShellSurfaceState {
	return ss.state
}

func (ss *ShellSurface) Title() string {
	return ss.title
}

func (ss *ShellSurface) Class() string {
	return ss.class
}

// Parent returns the parent of a transient or popup window.
func (ss *ShellSurface) Parent() *Surface {
	return ss.parent
}

// Flags returns the transient or popup flags of the window.
func (ss *ShellSurface) Flags() uint32 {
	return ss.flags
}

// Ping asks the client to respond to check that it is still alive.
func (ss *ShellSurface) Ping() {
	ss.pingSerial = ss.shell.c.server.NextSerial()
	ss.pingPending = true
	ss.obj.Ping(ss.pingSerial)
}

// Responsive reports whether the client has answered the last ping.
func (ss *ShellSurface) Responsive() bool {
	return !ss.pingPending
}

// Configure suggests a new size for the window. edges tells the client
// which edges are being dragged, if any.
func (ss *ShellSurface) Configure(edges uint32, size image.Point) {
	ss.obj.Configure(edges, int32(size.X), int32(size.Y))
}

// PopupDone tells the client that its popup has been dismissed.
func (ss *ShellSurface) PopupDone() {
	ss.obj.PopupDone()
}

func (ss *ShellSurface) lookupSurface(obj *wl.Surface) *Surface {
	if obj == nil {
		return nil
	}
	return ss.shell.c.SurfaceByID(obj.Client(), obj.ID())
}

func (ss *ShellSurface) setRelative(parent *wl.Surface, x, y int32, flags uint32) {
	ss.parent = ss.lookupSurface(parent)
	ss.flags = flags
	if (ss.parent != nil) && (ss.surface != nil) {
		ss.surface.SetPos(ss.parent.Pos().Add(image.Pt(int(x), int(y))))
	}
}

func (ss *ShellSurface) fillOutput() {
	rect := ss.shell.c.output.Geometry().Rect
	if ss.surface != nil {
		ss.surface.SetPos(rect.Min)
	}
	ss.Configure(0, rect.Size())
}

type shellSurfaceListener ShellSurface

func (lis *shellSurfaceListener) Pong(serial uint32) {
	if serial == lis.pingSerial {
		lis.pingPending = false
	}
}

func (lis *shellSurfaceListener) Move(seat *wl.Seat, serial uint32) {
	if lis.shell.Move != nil {
		lis.shell.Move((*ShellSurface)(lis))
	}
}

func (lis *shellSurfaceListener) Resize(seat *wl.Seat, serial, edges uint32) {
	if lis.shell.Resize != nil {
		lis.shell.Resize((*ShellSurface)(lis), edges)
	}
}

func (lis *shellSurfaceListener) SetToplevel() {
	lis.state = ShellSurfaceToplevel
	lis.parent = nil
}

func (lis *shellSurfaceListener) SetTransient(parent *wl.Surface, x, y int32, flags uint32) {
	lis.state = ShellSurfaceTransient
	(*ShellSurface)(lis).setRelative(parent, x, y, flags)
}

func (lis *shellSurfaceListener) SetFullscreen(method, framerate uint32, output *wl.Output) {
	debug.Debug("fullscreen", "method", method, "framerate", framerate)
	lis.state = ShellSurfaceFullscreen
	(*ShellSurface)(lis).fillOutput()
}

func (lis *shellSurfaceListener) SetPopup(seat *wl.Seat, serial uint32, parent *wl.Surface, x, y int32, flags uint32) {
	lis.state = ShellSurfacePopup
	(*ShellSurface)(lis).setRelative(parent, x, y, flags)
}

func (lis *shellSurfaceListener) SetMaximized(output *wl.Output) {
	lis.state = ShellSurfaceMaximized
	(*ShellSurface)(lis).fillOutput()
}

func (lis *shellSurfaceListener) SetTitle(title string) {
	lis.title = title
}

func (lis *shellSurfaceListener) SetClass(class string) {
	lis.class = class
}
