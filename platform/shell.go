package platform

import (
	"image"

	wl "deedles.dev/wlcomp/client"
	"deedles.dev/wlcomp/protocol"
)

// ShellSurface is the wl_shell_surface of a window.
type ShellSurface struct {
	ss *wl.ShellSurface
	w  Window
}

func newShellSurface(ss *wl.ShellSurface, w Window) *ShellSurface {
	shell := ShellSurface{ss: ss, w: w}
	ss.Configure = shell.configure
	ss.PopupDone = func() {}
	return &shell
}

func (shell *ShellSurface) configure(edges uint32, width, height int32) {
	shell.w.Configure(edges, image.Pt(int(width), int(height)))
}

// Object returns the underlying wl_shell_surface.
func (shell *ShellSurface) Object() *wl.ShellSurface {
	return shell.ss
}

func (shell *ShellSurface) Window() Window {
	return shell.w
}

func (shell *ShellSurface) SetToplevel() {
	shell.ss.SetToplevel()
}

func (shell *ShellSurface) SetTitle(title string) {
	shell.ss.SetTitle(title)
}

func (shell *ShellSurface) SetClass(class string) {
	shell.ss.SetClass(class)
}

// SetTransient places the window relative to parent.
func (shell *ShellSurface) SetTransient(parent Window, offset image.Point) {
	shell.ss.SetTransient(parent.Surface(), int32(offset.X), int32(offset.Y), 0)
}

// SetFullscreen makes the window fullscreen on screen, or on a screen
// of the compositor's choice if screen is nil.
func (shell *ShellSurface) SetFullscreen(screen *Screen) {
	shell.ss.SetFullscreen(protocol.ShellSurfaceFullscreenMethodDefault, 0, screen.Output())
}

func (shell *ShellSurface) SetMaximized(screen *Screen) {
	shell.ss.SetMaximized(screen.Output())
}

// Move starts an interactive move driven by dev.
func (shell *ShellSurface) Move(dev *InputDevice) {
	shell.ss.Move(dev.Seat(), dev.Serial())
}

// Resize starts an interactive resize of the given edges driven by
// dev.
func (shell *ShellSurface) Resize(dev *InputDevice, edges uint32) {
	shell.ss.Resize(dev.Seat(), dev.Serial(), edges)
}
