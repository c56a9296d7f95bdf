package wl

import (
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Shell is the wl_shell global.
type Shell struct {
	proxy
}

// BindShell binds the shell global g.
func BindShell(r *Registry, g Global) *Shell {
	var shell Shell
	shell.display = r.display
	r.Bind(g, protocol.ShellVersion, &shell)
	return &shell
}

func (shell *Shell) Interface() string {
	return protocol.ShellInterface
}

func (shell *Shell) Dispatch(msg *wire.MessageBuffer) error {
	return unknownEvent(shell, msg.Op())
}

// GetShellSurface turns s into a window.
func (shell *Shell) GetShellSurface(s *Surface) *ShellSurface {
	var ss ShellSurface
	ss.display = shell.display
	shell.display.add(&ss)

	msg := wire.NewMessage(shell, protocol.ShellRequestGetShellSurface)
	msg.WriteUint(ss.id)
	msg.WriteObject(s)
	shell.enqueue(msg)

	return &ss
}

// ShellSurface is a wl_shell_surface. Pings are answered
// automatically.
type ShellSurface struct {
	Ping      func(serial uint32)
	Configure func(edges uint32, width, height int32)
	PopupDone func()

	proxy
}

func (ss *ShellSurface) Interface() string {
	return protocol.ShellSurfaceInterface
}

func (ss *ShellSurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ShellSurfaceEventPing:
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		ss.Pong(serial)
		if ss.Ping != nil {
			ss.Ping(serial)
		}
		return nil

	case protocol.ShellSurfaceEventConfigure:
		edges := msg.ReadUint()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if ss.Configure != nil {
			ss.Configure(edges, width, height)
		}
		return nil

	case protocol.ShellSurfaceEventPopupDone:
		if ss.PopupDone != nil {
			ss.PopupDone()
		}
		return nil

	default:
		return unknownEvent(ss, msg.Op())
	}
}

func (ss *ShellSurface) Pong(serial uint32) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestPong)
	msg.WriteUint(serial)
	ss.enqueue(msg)
}

// Move starts an interactive move in response to the input event
// with the given serial.
func (ss *ShellSurface) Move(seat *Seat, serial uint32) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestMove)
	msg.WriteObject(seat)
	msg.WriteUint(serial)
	ss.enqueue(msg)
}

func (ss *ShellSurface) Resize(seat *Seat, serial, edges uint32) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestResize)
	msg.WriteObject(seat)
	msg.WriteUint(serial)
	msg.WriteUint(edges)
	ss.enqueue(msg)
}

func (ss *ShellSurface) SetToplevel() {
	ss.enqueue(wire.NewMessage(ss, protocol.ShellSurfaceRequestSetToplevel))
}

// SetTransient positions the window relative to parent.
func (ss *ShellSurface) SetTransient(parent *Surface, x, y int32, flags uint32) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestSetTransient)
	msg.WriteObject(parent)
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteUint(flags)
	ss.enqueue(msg)
}

// SetFullscreen asks for the window to cover output. A nil output
// leaves the choice to the compositor.
func (ss *ShellSurface) SetFullscreen(method, framerate uint32, output *Output) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestSetFullscreen)
	msg.WriteUint(method)
	msg.WriteUint(framerate)
	msg.WriteObject(output)
	ss.enqueue(msg)
}

func (ss *ShellSurface) SetMaximized(output *Output) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestSetMaximized)
	msg.WriteObject(output)
	ss.enqueue(msg)
}

func (ss *ShellSurface) SetTitle(title string) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestSetTitle)
	msg.WriteString(title)
	ss.enqueue(msg)
}

func (ss *ShellSurface) SetClass(class string) {
	msg := wire.NewMessage(ss, protocol.ShellSurfaceRequestSetClass)
	msg.WriteString(class)
	ss.enqueue(msg)
}
