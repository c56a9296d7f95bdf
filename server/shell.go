package wl

import (
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

type ShellListener interface {
	GetShellSurface(ss *ShellSurface, s *Surface)
}

type Shell struct {
	object
	Listener ShellListener
}

func BindShell(client *Client, version, id uint32) (*Shell, error) {
	s := Shell{object: newObject(client, version)}
	return &s, client.Add(&s, id)
}

func (s *Shell) Interface() string {
	return protocol.ShellInterface
}

func (s *Shell) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ShellRequestGetShellSurface:
		id := msg.ReadUint()
		sid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		surface, err := lookup[*Surface](s.client, sid)
		if err != nil {
			return err
		}
		if surface == nil {
			return wire.Errorf(s.id, wire.ErrorInvalidObject, "get_shell_surface with null surface")
		}

		ss, err := newChild(s.client, id, &ShellSurface{object: newObject(s.client, s.version)})
		if err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.GetShellSurface(ss, surface)
		}
		return nil

	default:
		return unknownOp(s, msg.Op())
	}
}

type ShellSurfaceListener interface {
	Pong(serial uint32)
	Move(seat *Seat, serial uint32)
	Resize(seat *Seat, serial, edges uint32)
	SetToplevel()
	SetTransient(parent *Surface, x, y int32, flags uint32)
	SetFullscreen(method, framerate uint32, output *Output)
	SetPopup(seat *Seat, serial uint32, parent *Surface, x, y int32, flags uint32)
	SetMaximized(output *Output)
	SetTitle(title string)
	SetClass(class string)
}

type ShellSurface struct {
	object
	Listener ShellSurfaceListener
}

func (ss *ShellSurface) Interface() string {
	return protocol.ShellSurfaceInterface
}

func (ss *ShellSurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ShellSurfaceRequestPong:
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.Pong(serial)
		}
		return nil

	case protocol.ShellSurfaceRequestMove:
		seatID := msg.ReadObject()
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		seat, err := lookup[*Seat](ss.client, seatID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.Move(seat, serial)
		}
		return nil

	case protocol.ShellSurfaceRequestResize:
		seatID := msg.ReadObject()
		serial := msg.ReadUint()
		edges := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		seat, err := lookup[*Seat](ss.client, seatID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.Resize(seat, serial, edges)
		}
		return nil

	case protocol.ShellSurfaceRequestSetToplevel:
		if ss.Listener != nil {
			ss.Listener.SetToplevel()
		}
		return nil

	case protocol.ShellSurfaceRequestSetTransient:
		parentID := msg.ReadObject()
		x := msg.ReadInt()
		y := msg.ReadInt()
		flags := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		parent, err := lookup[*Surface](ss.client, parentID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetTransient(parent, x, y, flags)
		}
		return nil

	case protocol.ShellSurfaceRequestSetFullscreen:
		method := msg.ReadUint()
		framerate := msg.ReadUint()
		outputID := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		output, err := lookup[*Output](ss.client, outputID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetFullscreen(method, framerate, output)
		}
		return nil

	case protocol.ShellSurfaceRequestSetPopup:
		seatID := msg.ReadObject()
		serial := msg.ReadUint()
		parentID := msg.ReadObject()
		x := msg.ReadInt()
		y := msg.ReadInt()
		flags := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		seat, err := lookup[*Seat](ss.client, seatID)
		if err != nil {
			return err
		}
		parent, err := lookup[*Surface](ss.client, parentID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetPopup(seat, serial, parent, x, y, flags)
		}
		return nil

	case protocol.ShellSurfaceRequestSetMaximized:
		outputID := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		output, err := lookup[*Output](ss.client, outputID)
		if err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetMaximized(output)
		}
		return nil

	case protocol.ShellSurfaceRequestSetTitle:
		title := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetTitle(title)
		}
		return nil

	case protocol.ShellSurfaceRequestSetClass:
		class := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetClass(class)
		}
		return nil

	default:
		return unknownOp(ss, msg.Op())
	}
}

func (ss *ShellSurface) Ping(serial uint32) {
	msg := wire.NewEvent(ss, protocol.ShellSurfaceEventPing)
	msg.WriteUint(serial)
	ss.enqueue(msg)
}

func (ss *ShellSurface) Configure(edges uint32, width, height int32) {
	msg := wire.NewEvent(ss, protocol.ShellSurfaceEventConfigure)
	msg.WriteUint(edges)
	msg.WriteInt(width)
	msg.WriteInt(height)
	ss.enqueue(msg)
}

func (ss *ShellSurface) PopupDone() {
	ss.enqueue(wire.NewEvent(ss, protocol.ShellSurfaceEventPopupDone))
}
