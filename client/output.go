package wl

import (
	"image"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// OutputGeometry is the content of a wl_output.geometry event.
type OutputGeometry struct {
	Pos          image.Point
	PhysicalSize image.Point
	Subpixel     int32
	Make, Model  string
	Transform    int32
}

// OutputMode is the content of a wl_output.mode event.
type OutputMode struct {
	Flags   uint32
	Size    image.Point
	Refresh int32
}

// Output is a wl_output. The last geometry and mode that the server
// sent are remembered.
type Output struct {
	Geometry func(g OutputGeometry)
	Mode     func(m OutputMode)

	proxy
	geometry OutputGeometry
	mode     OutputMode
}

// BindOutput binds the output global g.
func BindOutput(r *Registry, g Global) *Output {
	var out Output
	out.display = r.display
	r.Bind(g, protocol.OutputVersion, &out)
	return &out
}

func (out *Output) Interface() string {
	return protocol.OutputInterface
}

func (out *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.OutputEventGeometry:
		var g OutputGeometry
		g.Pos.X = int(msg.ReadInt())
		g.Pos.Y = int(msg.ReadInt())
		g.PhysicalSize.X = int(msg.ReadInt())
		g.PhysicalSize.Y = int(msg.ReadInt())
		g.Subpixel = msg.ReadInt()
		g.Make = msg.ReadString()
		g.Model = msg.ReadString()
		g.Transform = msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		out.geometry = g
		if out.Geometry != nil {
			out.Geometry(g)
		}
		return nil

	case protocol.OutputEventMode:
		var m OutputMode
		m.Flags = msg.ReadUint()
		m.Size.X = int(msg.ReadInt())
		m.Size.Y = int(msg.ReadInt())
		m.Refresh = msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if m.Flags&protocol.OutputModeCurrent != 0 {
			out.mode = m
		}
		if out.Mode != nil {
			out.Mode(m)
		}
		return nil

	default:
		return unknownEvent(out, msg.Op())
	}
}

func (out *Output) CurrentGeometry() OutputGeometry {
	return out.geometry
}

// CurrentMode returns the last mode that was flagged as current.
func (out *Output) CurrentMode() OutputMode {
	return out.mode
}

// Rect returns the area of the output in compositor coordinates.
func (out *Output) Rect() image.Rectangle {
	return image.Rectangle{Min: out.geometry.Pos, Max: out.geometry.Pos.Add(out.mode.Size)}
}
