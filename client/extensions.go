package wl

import (
	"math"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// TouchPoint holds the arguments of a wl_touch_extension.touch event.
// Positions, sizes and velocities are in units of 1/10000. The upper
// 16 bits of State hold the number of points in the event.
type TouchPoint struct {
	Time                     uint32
	ID                       uint32
	State                    uint32
	X, Y                     int32
	NormalizedX, NormalizedY int32
	Width, Height            int32
	Pressure                 uint32
	VelocityX, VelocityY     int32
	Flags                    uint32
	RawPositions             []float32
}

// TouchExtension is the wl_touch_extension global.
type TouchExtension struct {
	Touch     func(tp TouchPoint)
	Configure func(flags uint32)

	proxy
}

// BindTouchExtension binds the touch extension global g.
func BindTouchExtension(r *Registry, g Global) *TouchExtension {
	var ext TouchExtension
	ext.display = r.display
	r.Bind(g, protocol.TouchExtensionVersion, &ext)
	return &ext
}

func (ext *TouchExtension) Interface() string {
	return protocol.TouchExtensionInterface
}

func (ext *TouchExtension) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.TouchExtensionEventTouch:
		tp := TouchPoint{
			Time:        msg.ReadUint(),
			ID:          msg.ReadUint(),
			State:       msg.ReadUint(),
			X:           msg.ReadInt(),
			Y:           msg.ReadInt(),
			NormalizedX: msg.ReadInt(),
			NormalizedY: msg.ReadInt(),
			Width:       msg.ReadInt(),
			Height:      msg.ReadInt(),
			Pressure:    msg.ReadUint(),
			VelocityX:   msg.ReadInt(),
			VelocityY:   msg.ReadInt(),
			Flags:       msg.ReadUint(),
		}
		raw := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}

		for _, v := range wire.Uints(raw) {
			tp.RawPositions = append(tp.RawPositions, math.Float32frombits(v))
		}
		if ext.Touch != nil {
			ext.Touch(tp)
		}
		return nil

	case protocol.TouchExtensionEventConfigure:
		flags := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if ext.Configure != nil {
			ext.Configure(flags)
		}
		return nil

	default:
		return unknownEvent(ext, msg.Op())
	}
}

// OutputExtension is the wl_output_extension global.
type OutputExtension struct {
	proxy
}

// BindOutputExtension binds the output extension global g.
func BindOutputExtension(r *Registry, g Global) *OutputExtension {
	var ext OutputExtension
	ext.display = r.display
	r.Bind(g, protocol.OutputExtensionVersion, &ext)
	return &ext
}

func (ext *OutputExtension) Interface() string {
	return protocol.OutputExtensionInterface
}

func (ext *OutputExtension) Dispatch(msg *wire.MessageBuffer) error {
	return unknownEvent(ext, msg.Op())
}

// GetExtendedOutput returns an object that reports the rotation of
// output.
func (ext *OutputExtension) GetExtendedOutput(output *Output) *ExtendedOutput {
	var eo ExtendedOutput
	eo.display = ext.display
	ext.display.add(&eo)

	msg := wire.NewMessage(ext, protocol.OutputExtensionRequestGetExtendedOutput)
	msg.WriteUint(eo.id)
	msg.WriteObject(output)
	ext.enqueue(msg)

	return &eo
}

// ExtendedOutput is a wl_extended_output.
type ExtendedOutput struct {
	SetScreenRotation func(rotation int32)

	proxy
	rotation int32
}

func (eo *ExtendedOutput) Interface() string {
	return protocol.ExtendedOutputInterface
}

func (eo *ExtendedOutput) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ExtendedOutputEventSetScreenRotation:
		rotation := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		eo.rotation = rotation
		if eo.SetScreenRotation != nil {
			eo.SetScreenRotation(rotation)
		}
		return nil

	default:
		return unknownEvent(eo, msg.Op())
	}
}

// Rotation returns the last rotation that the server sent. Zero means
// that none has been sent.
func (eo *ExtendedOutput) Rotation() int32 {
	return eo.rotation
}
