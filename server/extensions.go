package wl

import (
	"math"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

type SurfaceExtensionListener interface {
	GetExtendedSurface(es *ExtendedSurface, s *Surface)
}

type SurfaceExtension struct {
	object
	Listener SurfaceExtensionListener
}

func BindSurfaceExtension(client *Client, version, id uint32) (*SurfaceExtension, error) {
	e := SurfaceExtension{object: newObject(client, version)}
	return &e, client.Add(&e, id)
}

func (e *SurfaceExtension) Interface() string {
	return protocol.SurfaceExtensionInterface
}

func (e *SurfaceExtension) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.SurfaceExtensionRequestGetExtendedSurface:
		id := msg.ReadUint()
		sid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		surface, err := lookup[*Surface](e.client, sid)
		if err != nil {
			return err
		}
		if surface == nil {
			return wire.Errorf(e.id, wire.ErrorInvalidObject, "get_extended_surface with null surface")
		}

		es, err := newChild(e.client, id, &ExtendedSurface{object: newObject(e.client, e.version)})
		if err != nil {
			return err
		}
		if e.Listener != nil {
			e.Listener.GetExtendedSurface(es, surface)
		}
		return nil

	default:
		return unknownOp(e, msg.Op())
	}
}

type ExtendedSurfaceListener interface {
	UpdateGenericProperty(name string, value []byte)
	SetContentOrientation(orientation int32)
	SetWindowFlags(flags int32)
}

type ExtendedSurface struct {
	object
	Listener ExtendedSurfaceListener
}

func (es *ExtendedSurface) Interface() string {
	return protocol.ExtendedSurfaceInterface
}

func (es *ExtendedSurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ExtendedSurfaceRequestUpdateGenericProperty:
		name := msg.ReadString()
		value := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		if es.Listener != nil {
			es.Listener.UpdateGenericProperty(name, value)
		}
		return nil

	case protocol.ExtendedSurfaceRequestSetContentOrientation:
		orientation := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if es.Listener != nil {
			es.Listener.SetContentOrientation(orientation)
		}
		return nil

	case protocol.ExtendedSurfaceRequestSetWindowFlags:
		flags := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if es.Listener != nil {
			es.Listener.SetWindowFlags(flags)
		}
		return nil

	default:
		return unknownOp(es, msg.Op())
	}
}

func (es *ExtendedSurface) OnscreenVisibility(visible int32) {
	msg := wire.NewEvent(es, protocol.ExtendedSurfaceEventOnscreenVisibility)
	msg.WriteInt(visible)
	es.enqueue(msg)
}

func (es *ExtendedSurface) SetGenericProperty(name string, value []byte) {
	msg := wire.NewEvent(es, protocol.ExtendedSurfaceEventSetGenericProperty)
	msg.WriteString(name)
	msg.WriteArray(value)
	es.enqueue(msg)
}

func (es *ExtendedSurface) Close() {
	es.enqueue(wire.NewEvent(es, protocol.ExtendedSurfaceEventClose))
}

type SubSurfaceExtensionListener interface {
	GetSubSurfaceAwareSurface(ss *SubSurface, s *Surface)
}

type SubSurfaceExtension struct {
	object
	Listener SubSurfaceExtensionListener
}

func BindSubSurfaceExtension(client *Client, version, id uint32) (*SubSurfaceExtension, error) {
	e := SubSurfaceExtension{object: newObject(client, version)}
	return &e, client.Add(&e, id)
}

func (e *SubSurfaceExtension) Interface() string {
	return protocol.SubSurfaceExtensionInterface
}

func (e *SubSurfaceExtension) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.SubSurfaceExtensionRequestGetSubSurfaceAwareSurface:
		id := msg.ReadUint()
		sid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		surface, err := lookup[*Surface](e.client, sid)
		if err != nil {
			return err
		}
		if surface == nil {
			return wire.Errorf(e.id, wire.ErrorInvalidObject, "get_sub_surface_aware_surface with null surface")
		}

		ss, err := newChild(e.client, id, &SubSurface{object: newObject(e.client, e.version)})
		if err != nil {
			return err
		}
		if e.Listener != nil {
			e.Listener.GetSubSurfaceAwareSurface(ss, surface)
		}
		return nil

	default:
		return unknownOp(e, msg.Op())
	}
}

type SubSurfaceListener interface {
	AttachSubSurface(sub *Surface, x, y int32)
	MoveSubSurface(sub *Surface, x, y int32)
	Raise(sub *Surface)
	Lower(sub *Surface)
}

type SubSurface struct {
	object
	Listener SubSurfaceListener
}

func (ss *SubSurface) Interface() string {
	return protocol.SubSurfaceInterface
}

func (ss *SubSurface) Dispatch(msg *wire.MessageBuffer) error {
	op := msg.Op()
	switch op {
	case protocol.SubSurfaceRequestAttachSubSurface, protocol.SubSurfaceRequestMoveSubSurface:
		sid := msg.ReadObject()
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		sub, err := ss.subSurface(sid)
		if (err != nil) || (ss.Listener == nil) {
			return err
		}
		if op == protocol.SubSurfaceRequestAttachSubSurface {
			ss.Listener.AttachSubSurface(sub, x, y)
			return nil
		}
		ss.Listener.MoveSubSurface(sub, x, y)
		return nil

	case protocol.SubSurfaceRequestRaise, protocol.SubSurfaceRequestLower:
		sid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		sub, err := ss.subSurface(sid)
		if (err != nil) || (ss.Listener == nil) {
			return err
		}
		if op == protocol.SubSurfaceRequestRaise {
			ss.Listener.Raise(sub)
			return nil
		}
		ss.Listener.Lower(sub)
		return nil

	default:
		return unknownOp(ss, op)
	}
}

func (ss *SubSurface) subSurface(id uint32) (*Surface, error) {
	sub, err := lookup[*Surface](ss.client, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, wire.Errorf(ss.id, wire.ErrorInvalidObject, "null sub-surface")
	}
	return sub, nil
}

type OutputExtensionListener interface {
	GetExtendedOutput(eo *ExtendedOutput, o *Output)
}

type OutputExtension struct {
	object
	Listener OutputExtensionListener
}

func BindOutputExtension(client *Client, version, id uint32) (*OutputExtension, error) {
	e := OutputExtension{object: newObject(client, version)}
	return &e, client.Add(&e, id)
}

func (e *OutputExtension) Interface() string {
	return protocol.OutputExtensionInterface
}

func (e *OutputExtension) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.OutputExtensionRequestGetExtendedOutput:
		id := msg.ReadUint()
		oid := msg.ReadObject()
		if err := msg.Err(); err != nil {
			return err
		}

		output, err := lookup[*Output](e.client, oid)
		if err != nil {
			return err
		}
		if output == nil {
			return wire.Errorf(e.id, wire.ErrorInvalidObject, "get_extended_output with null output")
		}

		eo, err := newChild(e.client, id, &ExtendedOutput{object: newObject(e.client, e.version)})
		if err != nil {
			return err
		}
		if e.Listener != nil {
			e.Listener.GetExtendedOutput(eo, output)
		}
		return nil

	default:
		return unknownOp(e, msg.Op())
	}
}

type ExtendedOutput struct {
	object
}

func (eo *ExtendedOutput) Interface() string {
	return protocol.ExtendedOutputInterface
}

func (eo *ExtendedOutput) Dispatch(msg *wire.MessageBuffer) error {
	return unknownOp(eo, msg.Op())
}

func (eo *ExtendedOutput) SetScreenRotation(rotation int32) {
	msg := wire.NewEvent(eo, protocol.ExtendedOutputEventSetScreenRotation)
	msg.WriteInt(rotation)
	eo.enqueue(msg)
}

// TouchExtension is a binding of the touch extension, which carries
// richer touch points than wl_touch.
type TouchExtension struct {
	object
}

func BindTouchExtension(client *Client, version, id uint32) (*TouchExtension, error) {
	e := TouchExtension{object: newObject(client, version)}
	return &e, client.Add(&e, id)
}

func (e *TouchExtension) Interface() string {
	return protocol.TouchExtensionInterface
}

func (e *TouchExtension) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.TouchExtensionRequestDummy:
		return nil

	default:
		return unknownOp(e, msg.Op())
	}
}

// TouchPoint holds the arguments of a touch extension touch event.
// Positions, sizes and velocities are in units of 1/10000.
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

func (e *TouchExtension) Touch(tp TouchPoint) {
	raw := make([]byte, 0, len(tp.RawPositions)*4)
	for _, v := range tp.RawPositions {
		raw = wire.AppendUint(raw, math.Float32bits(v))
	}

	msg := wire.NewEvent(e, protocol.TouchExtensionEventTouch)
	msg.WriteUint(tp.Time)
	msg.WriteUint(tp.ID)
	msg.WriteUint(tp.State)
	msg.WriteInt(tp.X)
	msg.WriteInt(tp.Y)
	msg.WriteInt(tp.NormalizedX)
	msg.WriteInt(tp.NormalizedY)
	msg.WriteInt(tp.Width)
	msg.WriteInt(tp.Height)
	msg.WriteUint(tp.Pressure)
	msg.WriteInt(tp.VelocityX)
	msg.WriteInt(tp.VelocityY)
	msg.WriteUint(tp.Flags)
	msg.WriteArray(raw)
	e.enqueue(msg)
}

func (e *TouchExtension) Configure(flags uint32) {
	msg := wire.NewEvent(e, protocol.TouchExtensionEventConfigure)
	msg.WriteUint(flags)
	e.enqueue(msg)
}

type WindowManagerListener interface {
	MapClientToProcess(pid uint32)
	AuthenticateWithToken(token string)
}

type WindowManager struct {
	object
	Listener WindowManagerListener
}

func BindWindowManager(client *Client, version, id uint32) (*WindowManager, error) {
	wm := WindowManager{object: newObject(client, version)}
	return &wm, client.Add(&wm, id)
}

func (wm *WindowManager) Interface() string {
	return protocol.WindowmanagerInterface
}

func (wm *WindowManager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.WindowmanagerRequestMapClientToProcess:
		pid := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if wm.Listener != nil {
			wm.Listener.MapClientToProcess(pid)
		}
		return nil

	case protocol.WindowmanagerRequestAuthenticateWithToken:
		token := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if wm.Listener != nil {
			wm.Listener.AuthenticateWithToken(token)
		}
		return nil

	default:
		return unknownOp(wm, msg.Op())
	}
}

func (wm *WindowManager) Hints(showIsFullscreen int32) {
	msg := wire.NewEvent(wm, protocol.WindowmanagerEventHints)
	msg.WriteInt(showIsFullscreen)
	wm.enqueue(msg)
}
