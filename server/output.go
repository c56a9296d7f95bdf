package wl

import (
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

type Output struct {
	object
}

func BindOutput(client *Client, version, id uint32) (*Output, error) {
	o := Output{object: newObject(client, version)}
	return &o, client.Add(&o, id)
}

func (o *Output) Interface() string {
	return protocol.OutputInterface
}

func (o *Output) Dispatch(msg *wire.MessageBuffer) error {
	return unknownOp(o, msg.Op())
}

func (o *Output) Geometry(x, y, physicalWidth, physicalHeight, subpixel int32, manufacturer, model string, transform int32) {
	msg := wire.NewEvent(o, protocol.OutputEventGeometry)
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(physicalWidth)
	msg.WriteInt(physicalHeight)
	msg.WriteInt(subpixel)
	msg.WriteString(manufacturer)
	msg.WriteString(model)
	msg.WriteInt(transform)
	o.enqueue(msg)
}

func (o *Output) Mode(flags uint32, width, height, refresh int32) {
	msg := wire.NewEvent(o, protocol.OutputEventMode)
	msg.WriteUint(flags)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(refresh)
	o.enqueue(msg)
}
