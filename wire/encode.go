package wire

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"deedles.dev/wlcomp/internal/bin"
	"golang.org/x/sys/unix"
)

// MessageBuilder is a message that is under construction.
type MessageBuilder struct {
	// Args is the set of arguments written so far. It is included
	// purely for debugging purposes.
	Args []any

	sender Object
	op     uint16
	event  bool
	data   bytes.Buffer
	fds    []int
	err    error
}

// NewMessage starts a request from sender with the given opcode.
func NewMessage(sender Object, op uint16) *MessageBuilder {
	return &MessageBuilder{
		sender: sender,
		op:     op,
	}
}

// NewEvent starts an event from sender with the given opcode. The only
// difference from NewMessage is in how the message is printed for
// debugging.
func NewEvent(sender Object, op uint16) *MessageBuilder {
	mb := NewMessage(sender, op)
	mb.event = true
	return mb
}

func (mb *MessageBuilder) Sender() Object {
	return mb.sender
}

func (mb *MessageBuilder) Op() uint16 {
	return mb.op
}

func (mb *MessageBuilder) WriteInt(v int32) {
	if mb.err != nil {
		return
	}

	bin.Write(&mb.data, v)
	mb.Args = append(mb.Args, v)
}

func (mb *MessageBuilder) WriteUint(v uint32) {
	if mb.err != nil {
		return
	}

	bin.Write(&mb.data, v)
	mb.Args = append(mb.Args, v)
}

// WriteObject writes the ID of v, or zero if v is nil.
func (mb *MessageBuilder) WriteObject(v Object) {
	var id uint32
	if !isNil(v) {
		id = v.ID()
	}
	mb.WriteUint(id)
}

func (mb *MessageBuilder) WriteNewID(v NewID) {
	if mb.err != nil {
		return
	}

	mb.WriteString(v.Interface)
	mb.WriteUint(v.Version)
	mb.WriteUint(v.ID)
}

func (mb *MessageBuilder) WriteFixed(v Fixed) {
	if mb.err != nil {
		return
	}

	bin.Write(&mb.data, v)
	mb.Args = append(mb.Args, v)
}

func (mb *MessageBuilder) WriteString(v string) {
	if mb.err != nil {
		return
	}

	length := uint32(len(v) + 1)
	bin.Write(&mb.data, length)
	mb.data.WriteString(v)
	mb.data.WriteByte(0)
	for i := uint32(0); i < padding(length); i++ {
		mb.data.WriteByte(0)
	}
	mb.Args = append(mb.Args, v)
}

func (mb *MessageBuilder) WriteArray(v []byte) {
	if mb.err != nil {
		return
	}

	length := uint32(len(v))
	bin.Write(&mb.data, length)
	mb.data.Write(v)
	for i := uint32(0); i < padding(length); i++ {
		mb.data.WriteByte(0)
	}
	mb.Args = append(mb.Args, v)
}

// WriteFile duplicates the descriptor of v and attaches the duplicate
// to the message. The caller keeps ownership of v.
func (mb *MessageBuilder) WriteFile(v *os.File) {
	if mb.err != nil {
		return
	}

	fd, err := unix.Dup(int(v.Fd()))
	if err != nil {
		mb.err = err
		return
	}

	mb.fds = append(mb.fds, fd)
	mb.Args = append(mb.Args, v)
}

// Bytes returns the encoded message, header included.
func (mb *MessageBuilder) Bytes() ([]byte, error) {
	if mb.err != nil {
		return nil, mb.err
	}

	length := uint32(8 + mb.data.Len())
	if length > 0xFFFF {
		return nil, fmt.Errorf("message too large: %v bytes", length)
	}

	msg := bytes.NewBuffer(make([]byte, 0, length))
	bin.Write(msg, mb.sender.ID())
	bin.Write(msg, (length<<16)|uint32(mb.op))
	msg.Write(mb.data.Bytes())
	return msg.Bytes(), nil
}

// Build builds the message and sends it to c. The MessageBuilder
// should not be used again after this method is called.
func (mb *MessageBuilder) Build(c *Conn) error {
	defer mb.close()

	data, err := mb.Bytes()
	if err != nil {
		return err
	}

	oob := unix.UnixRights(mb.fds...)
	if len(mb.fds) == 0 {
		oob = nil
	}

	_, _, err = c.conn.WriteMsgUnix(data, oob, nil)
	return err
}

// Discard closes the file descriptors of a message that will not be
// sent.
func (mb *MessageBuilder) Discard() {
	mb.close()
}

func (mb *MessageBuilder) close() {
	errs := make([]error, 0, len(mb.fds))
	for _, fd := range mb.fds {
		errs = append(errs, unix.Close(fd))
	}
	if mb.err == nil {
		mb.err = errors.Join(errs...)
	}
	mb.fds = nil
}

func (mb *MessageBuilder) String() string {
	return " -> " + formatCall(mb.sender, methodName(mb.sender.Interface(), mb.op, mb.event), mb.Args)
}

func isNil(v any) bool {
	return (v == nil) || ((*[2]uintptr)(unsafe.Pointer(&v))[1] == 0)
}
