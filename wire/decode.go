package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"deedles.dev/wlcomp/internal/bin"
	"golang.org/x/sys/unix"
)

// MessageBuffer holds message data that has been read from the socket
// but not yet decoded.
type MessageBuffer struct {
	sender  uint32
	op      uint16
	size    uint16
	data    bytes.Reader
	conn    *Conn
	fds     []int
	fdindex int
	err     error
	args    []any
}

// ReadMessage reads message data from the socket into a buffer.
func ReadMessage(c *Conn) (*MessageBuffer, error) {
	var oob []byte
	r := unixTee{c: c.conn, oob: &oob}

	var header [8]byte
	_, err := io.ReadFull(r, header[:])
	if err != nil {
		return nil, fmt.Errorf("read message header: %w", err)
	}

	size := uint16(bin.Value[uint32]([4]byte(header[4:])) >> 16)
	if size < 8 {
		return nil, fmt.Errorf("invalid message size: %v", size)
	}

	data := make([]byte, size)
	copy(data, header[:])
	_, err = io.ReadFull(r, data[8:])
	if err != nil {
		return nil, fmt.Errorf("read message body: %w", err)
	}

	err = c.readFDs(oob)
	if err != nil {
		return nil, err
	}

	msg, err := ParseMessage(data, nil)
	if err != nil {
		return nil, err
	}
	msg.conn = c
	return msg, nil
}

// ParseMessage decodes the header of a single complete message in
// data. Ownership of fds is transferred to the returned buffer.
func ParseMessage(data []byte, fds []int) (*MessageBuffer, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("message too short: %v bytes", len(data))
	}

	var mr MessageBuffer
	mr.sender = bin.Value[uint32]([4]byte(data[0:4]))
	so := bin.Value[uint32]([4]byte(data[4:8]))
	mr.size = uint16(so >> 16)
	mr.op = uint16(so & 0xFFFF)
	if int(mr.size) != len(data) {
		return nil, fmt.Errorf("message size mismatch: header says %v, got %v", mr.size, len(data))
	}

	mr.data.Reset(data[8:])
	mr.fds = fds
	return &mr, nil
}

// Sender is the object ID of the sender of the message.
func (r *MessageBuffer) Sender() uint32 {
	return r.sender
}

// Op is the opcode of the message.
func (r *MessageBuffer) Op() uint16 {
	return r.op
}

// Size is the total size of the message, including the 8 byte header.
func (r *MessageBuffer) Size() uint16 {
	return r.size
}

// Err returns the first error encountered while decoding arguments,
// if any.
func (r *MessageBuffer) Err() error {
	if r.err == nil {
		return nil
	}

	err := r.err
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &DecodeError{Sender: r.sender, Op: r.op, Err: err}
}

// Close closes any file descriptors that were passed to ParseMessage
// but not claimed by ReadFile. Descriptors of a message read from a
// Conn belong to the Conn until they are claimed.
func (r *MessageBuffer) Close() error {
	var errs []error
	for _, fd := range r.fds[r.fdindex:] {
		errs = append(errs, unix.Close(fd))
	}
	r.fds = r.fds[:r.fdindex]
	return errors.Join(errs...)
}

func (r *MessageBuffer) ReadInt() (v int32) {
	if r.err != nil {
		return
	}

	v, r.err = bin.Read[int32](&r.data)
	r.args = append(r.args, v)
	return v
}

func (r *MessageBuffer) ReadUint() (v uint32) {
	if r.err != nil {
		return
	}

	v, r.err = bin.Read[uint32](&r.data)
	r.args = append(r.args, v)
	return v
}

// ReadObject reads an object ID. Zero indicates a null object.
func (r *MessageBuffer) ReadObject() uint32 {
	return r.ReadUint()
}

func (r *MessageBuffer) ReadNewID() NewID {
	return NewID{
		Interface: r.ReadString(),
		Version:   r.ReadUint(),
		ID:        r.ReadUint(),
	}
}

func (r *MessageBuffer) ReadFixed() (v Fixed) {
	if r.err != nil {
		return
	}

	v, r.err = bin.Read[Fixed](&r.data)
	r.args = append(r.args, v)
	return v
}

func (r *MessageBuffer) ReadString() string {
	if r.err != nil {
		return ""
	}

	length, err := bin.Read[uint32](&r.data)
	if err != nil {
		r.err = err
		return ""
	}
	if length == 0 {
		r.args = append(r.args, nil)
		return ""
	}
	pad := padding(length)

	var str strings.Builder
	str.Grow(int(length + pad))
	_, r.err = io.CopyN(&str, &r.data, int64(length+pad))
	if r.err != nil {
		return ""
	}
	v := str.String()
	if v[length-1] != 0 {
		r.err = errors.New("string is not null-terminated")
		return ""
	}

	r.args = append(r.args, v[:length-1])
	return v[:length-1]
}

func (r *MessageBuffer) ReadArray() []byte {
	if r.err != nil {
		return nil
	}

	length, err := bin.Read[uint32](&r.data)
	if err != nil {
		r.err = err
		return nil
	}
	pad := padding(length)

	buf := make([]byte, length+pad)
	_, r.err = io.ReadFull(&r.data, buf)
	if r.err != nil {
		return nil
	}

	r.args = append(r.args, buf[:length])
	return buf[:length]
}

func (r *MessageBuffer) ReadFile() *os.File {
	if r.err != nil {
		return nil
	}

	fd, ok := r.nextFD()
	if !ok {
		r.err = errors.New("no more file descriptors")
		return nil
	}

	f := os.NewFile(uintptr(fd), "")
	r.args = append(r.args, f)
	return f
}

func (r *MessageBuffer) nextFD() (int, bool) {
	if r.conn != nil {
		return r.conn.popFD()
	}

	if r.fdindex >= len(r.fds) {
		return -1, false
	}
	fd := r.fds[r.fdindex]
	r.fdindex++
	return fd, true
}

// Debug formats the decoded message as a method call on sender. It
// should be called after the arguments have been read.
func (r *MessageBuffer) Debug(sender Object, event bool) string {
	return formatCall(sender, methodName(sender.Interface(), r.op, event), r.args)
}

func formatCall(sender Object, method string, argv []any) string {
	args := make([]string, 0, len(argv))
	for _, arg := range argv {
		switch arg := arg.(type) {
		case nil:
			args = append(args, "nil")
		case string:
			args = append(args, strconv.Quote(arg))
		case *os.File:
			args = append(args, fmt.Sprintf("fd %v", arg.Fd()))
		case []byte:
			args = append(args, fmt.Sprintf("array[%v]", len(arg)))
		default:
			args = append(args, fmt.Sprint(arg))
		}
	}

	return fmt.Sprintf("%v@%v.%v(%v)", sender.Interface(), sender.ID(), method, strings.Join(args, ", "))
}
