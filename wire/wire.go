// Package wire defines types helpful for dealing with the Wayland
// wire protocol. It is used by both the server and the client halves
// of the module to move messages on and off of a socket.
package wire

import (
	"io"
	"net"

	"deedles.dev/wlcomp/internal/bin"
	"golang.org/x/sys/unix"
)

// Object represents a Wayland protocol object.
type Object interface {
	// ID returns the object's ID. An ID of zero means that the object
	// has not been added to a store yet.
	ID() uint32

	// SetID is called by a store when the object is added to it.
	SetID(id uint32)

	// Interface returns the name of the protocol interface that the
	// object implements, such as "wl_surface".
	Interface() string

	// Dispatch performs the operation requested by the message in the
	// buffer.
	Dispatch(msg *MessageBuffer) error

	// Delete is called exactly once when the object is removed from
	// its store.
	Delete()
}

// NewID is an untyped new_id argument, as used by wl_registry.bind.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}

// AppendUint appends v to data in host byte order, for building the
// contents of array arguments.
func AppendUint(data []byte, v uint32) []byte {
	b := bin.Bytes(v)
	return append(data, b[:]...)
}

// Uints decodes an array argument made up of 32-bit words. Trailing
// bytes that do not form a whole word are ignored.
func Uints(data []byte) []uint32 {
	vals := make([]uint32, 0, len(data)/4)
	for len(data) >= 4 {
		vals = append(vals, bin.Value[uint32]([4]byte(data)))
		data = data[4:]
	}
	return vals
}

func padding(length uint32) uint32 {
	return (4 - length%4) % 4
}

// unixTee reads from c, but also reads out-of-band data
// simultaneously, writing it into oob.
type unixTee struct {
	c   *net.UnixConn
	oob *[]byte
}

func (t unixTee) Read(buf []byte) (int, error) {
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))
	n, oobn, _, _, err := t.c.ReadMsgUnix(buf, oob)
	*t.oob = append(*t.oob, oob[:oobn]...)
	if (n == 0) && (err == nil) {
		return 0, io.EOF
	}
	return n, err
}

// maxFDs is the largest number of file descriptors that may be
// attached to a single message.
const maxFDs = 28
