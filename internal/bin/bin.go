// Package bin contains utilities for dealing with the host-order
// 32-bit words that make up Wayland messages.
package bin

import (
	"encoding/binary"
	"io"
)

type word interface {
	~int32 | ~uint32
}

// Bytes encodes v in host byte order.
func Bytes[T word](v T) (data [4]byte) {
	binary.NativeEndian.PutUint32(data[:], uint32(v))
	return data
}

// Value decodes a host byte order word.
func Value[T word](data [4]byte) T {
	return T(binary.NativeEndian.Uint32(data[:]))
}

func Read[T word](r io.Reader) (T, error) {
	var data [4]byte
	_, err := io.ReadFull(r, data[:])
	if err != nil {
		return 0, err
	}

	return Value[T](data), nil
}

func Write[T word](w io.Writer, v T) error {
	data := Bytes(v)
	n, err := w.Write(data[:])
	if (err == nil) && (n < len(data)) {
		return io.ErrShortWrite
	}
	return err
}
