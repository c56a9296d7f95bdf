package wl

import (
	"image"
	"os"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/shm"
	"deedles.dev/wlcomp/shm/shmimage"
	"deedles.dev/wlcomp/wire"
	"deedles.dev/ximage/format"
	"golang.org/x/sys/unix"
)

// Formats are the wl_shm formats that the server accepts.
var Formats = []uint32{
	protocol.ShmFormatArgb8888,
	protocol.ShmFormatXrgb8888,
}

type Shm struct {
	object
}

// BindShm creates a wl_shm object and announces the supported formats.
func BindShm(client *Client, version, id uint32) (*Shm, error) {
	s := Shm{object: newObject(client, version)}
	err := client.Add(&s, id)
	if err != nil {
		return nil, err
	}

	for _, f := range Formats {
		s.Format(f)
	}
	return &s, nil
}

func (s *Shm) Interface() string {
	return protocol.ShmInterface
}

func (s *Shm) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ShmRequestCreatePool:
		id := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			if file != nil {
				file.Close()
			}
			return err
		}

		if size <= 0 {
			file.Close()
			return wire.Errorf(s.id, protocol.ShmErrorInvalidStride, "invalid pool size %v", size)
		}

		mmap, err := shm.Map(file, int(size), unix.PROT_READ)
		if err != nil {
			file.Close()
			return wire.Errorf(s.id, protocol.ShmErrorInvalidFd, "mmap failed: %v", err)
		}

		pool := ShmPool{
			object: newObject(s.client, 1),
			file:   file,
			mmap:   mmap,
		}
		err = s.client.Add(&pool, id)
		if err != nil {
			pool.unmap()
			return err
		}
		return nil

	default:
		return unknownOp(s, msg.Op())
	}
}

func (s *Shm) Format(format uint32) {
	msg := wire.NewEvent(s, protocol.ShmEventFormat)
	msg.WriteUint(format)
	s.enqueue(msg)
}

// ShmPool is a client's shared memory pool. The memory stays mapped
// until both the pool and every buffer created from it are gone.
type ShmPool struct {
	object
	file    *os.File
	mmap    shm.Mmap
	buffers int
	deleted bool
}

func (p *ShmPool) Interface() string {
	return protocol.ShmPoolInterface
}

func (p *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ShmPoolRequestCreateBuffer:
		id := msg.ReadUint()
		offset := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		stride := msg.ReadInt()
		format := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		if (format != protocol.ShmFormatArgb8888) && (format != protocol.ShmFormatXrgb8888) {
			return wire.Errorf(p.id, protocol.ShmErrorInvalidFormat, "invalid format %#x", format)
		}
		if (offset < 0) || (width <= 0) || (height <= 0) || (int64(stride) < int64(width)*4) ||
			(int64(offset)+int64(stride)*int64(height) > int64(len(p.mmap))) {
			return wire.Errorf(p.id, protocol.ShmErrorInvalidStride, "invalid width, height or stride (%vx%v, %v)", width, height, stride)
		}

		buf := Buffer{
			object: newObject(p.client, 1),
			pool:   p,
			offset: offset,
			width:  width,
			height: height,
			stride: stride,
			format: format,
		}
		err := p.client.Add(&buf, id)
		if err != nil {
			return err
		}
		p.buffers++
		return nil

	case protocol.ShmPoolRequestDestroy:
		p.Destroy()
		return nil

	case protocol.ShmPoolRequestResize:
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if int(size) < len(p.mmap) {
			return wire.Errorf(p.id, protocol.ShmErrorInvalidStride, "shrinking pool from %v to %v", len(p.mmap), size)
		}
		mmap, err := shm.Map(p.file, int(size), unix.PROT_READ)
		if err != nil {
			return wire.Errorf(p.id, protocol.ShmErrorInvalidFd, "mmap failed: %v", err)
		}
		p.mmap.Unmap()
		p.mmap = mmap
		return nil

	default:
		return unknownOp(p, msg.Op())
	}
}

func (p *ShmPool) Delete() {
	p.deleted = true
	if p.buffers == 0 {
		p.unmap()
	}
	p.object.Delete()
}

func (p *ShmPool) release() {
	p.buffers--
	if p.deleted && (p.buffers == 0) {
		p.unmap()
	}
}

func (p *ShmPool) unmap() {
	if p.mmap == nil {
		return
	}

	err := p.mmap.Unmap()
	if err != nil {
		debug.Warn("unmap pool", "err", err)
	}
	p.file.Close()
	p.mmap = nil
}

// Buffer is a wl_buffer backed by a shared memory pool.
type Buffer struct {
	object
	pool                          *ShmPool
	offset, width, height, stride int32
	format                        uint32
}

func (b *Buffer) Interface() string {
	return protocol.BufferInterface
}

func (b *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.BufferRequestDestroy:
		b.Destroy()
		return nil

	default:
		return unknownOp(b, msg.Op())
	}
}

func (b *Buffer) Delete() {
	b.pool.release()
	b.object.Delete()
}

// Release tells the client that the server no longer needs the
// buffer's contents.
func (b *Buffer) Release() {
	msg := wire.NewEvent(b, protocol.BufferEventRelease)
	b.enqueue(msg)
}

func (b *Buffer) Size() image.Point {
	return image.Pt(int(b.width), int(b.height))
}

func (b *Buffer) Stride() int32 {
	return b.stride
}

func (b *Buffer) Format() uint32 {
	return b.format
}

// Bytes returns the buffer's pixel data. It aliases the client's
// shared memory and must not be retained after the buffer is deleted.
func (b *Buffer) Bytes() []byte {
	end := b.offset + b.stride*b.height
	return b.pool.mmap[b.offset:end:end]
}

// Image returns an image backed by the buffer's pixel data, with the
// same lifetime restrictions as Bytes.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, int(b.width), int(b.height))
	pix := b.Bytes()

	switch {
	case b.format == protocol.ShmFormatArgb8888:
		return &shmimage.ARGB8888{Pix: pix, Stride: int(b.stride), Rect: rect}
	case b.stride == b.width*4:
		return &format.Image{Format: format.XRGB8888, Rect: rect, Pix: pix}
	default:
		return &shmimage.XRGB8888{Pix: pix, Stride: int(b.stride), Rect: rect}
	}
}
