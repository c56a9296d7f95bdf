package wl

import (
	"os"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
)

// Shm is the wl_shm global.
type Shm struct {
	Format func(format uint32)

	proxy
	formats []uint32
}

// BindShm binds the shared memory global g.
func BindShm(r *Registry, g Global) *Shm {
	var shm Shm
	shm.display = r.display
	r.Bind(g, protocol.ShmVersion, &shm)
	return &shm
}

func (shm *Shm) Interface() string {
	return protocol.ShmInterface
}

func (shm *Shm) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.ShmEventFormat:
		format := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		shm.formats = append(shm.formats, format)
		if shm.Format != nil {
			shm.Format(format)
		}
		return nil

	default:
		return unknownEvent(shm, msg.Op())
	}
}

// Formats returns the formats that the server has announced so far.
func (shm *Shm) Formats() []uint32 {
	return shm.formats
}

// CreatePool creates a pool backed by the first size bytes of file.
// The file is duplicated, so the caller may close it once the request
// has been sent.
func (shm *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	var pool ShmPool
	pool.display = shm.display
	shm.display.add(&pool)

	msg := wire.NewMessage(shm, protocol.ShmRequestCreatePool)
	msg.WriteUint(pool.id)
	msg.WriteFile(file)
	msg.WriteInt(size)
	shm.enqueue(msg)

	return &pool
}

// ShmPool is a wl_shm_pool.
type ShmPool struct {
	proxy
}

func (pool *ShmPool) Interface() string {
	return protocol.ShmPoolInterface
}

func (pool *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	return unknownEvent(pool, msg.Op())
}

// CreateBuffer creates a buffer from part of the pool.
func (pool *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) *Buffer {
	var buf Buffer
	buf.display = pool.display
	pool.display.add(&buf)

	msg := wire.NewMessage(pool, protocol.ShmPoolRequestCreateBuffer)
	msg.WriteUint(buf.id)
	msg.WriteInt(offset)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(stride)
	msg.WriteUint(format)
	pool.enqueue(msg)

	return &buf
}

// Resize grows the pool to size bytes.
func (pool *ShmPool) Resize(size int32) {
	msg := wire.NewMessage(pool, protocol.ShmPoolRequestResize)
	msg.WriteInt(size)
	pool.enqueue(msg)
}

func (pool *ShmPool) Destroy() {
	pool.enqueue(wire.NewMessage(pool, protocol.ShmPoolRequestDestroy))
}

// Buffer is a wl_buffer.
type Buffer struct {
	// Release is called when the compositor no longer reads from the
	// buffer.
	Release func()

	proxy
}

func (buf *Buffer) Interface() string {
	return protocol.BufferInterface
}

func (buf *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.BufferEventRelease:
		if buf.Release != nil {
			buf.Release()
		}
		return nil

	default:
		return unknownEvent(buf, msg.Op())
	}
}

func (buf *Buffer) Destroy() {
	buf.enqueue(wire.NewMessage(buf, protocol.BufferRequestDestroy))
}
