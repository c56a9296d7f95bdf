package compositor

import (
	"image"

	wl "deedles.dev/wlcomp/server"
)

// Buffer is a client buffer that has been attached to a surface. It is
// used by at most one surface at a time and is handed back to the
// client with Release once the compositor is done with its content.
type Buffer struct {
	c        *Compositor
	obj      *wl.Buffer
	holder   *Surface
	released bool
	deleted  bool
}

// buffer returns the Buffer for obj, creating it the first time that
// obj is seen.
func (c *Compositor) buffer(obj *wl.Buffer) *Buffer {
	if b, ok := c.buffers[obj]; ok {
		return b
	}

	b := Buffer{c: c, obj: obj}
	c.buffers[obj] = &b
	obj.OnDelete(func() {
		b.deleted = true
		delete(c.buffers, obj)
		if b.holder != nil {
			b.holder.bufferDeleted(&b)
			b.holder = nil
		}
	})
	return &b
}

func (b *Buffer) ID() uint32 {
	return b.obj.ID()
}

// Object returns the protocol object of the buffer.
func (b *Buffer) Object() *wl.Buffer {
	return b.obj
}

func (b *Buffer) Size() image.Point {
	return b.obj.Size()
}

// Format returns the wl_shm format of the buffer.
func (b *Buffer) Format() uint32 {
	return b.obj.Format()
}

func (b *Buffer) Stride() int32 {
	return b.obj.Stride()
}

// Image returns the content of the buffer. The image shares memory
// with the client and is only valid until the buffer is released.
func (b *Buffer) Image() image.Image {
	return b.obj.Image()
}

// Holder returns the surface that is using the buffer, if any.
func (b *Buffer) Holder() *Surface {
	return b.holder
}

// Release tells the client that it may reuse the buffer. Releasing a
// buffer more than once before it is committed again has no further
// effect.
func (b *Buffer) Release() {
	if b.released || b.deleted {
		return
	}
	b.released = true
	b.obj.Release()
}

// Released reports whether the buffer has been released since it was
// last committed.
func (b *Buffer) Released() bool {
	return b.released
}

// Deleted reports whether the client has destroyed the buffer.
func (b *Buffer) Deleted() bool {
	return b.deleted
}
