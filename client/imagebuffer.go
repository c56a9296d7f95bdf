package wl

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/shm"
	"deedles.dev/wlcomp/shm/shmimage"
	"golang.org/x/sys/unix"
)

// ImageBuffer is an ARGB8888 buffer in a shared memory pool of its
// own. Draw into Image and attach Buffer to a surface.
type ImageBuffer struct {
	size image.Point
	shm  *Shm
	pool *ShmPool
	buf  *Buffer
	file *os.File
	mmap shm.Mmap
}

// NewImageBuffer allocates a buffer of the given size.
func NewImageBuffer(s *Shm, size image.Point) (buf *ImageBuffer, err error) {
	buf = &ImageBuffer{
		size: size,
		shm:  s,
	}
	defer func() {
		if err != nil {
			buf.Destroy()
		}
	}()

	file, err := shm.Create("wlcomp-buffer", buf.Len())
	if err != nil {
		return buf, fmt.Errorf("create SHM file: %w", err)
	}
	buf.file = file

	mmap, err := shm.Map(file, buf.Len(), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return buf, fmt.Errorf("mmap SHM file: %w", err)
	}
	buf.mmap = mmap

	buf.pool = buf.shm.CreatePool(file, int32(buf.Len()))
	buf.buf = buf.createBuffer()

	return buf, nil
}

func (b *ImageBuffer) createBuffer() *Buffer {
	return b.pool.CreateBuffer(0, int32(b.size.X), int32(b.size.Y), int32(b.Stride()), protocol.ShmFormatArgb8888)
}

// Destroy frees the buffer's memory and protocol objects.
func (b *ImageBuffer) Destroy() {
	if b.mmap != nil {
		b.mmap.Unmap()
		b.mmap = nil
	}
	if b.file != nil {
		b.file.Close()
		b.file = nil
	}
	if b.buf != nil {
		b.buf.Destroy()
		b.buf = nil
	}
	if b.pool != nil {
		b.pool.Destroy()
		b.pool = nil
	}
}

func (b *ImageBuffer) Buffer() *Buffer {
	return b.buf
}

func (b *ImageBuffer) Stride() int {
	return b.size.X * 4
}

// Len is the number of bytes used by the buffer's pixels.
func (b *ImageBuffer) Len() int {
	return b.Stride() * b.size.Y
}

func (b *ImageBuffer) Bounds() image.Rectangle {
	return image.Rectangle{Max: b.size}
}

// Resize changes the size of the buffer. The pool is grown if needed
// and the old wl_buffer is replaced, so it must be attached again.
func (b *ImageBuffer) Resize(size image.Point) error {
	if size == b.size {
		return nil
	}

	b.size = size
	b.buf.Destroy()
	if b.Len() <= len(b.mmap) {
		b.buf = b.createBuffer()
		return nil
	}

	err := b.file.Truncate(int64(b.Len()))
	if err != nil {
		return fmt.Errorf("grow SHM file: %w", err)
	}

	err = b.mmap.Unmap()
	if err != nil {
		return fmt.Errorf("unmap: %w", err)
	}
	mmap, err := shm.Map(b.file, b.Len(), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		b.mmap = nil
		return fmt.Errorf("mmap: %w", err)
	}
	b.mmap = mmap

	b.pool.Resize(int32(b.Len()))
	b.buf = b.createBuffer()
	return nil
}

// Image returns an image that draws directly into the buffer's memory.
func (b *ImageBuffer) Image() draw.Image {
	return &shmimage.ARGB8888{
		Pix:    b.mmap[:b.Len()],
		Stride: b.Stride(),
		Rect:   b.Bounds(),
	}
}
