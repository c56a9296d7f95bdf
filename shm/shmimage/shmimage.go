// Package shmimage provides images over the pixel layouts of wl_shm
// buffers. Every pixel is a 32-bit word in host byte order, so on a
// little-endian machine ARGB8888 is stored as B, G, R, A. Color
// channels are premultiplied by alpha.
package shmimage

import (
	"image"

	"deedles.dev/wlcomp/internal/bin"
)

func pixOffset(rect image.Rectangle, stride, x, y int) int {
	return (y-rect.Min.Y)*stride + (x-rect.Min.X)*4
}

func loadWord(pix []uint8, i int) uint32 {
	return bin.Value[uint32]([4]byte(pix[i : i+4]))
}

func storeWord(pix []uint8, i int, v uint32) {
	b := bin.Bytes(v)
	copy(pix[i:i+4:i+4], b[:])
}

// subRect returns the offset into pix of r's corner after clipping r
// to rect. ok is false if nothing is left.
func subRect(rect image.Rectangle, stride int, r image.Rectangle) (clipped image.Rectangle, offset int, ok bool) {
	r = r.Intersect(rect)
	if r.Empty() {
		return r, 0, false
	}
	return r, pixOffset(rect, stride, r.Min.X, r.Min.Y), true
}
