package shmimage

import (
	"image"
	"image/color"
	"image/draw"
)

// ARGB8888 is an image in the wl_shm ARGB8888 format.
type ARGB8888 struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewARGB8888 allocates a tightly packed ARGB8888 image.
func NewARGB8888(r image.Rectangle) *ARGB8888 {
	return &ARGB8888{
		Pix:    make([]uint8, r.Dx()*r.Dy()*4),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *ARGB8888) Bounds() image.Rectangle { return p.Rect }

func (p *ARGB8888) ColorModel() color.Model { return ARGB8888Model }

func (p *ARGB8888) At(x, y int) color.Color {
	return p.ARGB8888At(x, y)
}

// ARGB8888At is like At but avoids the interface conversion. Points
// outside of the image are transparent.
func (p *ARGB8888) ARGB8888At(x, y int) ARGB8888Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return 0
	}
	return ARGB8888Color(loadWord(p.Pix, p.PixOffset(x, y)))
}

func (p *ARGB8888) PixOffset(x, y int) int {
	return pixOffset(p.Rect, p.Stride, x, y)
}

func (p *ARGB8888) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	storeWord(p.Pix, p.PixOffset(x, y), uint32(ARGB8888Model.Convert(c).(ARGB8888Color)))
}

// SubImage returns the part of p inside r. It shares pixels with p.
func (p *ARGB8888) SubImage(r image.Rectangle) draw.Image {
	r, i, ok := subRect(p.Rect, p.Stride, r)
	if !ok {
		return &ARGB8888{}
	}
	return &ARGB8888{Pix: p.Pix[i:], Stride: p.Stride, Rect: r}
}

// Opaque scans the image for a pixel that is not fully opaque.
func (p *ARGB8888) Opaque() bool {
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			if p.ARGB8888At(x, y).a() != 0xFF {
				return false
			}
		}
	}
	return true
}
