package shmimage

import (
	"image"
	"image/color"
	"image/draw"
)

// XRGB8888 is like ARGB8888, but the alpha byte of every pixel is
// ignored and the image is always opaque.
type XRGB8888 struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewXRGB8888 allocates a tightly packed XRGB8888 image.
func NewXRGB8888(r image.Rectangle) *XRGB8888 {
	return &XRGB8888{
		Pix:    make([]uint8, r.Dx()*r.Dy()*4),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *XRGB8888) Bounds() image.Rectangle { return p.Rect }

func (p *XRGB8888) ColorModel() color.Model { return XRGB8888Model }

func (p *XRGB8888) At(x, y int) color.Color {
	return p.XRGB8888At(x, y)
}

func (p *XRGB8888) XRGB8888At(x, y int) XRGB8888Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return 0
	}
	return XRGB8888Color(loadWord(p.Pix, p.PixOffset(x, y)) & 0x00FFFFFF)
}

func (p *XRGB8888) PixOffset(x, y int) int {
	return pixOffset(p.Rect, p.Stride, x, y)
}

func (p *XRGB8888) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	storeWord(p.Pix, p.PixOffset(x, y), uint32(XRGB8888Model.Convert(c).(XRGB8888Color)))
}

func (p *XRGB8888) SubImage(r image.Rectangle) draw.Image {
	r, i, ok := subRect(p.Rect, p.Stride, r)
	if !ok {
		return &XRGB8888{}
	}
	return &XRGB8888{Pix: p.Pix[i:], Stride: p.Stride, Rect: r}
}

// Opaque reports whether the image is fully opaque, which it always
// is.
func (p *XRGB8888) Opaque() bool {
	return true
}
