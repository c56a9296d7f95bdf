package shmimage

import "image/color"

// ARGB8888Color is a premultiplied pixel as stored in an ARGB8888
// buffer.
type ARGB8888Color uint32

// NewARGB8888Color packs premultiplied components.
func NewARGB8888Color(r, g, b, a uint8) ARGB8888Color {
	return ARGB8888Color((uint32(a) << 24) | (uint32(r) << 16) | (uint32(g) << 8) | uint32(b))
}

func (c ARGB8888Color) RGBA() (r, g, b, a uint32) {
	return uint32(c.r()) * 0x101, uint32(c.g()) * 0x101, uint32(c.b()) * 0x101, uint32(c.a()) * 0x101
}

func (c ARGB8888Color) r() uint8 { return uint8(c >> 16) }
func (c ARGB8888Color) g() uint8 { return uint8(c >> 8) }
func (c ARGB8888Color) b() uint8 { return uint8(c) }
func (c ARGB8888Color) a() uint8 { return uint8(c >> 24) }

var ARGB8888Model color.Model = color.ModelFunc(argb8888Model)

func argb8888Model(c color.Color) color.Color {
	if c, ok := c.(ARGB8888Color); ok {
		return c
	}
	r, g, b, a := c.RGBA()
	return NewARGB8888Color(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

// XRGB8888Color is an opaque pixel. The top byte is always zero.
type XRGB8888Color uint32

func NewXRGB8888Color(r, g, b uint8) XRGB8888Color {
	return XRGB8888Color((uint32(r) << 16) | (uint32(g) << 8) | uint32(b))
}

func (c XRGB8888Color) RGBA() (r, g, b, a uint32) {
	return uint32(uint8(c>>16)) * 0x101, uint32(uint8(c>>8)) * 0x101, uint32(uint8(c)) * 0x101, 0xFFFF
}

var XRGB8888Model color.Model = color.ModelFunc(xrgb8888Model)

func xrgb8888Model(c color.Color) color.Color {
	switch c := c.(type) {
	case XRGB8888Color:
		return c & 0x00FFFFFF
	case ARGB8888Color:
		return XRGB8888Color(c & 0x00FFFFFF)
	default:
		r, g, b, _ := c.RGBA()
		return NewXRGB8888Color(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
}
