package wl

import (
	"image"

	"golang.org/x/exp/slices"
)

type areaOp struct {
	rect image.Rectangle
	sub  bool
}

// Area is a set of points built up by adding and subtracting
// rectangles, in the manner of wl_region.
type Area struct {
	ops []areaOp
}

func (a *Area) Add(r image.Rectangle) {
	a.ops = append(a.ops, areaOp{rect: r.Canon()})
}

func (a *Area) Subtract(r image.Rectangle) {
	a.ops = append(a.ops, areaOp{rect: r.Canon(), sub: true})
}

// Contains reports whether p is in the area.
func (a *Area) Contains(p image.Point) bool {
	var in bool
	for _, op := range a.ops {
		if p.In(op.rect) {
			in = !op.sub
		}
	}
	return in
}

// Bounds returns a rectangle that contains every point in the area.
func (a *Area) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, op := range a.ops {
		if !op.sub {
			b = b.Union(op.rect)
		}
	}
	return b
}

// Empty reports whether nothing has ever been added to the area.
func (a *Area) Empty() bool {
	return a.Bounds().Empty()
}

func (a *Area) Clone() *Area {
	return &Area{ops: slices.Clone(a.ops)}
}
