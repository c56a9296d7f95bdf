package compositor

import (
	"image"

	"deedles.dev/wlcomp/internal/debug"
	wl "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/slices"
	"golang.org/x/image/draw"
)

// surfaceState is the double-buffered state of a surface. Requests
// modify the pending copy and a commit applies it.
type surfaceState struct {
	attached bool
	buffer   *Buffer
	offset   image.Point
	damage   image.Rectangle
	frames   []func(time uint32)

	opaque, input       *wl.Area
	opaqueSet, inputSet bool

	transform    int32
	transformSet bool
}

// Surface is a client's wl_surface together with the state that the
// compositor keeps for it.
type Surface struct {
	c   *Compositor
	obj *wl.Surface

	pending   surfaceState
	buffer    *Buffer
	damage    image.Rectangle
	frames    []func(time uint32)
	retired   []*Buffer
	opaque    *wl.Area
	input     *wl.Area
	transform int32

	pos   image.Point
	dirty bool
	dead  bool

	shell    *ShellSurface
	extended *ExtendedSurface
	parent   *Surface
	children []*Surface
}

func newSurface(c *Compositor, obj *wl.Surface) *Surface {
	s := Surface{c: c, obj: obj}
	obj.Listener = (*surfaceListener)(&s)
	return &s
}

func (s *Surface) ID() uint32 {
	return s.obj.ID()
}

// Client returns the client that owns the surface.
func (s *Surface) Client() *wl.Client {
	return s.obj.Client()
}

// Object returns the protocol object of the surface.
func (s *Surface) Object() *wl.Surface {
	return s.obj
}

// Compositor returns the compositor that s belongs to.
func (s *Surface) Compositor() *Compositor {
	return s.c
}

// Attach sets the buffer that will be displayed after the next commit.
// A nil buffer removes the surface's content. offset is the position
// of the new buffer relative to the current one. A buffer may only be
// used by one surface at a time.
func (s *Surface) Attach(b *Buffer, offset image.Point) error {
	if (b != nil) && (b.holder != nil) && (b.holder != s) {
		return wire.Errorf(s.ID(), wire.ErrorInvalidObject, "buffer %v is in use by surface %v", b.ID(), b.holder.ID())
	}

	old := s.pending.buffer
	s.pending.attached = true
	s.pending.buffer = b
	s.pending.offset = offset
	if b != nil {
		b.holder = s
	}
	s.dropHold(old)
	return nil
}

// Damage marks part of the pending buffer as changed. r may extend
// beyond the buffer and is clipped when the surface is committed.
func (s *Surface) Damage(r image.Rectangle) {
	s.pending.damage = s.pending.damage.Union(r)
}

// RequestFrameCallback registers f to be called once the content of
// the next commit has been displayed.
func (s *Surface) RequestFrameCallback(f func(time uint32)) {
	s.pending.frames = append(s.pending.frames, f)
}

// Commit applies the pending state and marks the surface dirty. A
// buffer that is replaced is released once the frame that shows its
// replacement is finished.
func (s *Surface) Commit() {
	if s.dead {
		return
	}

	p := s.pending
	s.pending = surfaceState{}

	if p.attached {
		old := s.buffer
		s.buffer = p.buffer
		if s.buffer != nil {
			s.buffer.released = false
			s.retired = deleteItem(s.retired, s.buffer)
		}
		if (old != nil) && (old != s.buffer) && !slices.Contains(s.retired, old) {
			s.retired = append(s.retired, old)
		}
		s.pos = s.pos.Add(p.offset)
	}

	s.damage = s.damage.Union(p.damage).Intersect(s.bounds())
	s.frames = append(s.frames, p.frames...)
	if p.opaqueSet {
		s.opaque = p.opaque
	}
	if p.inputSet {
		s.input = p.input
	}
	if p.transformSet {
		s.transform = p.transform
	}

	s.c.MarkDirty(s)
}

func (s *Surface) sendFrameCallbacks(time uint32) {
	frames := s.frames
	s.frames = nil
	for _, f := range frames {
		f(time)
	}

	retired := s.retired
	s.retired = nil
	for _, b := range retired {
		b.Release()
		s.dropHold(b)
	}

	s.damage = image.Rectangle{}
}

// Destroy destroys the surface as if the client had requested it.
func (s *Surface) Destroy() {
	s.obj.Destroy()
}

// Destroyed reports whether the surface has been destroyed.
func (s *Surface) Destroyed() bool {
	return s.dead
}

func (s *Surface) destroyed() {
	s.dead = true

	pending := s.pending.buffer
	s.pending = surfaceState{}
	s.dropHold(pending)

	held := append(s.retired, s.buffer)
	s.retired = nil
	s.buffer = nil
	for _, b := range held {
		if b != nil {
			b.Release()
			s.dropHold(b)
		}
	}

	s.frames = nil
	if s.parent != nil {
		s.parent.children = deleteItem(s.parent.children, s)
		s.parent = nil
	}
	for _, child := range s.children {
		child.parent = nil
	}
	s.children = nil
	if s.shell != nil {
		s.shell.surface = nil
		s.shell = nil
	}
	if s.extended != nil {
		s.extended.surface = nil
		s.extended = nil
	}
}

func (s *Surface) holds(b *Buffer) bool {
	return (s.pending.buffer == b) || (s.buffer == b) || slices.Contains(s.retired, b)
}

func (s *Surface) dropHold(b *Buffer) {
	if (b != nil) && (b.holder == s) && !s.holds(b) {
		b.holder = nil
	}
}

// bufferDeleted forgets every reference to a buffer that the client
// destroyed.
func (s *Surface) bufferDeleted(b *Buffer) {
	if s.pending.buffer == b {
		s.pending.buffer = nil
	}
	if s.buffer == b {
		s.buffer = nil
	}
	s.retired = deleteItem(s.retired, b)
}

// Buffer returns the committed buffer, or nil.
func (s *Surface) Buffer() *Buffer {
	return s.buffer
}

// Damaged returns the part of the committed buffer that has changed
// since the last finished frame.
func (s *Surface) Damaged() image.Rectangle {
	return s.damage
}

// Dirty reports whether the surface has been committed since its last
// finished frame.
func (s *Surface) Dirty() bool {
	return s.dirty
}

func (s *Surface) bounds() image.Rectangle {
	return image.Rectangle{Max: s.Size()}
}

// Size returns the size of the committed buffer.
func (s *Surface) Size() image.Point {
	if s.buffer == nil {
		return image.Point{}
	}
	return s.buffer.Size()
}

// Pos returns the position of the surface in compositor coordinates.
func (s *Surface) Pos() image.Point {
	return s.pos
}

func (s *Surface) SetPos(p image.Point) {
	s.pos = p
}

// Rect returns the area that the surface covers in compositor
// coordinates.
func (s *Surface) Rect() image.Rectangle {
	return s.bounds().Add(s.pos)
}

// OpaqueRegion returns the committed opaque region. It is nil if the
// client has not set one.
func (s *Surface) OpaqueRegion() *wl.Area {
	return s.opaque
}

// InputRegion returns the committed input region. A nil region
// accepts input everywhere.
func (s *Surface) InputRegion() *wl.Area {
	return s.input
}

// AcceptsInput reports whether the surface-local point p is inside the
// surface's input region.
func (s *Surface) AcceptsInput(p image.Point) bool {
	if !p.In(s.bounds()) {
		return false
	}
	return (s.input == nil) || s.input.Contains(p)
}

// BufferTransform returns the transform that the client has applied to
// its buffers, as a wl_output.transform value.
func (s *Surface) BufferTransform() int32 {
	return s.transform
}

// ShellSurface returns the surface's wl_shell_surface, if it has one.
func (s *Surface) ShellSurface() *ShellSurface {
	return s.shell
}

// ExtendedSurface returns the surface's extended surface, if it has
// one.
func (s *Surface) ExtendedSurface() *ExtendedSurface {
	return s.extended
}

// Parent returns the surface that s is a sub-surface of, if any.
func (s *Surface) Parent() *Surface {
	return s.parent
}

// Children returns the sub-surfaces of s from bottom to top.
func (s *Surface) Children() []*Surface {
	return slices.Clone(s.children)
}

// Image returns a copy of the committed buffer's content, or nil if
// there is no buffer.
func (s *Surface) Image() *image.RGBA {
	if s.buffer == nil {
		return nil
	}

	src := s.buffer.Image()
	dst := image.NewRGBA(image.Rectangle{Max: src.Bounds().Size()})
	draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
	return dst
}

type surfaceListener Surface

func (lis *surfaceListener) Attach(obj *wl.Buffer, x, y int32) {
	s := (*Surface)(lis)

	var b *Buffer
	if obj != nil {
		b = s.c.buffer(obj)
	}
	err := s.Attach(b, image.Pt(int(x), int(y)))
	if perr, ok := wire.AsProtocolError(err); ok {
		s.Client().PostError(perr)
	}
}

func (lis *surfaceListener) Damage(r image.Rectangle) {
	(*Surface)(lis).Damage(r)
}

func (lis *surfaceListener) Frame(cb *wl.Callback) {
	(*Surface)(lis).RequestFrameCallback(cb.Done)
}

func (lis *surfaceListener) SetOpaqueRegion(area *wl.Area) {
	lis.pending.opaque = area
	lis.pending.opaqueSet = true
}

func (lis *surfaceListener) SetInputRegion(area *wl.Area) {
	lis.pending.input = area
	lis.pending.inputSet = true
}

func (lis *surfaceListener) Commit() {
	(*Surface)(lis).Commit()
}

func (lis *surfaceListener) SetBufferTransform(transform int32) {
	debug.Debug("buffer transform", "surface", lis.obj.ID(), "transform", transform)
	lis.pending.transform = transform
	lis.pending.transformSet = true
}
