package compositor

import (
	"image"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SurfaceExtension is the wl_surface_extension global, which gives
// surfaces generic properties and window flags.
type SurfaceExtension struct {
	c      *Compositor
	global *wl.Global

	// PropertyChanged, if not nil, is called when a client updates a
	// property of one of its surfaces.
	PropertyChanged func(es *ExtendedSurface, name string)
}

func newSurfaceExtension(c *Compositor) *SurfaceExtension {
	ext := SurfaceExtension{c: c}
	ext.global = c.server.AddGlobal(protocol.SurfaceExtensionInterface, protocol.SurfaceExtensionVersion, ext.bind)
	return &ext
}

// SurfaceExtension returns the wl_surface_extension global.
func (c *Compositor) SurfaceExtension() *SurfaceExtension {
	return c.surfExt
}

func (ext *SurfaceExtension) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindSurfaceExtension(client, version, id)
	if err != nil {
		return err
	}
	r.Listener = (*surfaceExtensionListener)(ext)
	return nil
}

type surfaceExtensionListener SurfaceExtension

func (lis *surfaceExtensionListener) GetExtendedSurface(obj *wl.ExtendedSurface, s *wl.Surface) {
	surface := lis.c.SurfaceByID(s.Client(), s.ID())
	if surface == nil {
		return
	}

	es := ExtendedSurface{
		ext:        (*SurfaceExtension)(lis),
		obj:        obj,
		surface:    surface,
		properties: make(map[string][]byte),
	}
	obj.Listener = (*extendedSurfaceListener)(&es)
	obj.OnDelete(func() {
		if es.surface != nil {
			es.surface.extended = nil
			es.surface = nil
		}
	})
	surface.extended = &es
}

// ExtendedSurface holds the extra state that the surface extension
// adds to a surface.
type ExtendedSurface struct {
	ext     *SurfaceExtension
	obj     *wl.ExtendedSurface
	surface *Surface

	properties         map[string][]byte
	contentOrientation Orientation
	windowFlags        uint32
}

func (es *ExtendedSurface) Surface() *Surface {
	return es.surface
}

// Property returns the raw value of a generic property.
func (es *ExtendedSurface) Property(name string) ([]byte, bool) {
	v, ok := es.properties[name]
	return v, ok
}

// Properties returns a copy of every generic property.
func (es *ExtendedSurface) Properties() map[string][]byte {
	return maps.Clone(es.properties)
}

// SetProperty sets a generic property and tells the client about it.
func (es *ExtendedSurface) SetProperty(name string, value []byte) {
	es.properties[name] = slices.Clone(value)
	es.obj.SetGenericProperty(name, value)
}

// ContentOrientation returns the orientation that the client renders
// its content in.
func (es *ExtendedSurface) ContentOrientation() Orientation {
	return es.contentOrientation
}

// WindowFlags returns the wl_extended_surface.window_flag bits set by
// the client.
func (es *ExtendedSurface) WindowFlags() uint32 {
	return es.windowFlags
}

// SetVisible tells the client whether its surface is on screen.
func (es *ExtendedSurface) SetVisible(visible bool) {
	var v int32
	if visible {
		v = 1
	}
	es.obj.OnscreenVisibility(v)
}

// Close asks the client to close the window.
func (es *ExtendedSurface) Close() {
	es.obj.Close()
}

type extendedSurfaceListener ExtendedSurface

func (lis *extendedSurfaceListener) UpdateGenericProperty(name string, value []byte) {
	lis.properties[name] = value
	if lis.ext.PropertyChanged != nil {
		lis.ext.PropertyChanged((*ExtendedSurface)(lis), name)
	}
}

func (lis *extendedSurfaceListener) SetContentOrientation(orientation int32) {
	lis.contentOrientation = Orientation(orientation)
}

func (lis *extendedSurfaceListener) SetWindowFlags(flags int32) {
	lis.windowFlags = uint32(flags)
}

// SubSurfaceExtension is the wl_sub_surface_extension global, which
// lets clients stack surfaces on top of each other.
type SubSurfaceExtension struct {
	c      *Compositor
	global *wl.Global
}

func newSubSurfaceExtension(c *Compositor) *SubSurfaceExtension {
	ext := SubSurfaceExtension{c: c}
	ext.global = c.server.AddGlobal(protocol.SubSurfaceExtensionInterface, protocol.SubSurfaceExtensionVersion, ext.bind)
	return &ext
}

func (ext *SubSurfaceExtension) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindSubSurfaceExtension(client, version, id)
	if err != nil {
		return err
	}
	r.Listener = (*subSurfaceExtensionListener)(ext)
	return nil
}

type subSurfaceExtensionListener SubSurfaceExtension

func (lis *subSurfaceExtensionListener) GetSubSurfaceAwareSurface(obj *wl.SubSurface, s *wl.Surface) {
	parent := lis.c.SurfaceByID(s.Client(), s.ID())
	if parent == nil {
		return
	}
	obj.Listener = &subSurfaceListener{c: lis.c, obj: obj, parent: parent}
}

type subSurfaceListener struct {
	c      *Compositor
	obj    *wl.SubSurface
	parent *Surface
}

func (lis *subSurfaceListener) child(obj *wl.Surface) *Surface {
	if lis.parent.dead {
		return nil
	}
	return lis.c.SurfaceByID(obj.Client(), obj.ID())
}

func (lis *subSurfaceListener) AttachSubSurface(obj *wl.Surface, x, y int32) {
	child := lis.child(obj)
	if child == nil {
		return
	}
	for p := lis.parent; p != nil; p = p.parent {
		if p == child {
			lis.obj.Client().PostError(wire.Errorf(lis.obj.ID(), wire.ErrorInvalidObject, "surface %v cannot be a sub-surface of itself", child.ID()))
			return
		}
	}

	if child.parent != nil {
		child.parent.children = deleteItem(child.parent.children, child)
	}
	child.parent = lis.parent
	lis.parent.children = append(lis.parent.children, child)
	child.SetPos(lis.parent.Pos().Add(image.Pt(int(x), int(y))))
}

func (lis *subSurfaceListener) MoveSubSurface(obj *wl.Surface, x, y int32) {
	child := lis.child(obj)
	if (child == nil) || (child.parent != lis.parent) {
		debug.Debug("move of unattached sub-surface", "surface", obj.ID())
		return
	}
	child.SetPos(lis.parent.Pos().Add(image.Pt(int(x), int(y))))
}

func (lis *subSurfaceListener) Raise(obj *wl.Surface) {
	child := lis.child(obj)
	if (child == nil) || (child.parent != lis.parent) {
		return
	}
	lis.parent.children = append(deleteItem(lis.parent.children, child), child)
}

func (lis *subSurfaceListener) Lower(obj *wl.Surface) {
	child := lis.child(obj)
	if (child == nil) || (child.parent != lis.parent) {
		return
	}
	lis.parent.children = slices.Insert(deleteItem(lis.parent.children, child), 0, child)
}

// WindowManager is the wl_windowmanager global. It lets clients tell
// the compositor which process they belong to and lets the compositor
// send them hints.
type WindowManager struct {
	c                *Compositor
	global           *wl.Global
	resources        []*wl.WindowManager
	showIsFullscreen bool
	pids             map[*wl.Client]uint32
	tokens           map[*wl.Client]string
}

func newWindowManager(c *Compositor) *WindowManager {
	wm := WindowManager{
		c:      c,
		pids:   make(map[*wl.Client]uint32),
		tokens: make(map[*wl.Client]string),
	}
	wm.global = c.server.AddGlobal(protocol.WindowmanagerInterface, protocol.WindowmanagerVersion, wm.bind)
	return &wm
}

func (wm *WindowManager) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindWindowManager(client, version, id)
	if err != nil {
		return err
	}
	r.Listener = &windowManagerListener{wm: wm, client: client}
	wm.resources = append(wm.resources, r)
	r.OnDelete(func() { wm.resources = deleteItem(wm.resources, r) })
	client.OnDestroy(func() { wm.removeClient(client) })

	r.Hints(wm.hints())
	return nil
}

func (wm *WindowManager) hints() int32 {
	if wm.showIsFullscreen {
		return 1
	}
	return 0
}

// SetShowIsFullscreen sends the fullscreen hint to every client.
func (wm *WindowManager) SetShowIsFullscreen(fullscreen bool) {
	wm.showIsFullscreen = fullscreen
	for _, r := range wm.resources {
		r.Hints(wm.hints())
	}
}

// ProcessID returns the process ID that client claimed to have.
func (wm *WindowManager) ProcessID(client *wl.Client) (uint32, bool) {
	pid, ok := wm.pids[client]
	return pid, ok
}

// Token returns the authentication token that client sent, if any.
func (wm *WindowManager) Token(client *wl.Client) string {
	return wm.tokens[client]
}

func (wm *WindowManager) removeClient(client *wl.Client) {
	delete(wm.pids, client)
	delete(wm.tokens, client)
}

type windowManagerListener struct {
	wm     *WindowManager
	client *wl.Client
}

func (lis *windowManagerListener) MapClientToProcess(pid uint32) {
	lis.wm.pids[lis.client] = pid
}

func (lis *windowManagerListener) AuthenticateWithToken(token string) {
	lis.wm.tokens[lis.client] = token
}
