package wl

import (
	"cmp"

	"deedles.dev/wlcomp/protocol"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/slices"
)

// Global is a global advertised by the server.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Registry is the wl_registry, which tells the client about globals.
type Registry struct {
	Global       func(g Global)
	GlobalRemove func(name uint32)

	proxy
	globals map[uint32]Global
}

// Globals returns the globals that are currently advertised, ordered
// by name.
func (r *Registry) Globals() []Global {
	globals := make([]Global, 0, len(r.globals))
	for _, g := range r.globals {
		globals = append(globals, g)
	}
	slices.SortFunc(globals, func(g1, g2 Global) int { return cmp.Compare(g1.Name, g2.Name) })
	return globals
}

// Find returns the first global that implements iface.
func (r *Registry) Find(iface string) (Global, bool) {
	for _, g := range r.Globals() {
		if g.Interface == iface {
			return g, true
		}
	}
	return Global{}, false
}

func (r *Registry) Interface() string {
	return protocol.RegistryInterface
}

func (r *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case protocol.RegistryEventGlobal:
		g := Global{
			Name:      msg.ReadUint(),
			Interface: msg.ReadString(),
			Version:   msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return err
		}

		r.globals[g.Name] = g
		if r.Global != nil {
			r.Global(g)
		}
		return nil

	case protocol.RegistryEventGlobalRemove:
		name := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		delete(r.globals, name)
		if r.GlobalRemove != nil {
			r.GlobalRemove(name)
		}
		return nil

	default:
		return unknownEvent(r, msg.Op())
	}
}

// Bind creates obj as an instance of the global g. version is capped
// at the version that the server advertises.
func (r *Registry) Bind(g Global, version uint32, obj wire.Object) {
	r.display.add(obj)

	msg := wire.NewMessage(r, protocol.RegistryRequestBind)
	msg.WriteUint(g.Name)
	msg.WriteNewID(wire.NewID{
		Interface: obj.Interface(),
		Version:   min(version, g.Version),
		ID:        obj.ID(),
	})
	r.enqueue(msg)
}
