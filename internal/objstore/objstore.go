// Package objstore implements the per-connection table that maps
// protocol object IDs to the objects that they refer to.
package objstore

import (
	"cmp"

	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/wire"
	"golang.org/x/exp/slices"
)

// ServerIDStart is the first ID handed out to objects created by the
// server side of a connection.
const ServerIDStart = 0xff000000

type entry struct {
	obj wire.Object
	seq uint64
}

type Store struct {
	objects map[uint32]entry
	nextID  uint32
	seq     uint64
}

// New returns an empty store that allocates IDs starting at start.
func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]entry),
		nextID:  start,
	}
}

// Add adds obj to the store. If obj has no ID yet, one is allocated
// for it. Adding an object under an ID that is still in use is a
// protocol error.
func (s *Store) Add(obj wire.Object) error {
	id := obj.ID()
	if id == 0 {
		for s.objects[s.nextID].obj != nil {
			s.nextID++
		}
		id = s.nextID
		s.nextID++
		obj.SetID(id)
	}

	if old := s.objects[id].obj; old != nil {
		return wire.Errorf(id, wire.ErrorInvalidObject, "object ID %v is already in use by %v", id, old.Interface())
	}

	s.seq++
	s.objects[id] = entry{obj: obj, seq: s.seq}
	return nil
}

// Get returns the object with the given ID, or nil.
func (s *Store) Get(id uint32) wire.Object {
	return s.objects[id].obj
}

// Lookup is like Get but returns a protocol error for IDs that do not
// refer to a live object.
func (s *Store) Lookup(id uint32) (wire.Object, error) {
	obj := s.objects[id].obj
	if obj == nil {
		return nil, wire.Errorf(id, wire.ErrorInvalidObject, "no object with ID %v", id)
	}
	return obj, nil
}

// LookupAs looks up the object with the given ID and checks that it
// is of type T. An ID of zero yields the zero value of T and no error,
// as that is how the protocol represents a null object.
func LookupAs[T wire.Object](s *Store, id uint32) (T, error) {
	var zero T
	if id == 0 {
		return zero, nil
	}

	obj, err := s.Lookup(id)
	if err != nil {
		return zero, err
	}
	v, ok := obj.(T)
	if !ok {
		return zero, wire.Errorf(id, wire.ErrorInvalidObject, "object %v is a %v", id, obj.Interface())
	}
	return v, nil
}

// Delete removes the object with the given ID and calls its Delete
// method. Deleting an ID that is not in the store does nothing, so
// an object's Delete method is called at most once.
func (s *Store) Delete(id uint32) {
	e, ok := s.objects[id]
	if !ok {
		return
	}
	delete(s.objects, id)
	e.obj.Delete()
}

// Clear deletes every object in the store, most recently added
// first.
func (s *Store) Clear() {
	ids := make([]uint32, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uint32) int {
		return cmp.Compare(s.objects[b].seq, s.objects[a].seq)
	})

	for _, id := range ids {
		s.Delete(id)
	}
}

// Len returns the number of objects in the store.
func (s *Store) Len() int {
	return len(s.objects)
}

// Dispatch delivers msg to the object that sent it.
func (s *Store) Dispatch(msg *wire.MessageBuffer) error {
	obj := s.objects[msg.Sender()].obj
	if obj == nil {
		return wire.UnknownSenderIDError{Msg: msg}
	}

	err := obj.Dispatch(msg)
	debug.Printf("%v", msg.Debug(obj, false))
	return err
}
