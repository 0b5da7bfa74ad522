// Copyright © 2024 Galvanized Logic Inc.

package entity

import "github.com/swarmkit/arena/kernelerr"

// Arena owns every Entity created for one simulation run. It is the
// teacher's "one component manager per concern, dense array keyed by id"
// pattern (gazed/vu app.go: eids/povs/bodies/scenes) collapsed into a
// single manager since entity.Entity already carries its own component
// multimap instead of needing one manager per component kind.
type Arena struct {
	ids   *arena
	slots []*Entity // index 0 unused; slot i holds the entity for index i.
}

// NewArena creates an empty entity arena.
func NewArena() *Arena {
	a := &Arena{ids: newArena()}
	a.slots = append(a.slots, nil) // reserve index 0.
	return a
}

// Create allocates a new root entity.
func (a *Arena) Create() *Entity {
	id := a.ids.create()
	e := newEntity(id)
	idx := id.index()
	for uint32(len(a.slots)) <= idx {
		a.slots = append(a.slots, nil)
	}
	a.slots[idx] = e
	return e
}

// Get resolves id to its live Entity, or nil if id is stale or unknown.
func (a *Arena) Get(id ID) *Entity {
	if !a.ids.valid(id) {
		return nil
	}
	return a.slots[id.index()]
}

// Valid reports whether id currently refers to a live entity.
func (a *Arena) Valid(id ID) bool { return a.ids.valid(id) }

// Resolve is like Get but returns InvalidHandle for a stale/unknown id,
// matching spec.md §7's InvalidHandle error kind.
func (a *Arena) Resolve(id ID) (*Entity, error) {
	e := a.Get(id)
	if e == nil {
		return nil, kernelerr.New(kernelerr.KindInvalidHandle, "entity %d no longer exists", id)
	}
	return e, nil
}

// Dispose removes e and, recursively, every descendant, from the arena.
// Disposal only ever happens here or via full Reset, per spec.md §3
// Entity lifecycle.
func (a *Arena) Dispose(e *Entity) {
	for _, tag := range append([]string(nil), e.tags...) {
		for _, child := range append([]*Entity(nil), e.children[tag]...) {
			a.Dispose(child)
		}
	}
	if e.parent != nil {
		for _, tag := range e.parent.tags {
			kids := e.parent.children[tag]
			for i, k := range kids {
				if k == e {
					kids = append(kids[:i], kids[i+1:]...)
					e.parent.children[tag] = kids
					if len(kids) == 0 {
						delete(e.parent.children, tag)
						e.parent.removeTag(tag)
					}
					break
				}
			}
		}
	}
	a.ids.dispose(e.id)
	a.slots[e.id.index()] = nil
}

// Reset discards every entity and id allocation, returning the arena to
// its just-constructed state. Calling Reset twice is idempotent.
func (a *Arena) Reset() {
	a.ids.reset()
	a.slots = a.slots[:0]
	a.slots = append(a.slots, nil)
}

// Len returns the number of live entities (excludes the disposed/free
// reserved slot 0).
func (a *Arena) Len() int {
	n := 0
	for _, s := range a.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// All returns every live entity. Order is slot order, not creation order,
// but stable within a tick since entities never move slots while alive.
func (a *Arena) All() []*Entity {
	out := make([]*Entity, 0, len(a.slots))
	for _, s := range a.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
