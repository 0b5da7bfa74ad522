// Copyright © 2024 Galvanized Logic Inc.

// Package entity implements the mutable world graph: a tree of composable
// entities carrying positional and embodied sub-entities with named anchor
// frames that engines and sensors read and write.
package entity

// id.go mirrors the teacher's entity-identifier scheme (see gazed/vu
// eid.go / entity.go): an id packs an array index and an edition so that
// stale handles to removed entities are detected instead of silently
// aliasing a reused slot.

import "log/slog"

// ID is a stable identifier for an Entity. The low bits are an array index
// suitable for O(1) lookups; the high bits are an edition that increments
// every time the slot is recycled, so a held ID that outlives its entity
// is detectably stale rather than silently resolving to whatever entity
// now occupies the slot.
type ID uint32

const idBits = 20                  // entity array index: max 1048575.
const edBits = 12                  // entity edition: max 4095.
const maxEntID = (1 << idBits) - 1 // mask and max active entities.
const maxEdition = (1 << edBits) - 1

// index is the value used for array lookups.
func (id ID) index() uint32 { return uint32(id & maxEntID) }

// edition tracks whether id is still valid for the current occupant
// of its slot.
func (id ID) edition() uint16 { return uint16((id >> idBits) & maxEdition) }

// Valid reports whether id looks like it could have been issued (not the
// reserved zero ID). It does not check liveness against an Arena; use
// Arena.Valid for that.
func (id ID) Valid() bool { return id != 0 }

// arenaFree starts recycling ids once the amount of disposed ids exceeds
// this size, matching the teacher's maxFree threshold.
const arenaFree = 1 << (edBits - 1)

// arena allocates and recycles entity identifiers. It ensures a limited
// set of unique identifiers that can double as slice indices.
type arena struct {
	editions []uint16 // current edition per index, 1-based (0 == never issued).
	free     []uint32 // indices queued for reuse once arenaFree is reached.
}

func newArena() *arena { return &arena{editions: []uint16{}, free: []uint32{}} }

// create returns a fresh ID. The reserved ID 0 is never issued.
func (a *arena) create() ID {
	var idx uint32
	if len(a.free) > arenaFree {
		idx = a.free[0]
		a.free = append(a.free[:0], a.free[1:]...)
	} else {
		a.editions = append(a.editions, 0)
		idx = uint32(len(a.editions))
		if idx > maxEntID {
			if len(a.free) == 0 {
				slog.Error("all entity identifiers in use", "max_entities", maxEntID+1)
				return 0
			}
			idx = a.free[0]
			a.free = append(a.free[:0], a.free[1:]...)
		}
	}
	return ID(idx | uint32(a.editions[idx-1])<<idBits)
}

// valid reports whether id refers to a currently live entity.
func (a *arena) valid(id ID) bool {
	idx := id.index()
	if idx == 0 || idx > uint32(len(a.editions)) {
		return false
	}
	return a.editions[idx-1] == id.edition()
}

// dispose invalidates id and queues its slot for reuse.
func (a *arena) dispose(id ID) {
	idx := id.index()
	if idx == 0 || idx > uint32(len(a.editions)) {
		return
	}
	a.editions[idx-1]++
	a.free = append(a.free, idx)
}

// reset discards all allocation state.
func (a *arena) reset() {
	a.editions = a.editions[:0]
	a.free = a.free[:0]
}
