// Copyright © 2024 Galvanized Logic Inc.

package index

import "github.com/swarmkit/arena/math/lin"

// spaceHashSlot is one linear-probe bucket: a quantised cell key and
// the ids currently hashed into it. An empty slot is distinguished by
// occupied == false rather than a sentinel key, so key {0,0,0} is a
// valid occupied cell.
type spaceHashSlot struct {
	key      cellKey
	occupied bool
	ids      []uint32
}

// SpaceHash is a fixed-capacity linear-probe hash table of cells,
// trading UniformGrid's unbounded Go-map growth for a flat array with
// predictable memory, at the cost of needing a capacity hint and
// tolerating probe-chain growth under heavy collision.
type SpaceHash struct {
	cellSize float64
	slots    []spaceHashSlot
}

// NewSpaceHash creates a space hash with the given cell edge length
// and table capacity. capacity should exceed the expected number of
// distinct occupied cells per tick; it grows (doubling, rehashing) if
// the probe chain saturates.
func NewSpaceHash(cellSize float64, capacity int) *SpaceHash {
	if capacity < 16 {
		capacity = 16
	}
	return &SpaceHash{cellSize: cellSize, slots: make([]spaceHashSlot, capacity)}
}

func hashCell(k cellKey) uint64 {
	// Fowler-Noll-Vo (FNV-1a) style mix over the three quantised coordinates.
	h := uint64(1469598103934665603)
	mix := func(h uint64, v int32) uint64 {
		h ^= uint64(uint32(v))
		h *= 1099511628211
		return h
	}
	h = mix(h, k.x)
	h = mix(h, k.y)
	h = mix(h, k.z)
	return h
}

func (s *SpaceHash) Clear() {
	for i := range s.slots {
		s.slots[i] = spaceHashSlot{}
	}
}

// find returns the slot index for key, probing linearly from its home
// slot. insert controls whether an unoccupied slot may be claimed.
func (s *SpaceHash) find(key cellKey, insert bool) int {
	n := len(s.slots)
	home := int(hashCell(key) % uint64(n))
	for i := 0; i < n; i++ {
		idx := (home + i) % n
		slot := &s.slots[idx]
		if !slot.occupied {
			if insert {
				return idx
			}
			return -1
		}
		if slot.key == key {
			return idx
		}
	}
	return -1 // table full; caller should grow.
}

func (s *SpaceHash) growAndRehash() {
	old := s.slots
	s.slots = make([]spaceHashSlot, len(old)*2)
	for _, slot := range old {
		if !slot.occupied {
			continue
		}
		idx := s.find(slot.key, true)
		s.slots[idx] = slot
	}
}

func (s *SpaceHash) insert(key cellKey, id uint32) {
	idx := s.find(key, true)
	if idx < 0 {
		s.growAndRehash()
		idx = s.find(key, true)
	}
	slot := &s.slots[idx]
	if !slot.occupied {
		slot.key = key
		slot.occupied = true
	}
	slot.ids = append(slot.ids, id)
}

func (s *SpaceHash) UpdateAABB(id uint32, box lin.AABB) {
	lo := quantisePoint(box.Min, s.cellSize)
	hi := quantisePoint(box.Max, s.cellSize)
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				s.insert(cellKey{x, y, z}, id)
			}
		}
	}
}

// UpdateRange mirrors UniformGrid.UpdateRange's symmetric-cell pass,
// see spec.md §4.2. The double-counting guard here is structural: each
// (i,j,k) triple in the cube is visited exactly once regardless of
// sign, so no axis reflection can revisit a cell already inserted in
// this call.
func (s *SpaceHash) UpdateRange(id uint32, centre lin.V3, radius float64) {
	c := quantisePoint(centre, s.cellSize)
	r := int32(radius/s.cellSize) + 1
	rSqr := r * r
	for i := -r; i <= r; i++ {
		for j := -r; j <= r; j++ {
			for k := -r; k <= r; k++ {
				if i*i+j*j+k*k > rSqr {
					continue
				}
				s.insert(cellKey{c.x + i, c.y + j, c.z + k}, id)
			}
		}
	}
}

func (s *SpaceHash) cellIDs(key cellKey) []uint32 {
	idx := s.find(key, false)
	if idx < 0 {
		return nil
	}
	return s.slots[idx].ids
}

func (s *SpaceHash) ForEntitiesInBoxRange(centre, halfExtents lin.V3, op RangeOp) {
	box := lin.BoxFromCentre(&centre, &halfExtents)
	lo := quantisePoint(box.Min, s.cellSize)
	hi := quantisePoint(box.Max, s.cellSize)
	visited := map[uint32]bool{}
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				for _, id := range s.cellIDs(cellKey{x, y, z}) {
					if visited[id] {
						continue
					}
					visited[id] = true
					if !op(id) {
						return
					}
				}
			}
		}
	}
}

func (s *SpaceHash) ForEntitiesInSphereRange(centre lin.V3, radius float64, op RangeOp) {
	half := lin.V3{X: radius, Y: radius, Z: radius}
	s.ForEntitiesInBoxRange(centre, half, op)
}
