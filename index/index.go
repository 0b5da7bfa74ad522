// Copyright © 2024 Galvanized Logic Inc.

// Package index implements the positional indices that accelerate
// box/sphere range queries over embodied and emitter entities: a
// uniform grid cell list and a linear-probe space hash keyed by
// integer-quantised coordinates. Both satisfy the same Index contract
// so package space can swap the backing structure without touching
// its query call sites — the same shape as the teacher's grid.Grid
// interface (gazed/vu grid/grid.go) hiding several concrete generators
// behind one Size/IsOpen-style contract.
package index

import "github.com/swarmkit/arena/math/lin"

// RangeOp is the continuation callback passed to a range query. It
// returns false to stop the walk early.
type RangeOp func(id uint32) bool

// Index is a geometric acceleration structure over entity identifiers.
// Implementations hold only weak references (plain uint32 ids); they
// never own entity lifetime. Updates must happen between the physics
// and sense phases of a tick (spec.md §4.2); queries are read-only and
// safe to run concurrently once an update has completed.
type Index interface {
	// Clear empties the structure, ready for this tick's Update calls.
	Clear()

	// UpdateAABB inserts id into every cell its axis-aligned bounds
	// overlap, for embodied entities.
	UpdateAABB(id uint32, box lin.AABB)

	// UpdateRange inserts id into every cell within radius of centre,
	// for range-limited emitters (LEDs, range-and-bearing transmitters).
	UpdateRange(id uint32, centre lin.V3, radius float64)

	// ForEntitiesInBoxRange walks every id whose cell(s) overlap the
	// query box, each exactly once, until op returns false.
	ForEntitiesInBoxRange(centre, halfExtents lin.V3, op RangeOp)

	// ForEntitiesInSphereRange walks every id whose cell(s) overlap the
	// query sphere, each exactly once, until op returns false.
	ForEntitiesInSphereRange(centre lin.V3, radius float64, op RangeOp)
}

// cellKey is an integer-quantised grid coordinate.
type cellKey struct{ x, y, z int32 }

// quantise maps a world coordinate to a cell coordinate of the given
// cell size. Uses floor division so negative coordinates quantise
// consistently with positive ones.
func quantise(v float64, cellSize float64) int32 {
	c := v / cellSize
	f := int32(c)
	if c < 0 && float64(f) != c {
		f--
	}
	return f
}

func quantisePoint(p lin.V3, cellSize float64) cellKey {
	return cellKey{quantise(p.X, cellSize), quantise(p.Y, cellSize), quantise(p.Z, cellSize)}
}
