// Copyright © 2024 Galvanized Logic Inc.

package index

import "github.com/swarmkit/arena/math/lin"

// UniformGrid is a cell-list positional index: each occupied cell maps
// to the ids whose geometry overlaps it. Good default when entities
// are reasonably evenly spread over the simulated volume.
type UniformGrid struct {
	cellSize float64
	cells    map[cellKey][]uint32
}

// NewUniformGrid creates a grid with the given cell edge length. Pick
// cellSize close to the typical entity/emitter extent; too small
// multiplies cell membership per entity, too large defeats culling.
func NewUniformGrid(cellSize float64) *UniformGrid {
	return &UniformGrid{cellSize: cellSize, cells: map[cellKey][]uint32{}}
}

func (g *UniformGrid) Clear() {
	for k := range g.cells {
		delete(g.cells, k)
	}
}

func (g *UniformGrid) insert(k cellKey, id uint32) {
	g.cells[k] = append(g.cells[k], id)
}

func (g *UniformGrid) UpdateAABB(id uint32, box lin.AABB) {
	lo := quantisePoint(box.Min, g.cellSize)
	hi := quantisePoint(box.Max, g.cellSize)
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				g.insert(cellKey{x, y, z}, id)
			}
		}
	}
}

// UpdateRange inserts id into every cell (i,j,k) around the quantised
// centre with i²+j²+k² ≤ r², matching the eight-symmetric-cell pass
// spec.md §4.2 describes for range-limited emitters, guarded against
// double-counting an axis (the i==0/j==0/k==0 planes are only ever
// visited once, not mirrored).
func (g *UniformGrid) UpdateRange(id uint32, centre lin.V3, radius float64) {
	c := quantisePoint(centre, g.cellSize)
	r := int32(radius/g.cellSize) + 1
	rSqr := r * r
	for i := -r; i <= r; i++ {
		for j := -r; j <= r; j++ {
			for k := -r; k <= r; k++ {
				if i*i+j*j+k*k > rSqr {
					continue
				}
				g.insert(cellKey{c.x + i, c.y + j, c.z + k}, id)
			}
		}
	}
}

func (g *UniformGrid) ForEntitiesInBoxRange(centre, halfExtents lin.V3, op RangeOp) {
	box := lin.BoxFromCentre(&centre, &halfExtents)
	lo := quantisePoint(box.Min, g.cellSize)
	hi := quantisePoint(box.Max, g.cellSize)
	visited := map[uint32]bool{}
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				for _, id := range g.cells[cellKey{x, y, z}] {
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

func (g *UniformGrid) ForEntitiesInSphereRange(centre lin.V3, radius float64, op RangeOp) {
	half := lin.V3{X: radius, Y: radius, Z: radius}
	g.ForEntitiesInBoxRange(centre, half, op)
}
