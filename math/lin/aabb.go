// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// aabb.go adds axis-aligned-bounding-box and ray-box math on top of the
// vector/quaternion primitives in vector.go and quaternion.go. It follows
// the same "avoid instantiating new structures, prefer pointers" style as
// the rest of this package.

// AABB is an axis aligned bounding box described by its min and max corners.
type AABB struct {
	Min V3
	Max V3
}

// Union grows the box to also contain b, returning the updated box.
func (a *AABB) Union(b *AABB) *AABB {
	if b.Min.X < a.Min.X {
		a.Min.X = b.Min.X
	}
	if b.Min.Y < a.Min.Y {
		a.Min.Y = b.Min.Y
	}
	if b.Min.Z < a.Min.Z {
		a.Min.Z = b.Min.Z
	}
	if b.Max.X > a.Max.X {
		a.Max.X = b.Max.X
	}
	if b.Max.Y > a.Max.Y {
		a.Max.Y = b.Max.Y
	}
	if b.Max.Z > a.Max.Z {
		a.Max.Z = b.Max.Z
	}
	return a
}

// Contains returns true if point p is inside the box, inclusive of the
// boundary.
func (a *AABB) Contains(p *V3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Intersects returns true if box a and box b overlap on all three axes.
func (a *AABB) Intersects(b *AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Centre returns the midpoint of the box.
func (a *AABB) Centre() V3 {
	return V3{
		X: (a.Min.X + a.Max.X) * 0.5,
		Y: (a.Min.Y + a.Max.Y) * 0.5,
		Z: (a.Min.Z + a.Max.Z) * 0.5,
	}
}

// HalfExtents returns the half-widths of the box along each axis.
func (a *AABB) HalfExtents() V3 {
	return V3{
		X: (a.Max.X - a.Min.X) * 0.5,
		Y: (a.Max.Y - a.Min.Y) * 0.5,
		Z: (a.Max.Z - a.Min.Z) * 0.5,
	}
}

// BoxFromCentre builds an AABB from a centre point and half-extents.
func BoxFromCentre(centre, halfExtents *V3) *AABB {
	return &AABB{
		Min: V3{X: centre.X - halfExtents.X, Y: centre.Y - halfExtents.Y, Z: centre.Z - halfExtents.Z},
		Max: V3{X: centre.X + halfExtents.X, Y: centre.Y + halfExtents.Y, Z: centre.Z + halfExtents.Z},
	}
}

// IntersectRayAABB implements the slab method for a ray defined by an
// origin and direction against box b. A ray only counts as a hit when the
// entry parameter t is greater than zero (tangential hits, t == the box
// boundary, still count); zero-length rays (dir == 0,0,0) never hit.
// tMax bounds the search to the ray segment, eg. pass 1.0 for a ray
// normalized so that t is already in [0,1].
func IntersectRayAABB(origin, dir *V3, tMax float64, b *AABB) (hit bool, t float64) {
	if dir.X == 0 && dir.Y == 0 && dir.Z == 0 {
		return false, 0
	}
	tmin, tmax := 0.0, tMax
	axes := [3]struct{ o, d, lo, hi float64 }{
		{origin.X, dir.X, b.Min.X, b.Max.X},
		{origin.Y, dir.Y, b.Min.Y, b.Max.Y},
		{origin.Z, dir.Z, b.Min.Z, b.Max.Z},
	}
	for _, ax := range axes {
		if Aeq(ax.d, 0) {
			if ax.o < ax.lo || ax.o > ax.hi {
				return false, 0
			}
			continue
		}
		inv := 1.0 / ax.d
		t0 := (ax.lo - ax.o) * inv
		t1 := (ax.hi - ax.o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return false, 0
		}
	}
	if tmin <= 0 {
		// ray origin inside the box: only the exit point is ahead,
		// but an origin-inside hit is not a forward intersection (t>0 rule).
		if tmax > 0 {
			return true, tmax
		}
		return false, 0
	}
	return true, tmin
}
