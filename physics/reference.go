// Copyright © 2024 Galvanized Logic Inc.

package physics

// reference.go is a minimal point-mass Engine used to exercise package
// space's scheduler and the kernel's own test scenarios. It is not a
// production rigid-body or point-mass engine — those are explicitly out
// of scope (spec.md §1) — it only implements just enough of the contract
// (constant-velocity integration, sphere/box volumes, AABB broad-phase
// collision, ray-sphere/ray-box intersection) to give the scheduler
// something real to drive. Kinematics follow the teacher's move.Mover
// fixed-timestep-integration shape (gazed/vu move/move.go); shape
// intersection follows the teacher's physics/caster.go conventions
// (t > 0 counts, tangential hits count, zero-length rays never hit).

import (
	"math"
	"sync"

	"github.com/swarmkit/arena/math/lin"
)

// Shape is the collision geometry a PointMassEngine body can carry.
type Shape interface {
	// aabb returns the shape's axis-aligned bounds centred on pos.
	aabb(pos lin.V3) lin.AABB
	// intersectRay tests the shape (placed at pos) against a ray
	// from origin in direction dir, dir already scaled so t==1 lands
	// on origin+dir.
	intersectRay(pos, origin, dir lin.V3) (hit bool, t float64)
}

// SphereShape is a ball of the given radius.
type SphereShape struct{ Radius float64 }

func (s SphereShape) aabb(pos lin.V3) lin.AABB {
	half := lin.V3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return *lin.BoxFromCentre(&pos, &half)
}

// intersectRay follows the teacher's castRaySphere (physics/caster.go):
// project the sphere centre onto the ray, reject if the closest approach
// is behind the origin or further than the radius, otherwise solve for
// the near intersection distance.
func (s SphereShape) intersectRay(pos, origin, dir lin.V3) (bool, float64) {
	length := dir.Len()
	if lin.Aeq(length, 0) {
		return false, 0 // zero-length ray: never a hit.
	}
	unit := *new(lin.V3).Scale(&dir, 1/length)
	toCentre := *new(lin.V3).Sub(&pos, &origin)
	proj := unit.Dot(&toCentre)
	if proj < 0 {
		return false, 0
	}
	distSqr := toCentre.Dot(&toCentre) - proj*proj
	radiusSqr := s.Radius * s.Radius
	if distSqr > radiusSqr {
		return false, 0
	}
	near := proj - math.Sqrt(radiusSqr-distSqr)
	if near <= 0 {
		return false, 0 // ray origin inside the sphere: t>0 rule excludes it.
	}
	t := near / length
	if t > 1 {
		return false, 0
	}
	return true, t
}

// BoxShape is an axis-aligned box of the given half-extents.
type BoxShape struct{ Half lin.V3 }

func (b BoxShape) aabb(pos lin.V3) lin.AABB {
	return *lin.BoxFromCentre(&pos, &b.Half)
}

func (b BoxShape) intersectRay(pos, origin, dir lin.V3) (bool, float64) {
	box := b.aabb(pos)
	return lin.IntersectRayAABB(&origin, &dir, 1.0, &box)
}

// pointMassBody is one entity's state inside a PointMassEngine.
type pointMassBody struct {
	id       ID
	shape    Shape
	pos      lin.V3
	rot      lin.Q
	vel      lin.V3
	movable  bool
	colliding bool
}

// PointMassEngine integrates bodies at constant velocity (no forces, no
// rotation dynamics) inside an axis-aligned volume, and answers ray and
// collision queries via a brute-force O(n^2) broad phase — adequate for
// kernel tests, not for production swarm sizes.
type PointMassEngine struct {
	id      string
	volume  lin.AABB
	tickDur float64 // seconds per physics tick, fixed.
	iters   int     // sub-step iterations configured for this engine.
	simTick uint64

	mu    sync.Mutex
	bodies map[ID]*pointMassBody
	xfer   map[ID]bool
}

// NewPointMassEngine creates an engine owning the given spatial volume.
func NewPointMassEngine(id string, volume lin.AABB, tickDur float64) *PointMassEngine {
	return &PointMassEngine{
		id:      id,
		volume:  volume,
		tickDur: tickDur,
		bodies:  map[ID]*pointMassBody{},
		xfer:    map[ID]bool{},
	}
}

// SetShape replaces id's collision shape. It does nothing if id has not
// been added via AddEntity; it does not create a body.
func (e *PointMassEngine) SetShape(id ID, shape Shape) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		b.shape = shape
	}
}

func (e *PointMassEngine) EngineID() string { return e.id }

// AddEntity seats id in this engine at pos/rot, creating a default
// SphereShape(0.5) body. It rejects (returns false) an id already present
// in this engine rather than overwriting it; callers that intend to
// re-seat an already-present id must RemoveEntity it first.
func (e *PointMassEngine) AddEntity(id ID, pos lin.V3, rot lin.Q, movable bool) bool {
	if !e.IsPointContained(pos) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.bodies[id]; ok {
		return false
	}
	e.bodies[id] = &pointMassBody{id: id, pos: pos, rot: rot, movable: movable, shape: SphereShape{Radius: 0.5}}
	return true
}

func (e *PointMassEngine) RemoveEntity(id ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.bodies[id]; !ok {
		return false
	}
	delete(e.bodies, id)
	delete(e.xfer, id)
	return true
}

// Update integrates every movable body by dt split into substeps equal
// sub-intervals, then refreshes collision and transfer flags.
func (e *PointMassEngine) Update(dt float64, substeps int) {
	if substeps < 1 {
		substeps = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := dt / float64(substeps)
	for s := 0; s < substeps; s++ {
		for _, b := range e.bodies {
			if !b.movable {
				continue
			}
			delta := *new(lin.V3).Scale(&b.vel, sub)
			b.pos.Add(&b.pos, &delta)
		}
	}
	e.simTick++

	for id, b := range e.bodies {
		if b.movable && !e.IsPointContained(b.pos) {
			e.xfer[id] = true
		}
	}
	e.refreshCollisionsLocked()
}

func (e *PointMassEngine) refreshCollisionsLocked() {
	ids := make([]ID, 0, len(e.bodies))
	for id := range e.bodies {
		ids = append(ids, id)
	}
	for _, b := range e.bodies {
		b.colliding = false
	}
	for i := 0; i < len(ids); i++ {
		bi := e.bodies[ids[i]]
		boxI := bi.shape.aabb(bi.pos)
		for j := i + 1; j < len(ids); j++ {
			bj := e.bodies[ids[j]]
			boxJ := bj.shape.aabb(bj.pos)
			if boxI.Intersects(&boxJ) {
				bi.colliding = true
				bj.colliding = true
			}
		}
	}
}

func (e *PointMassEngine) IsEntityTransferNeeded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.xfer) > 0
}

func (e *PointMassEngine) PendingTransfers() []ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ID, 0, len(e.xfer))
	for id := range e.xfer {
		out = append(out, id)
	}
	return out
}

func (e *PointMassEngine) IsPointContained(p lin.V3) bool { return e.volume.Contains(&p) }

func (e *PointMassEngine) CheckIntersectionWithRay(origin, dir lin.V3) []RayHit {
	e.mu.Lock()
	defer e.mu.Unlock()
	var hits []RayHit
	for id, b := range e.bodies {
		if hit, t := b.shape.intersectRay(b.pos, origin, dir); hit {
			hits = append(hits, RayHit{EntityID: id, T: t})
		}
	}
	return hits
}

func (e *PointMassEngine) Push(id ID, delta lin.V3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		b.vel.Add(&b.vel, &delta)
	}
}

func (e *PointMassEngine) Pose(id ID) (lin.V3, lin.Q, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bodies[id]
	if !ok {
		return lin.V3{}, lin.Q{}, false
	}
	return b.pos, b.rot, true
}

func (e *PointMassEngine) Speed(id ID) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bodies[id]
	if !ok {
		return 0, false
	}
	return b.vel.Len(), true
}

func (e *PointMassEngine) IsColliding(id ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[id]; ok {
		return b.colliding
	}
	return false
}

func (e *PointMassEngine) NumModels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bodies)
}

func (e *PointMassEngine) Iterations() int           { return e.iters }
func (e *PointMassEngine) PhysicsClockTick() float64 { return e.tickDur }
func (e *PointMassEngine) SimulationClockTick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simTick
}

// FastestSpeed returns the speed of the fastest-moving body, used by
// package space to choose the sub-step count per spec.md §4.7.
func (e *PointMassEngine) FastestSpeed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	fastest := 0.0
	for _, b := range e.bodies {
		if s := b.vel.Len(); s > fastest {
			fastest = s
		}
	}
	return fastest
}
