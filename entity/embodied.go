// Copyright © 2024 Galvanized Logic Inc.

package entity

// embodied.go adds physics-model backed bodies to composable entities
// (spec.md §3 "Embodied entity"). Modeled on the teacher's bodies/
// simulation component managers (gazed/vu body.go, simulation.go) which
// keep a dense physics-body array keyed by entity id; here the "dense
// array" is per-Embodied since each entity owns at most one model per
// engine rather than the kernel owning one global table.

import "github.com/swarmkit/arena/math/lin"

// PhysicsModel is one engine's representation of one embodied entity
// (spec.md §3 "Physics model"). Declared here, not in package physics, so
// that Embodied can hold a model without physics depending back on entity
// for the embodied type — physics.EngineModel satisfies this
// interface structurally.
type PhysicsModel interface {
	// MoveTo forces the model to a pose, bypassing simulation (eg. scene
	// init, teleport, or entity-transfer re-seating in the new engine).
	MoveTo(pos lin.V3, rot lin.Q)

	// UpdateFromEntityStatus pushes actuator-written commands into the
	// model ahead of the engine's physics step ("actuator -> body").
	UpdateFromEntityStatus()

	// UpdateEntityStatus pulls the model's post-step pose back into the
	// owning anchors ("body -> anchors"), running every anchor updater
	// registered at construction time.
	UpdateEntityStatus()

	// IsColliding reports whether the model is presently in contact with
	// another body in the same engine.
	IsColliding() bool

	// CheckIntersectionWithRay tests the model's collision shape against
	// a ray given as an origin and direction, normalized so a hit's
	// parameter t lies in [0,1] along the segment [origin, origin+dir].
	CheckIntersectionWithRay(origin, dir lin.V3) (hit bool, t float64)
}

// Embodied decorates an Entity with physics models, a bounding box, and
// the collision/movable flags spec.md §3 requires.
type Embodied struct {
	*Entity

	Movable   bool
	Collides  bool
	collision bool // last tick's is_colliding result, cached for sensors.

	anchorNames []string // insertion order, "origin" always first.
	anchors     map[string]*Anchor

	models map[string]PhysicsModel // keyed by engine id; one per engine.

	aabb      lin.AABB
	aabbDirty bool // true after any pose mutation; recomputed lazily.
}

// NewEmbodied wraps e with an origin anchor and empty model set.
func NewEmbodied(e *Entity, movable bool) *Embodied {
	em := &Embodied{
		Entity:      e,
		Movable:     movable,
		anchorNames: []string{"origin"},
		anchors:     map[string]*Anchor{"origin": NewAnchor("origin")},
		models:      map[string]PhysicsModel{},
		aabbDirty:   true,
	}
	return em
}

// AddAnchor registers an additional named anchor (eg. "body",
// "end_effector") beyond the always-present "origin".
func (em *Embodied) AddAnchor(name string) *Anchor {
	if a, ok := em.anchors[name]; ok {
		return a
	}
	a := NewAnchor(name)
	em.anchors[name] = a
	em.anchorNames = append(em.anchorNames, name)
	return a
}

// Anchor returns the named anchor, or nil if it was never registered.
func (em *Embodied) Anchor(name string) *Anchor { return em.anchors[name] }

// Origin is a convenience accessor for the always-present origin anchor.
func (em *Embodied) Origin() *Anchor { return em.anchors["origin"] }

// Anchors returns every anchor in registration order ("origin" first).
func (em *Embodied) Anchors() []*Anchor {
	out := make([]*Anchor, 0, len(em.anchorNames))
	for _, n := range em.anchorNames {
		out = append(out, em.anchors[n])
	}
	return out
}

// SetModel installs (or replaces) the physics model this entity uses in
// engineID, populated at engine-add time per spec.md §3 lifecycle.
func (em *Embodied) SetModel(engineID string, m PhysicsModel) {
	em.models[engineID] = m
	em.aabbDirty = true
}

// Model returns the model this entity uses in engineID, or nil.
func (em *Embodied) Model(engineID string) PhysicsModel { return em.models[engineID] }

// RemoveModel drains the model for engineID, eg. on engine-remove or after
// an entity-transfer has re-seated the entity elsewhere.
func (em *Embodied) RemoveModel(engineID string) { delete(em.models, engineID) }

// ModelEngines returns every engine id this entity currently has a model in.
func (em *Embodied) ModelEngines() []string {
	out := make([]string, 0, len(em.models))
	for id := range em.models {
		out = append(out, id)
	}
	return out
}

// MarkDirty flags the bounding box stale after an external pose mutation
// (eg. a physics step outside of Embodied's own knowledge).
func (em *Embodied) MarkDirty() { em.aabbDirty = true }

// AABB returns the entity's world-space bounding box, recomputing it from
// the origin anchor and half-extents if a pose mutation happened since the
// last read — spec.md §3 "bounding-box recalculation is deferred to the
// next read after any pose mutation."
func (em *Embodied) AABB(halfExtents lin.V3) lin.AABB {
	if em.aabbDirty {
		origin := em.Origin()
		em.aabb = *lin.BoxFromCentre(&origin.Position, &halfExtents)
		em.aabbDirty = false
	}
	return em.aabb
}

// SetColliding records this tick's collision result for IsCollisionDetected
// readers (spec.md scenario 2).
func (em *Embodied) SetColliding(colliding bool) { em.collision = colliding }

// IsCollisionDetected returns the most recent collision result.
func (em *Embodied) IsCollisionDetected() bool { return em.collision }
