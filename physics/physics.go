// Copyright © 2024 Galvanized Logic Inc.

// Package physics defines the opaque physics-engine contract (spec.md
// §4.3): engines own rigid-body-or-point-mass models, advance them by a
// fixed timestep, resolve collisions, answer ray queries, and hand
// entities off to a sibling engine when they leave their spatial volume.
//
// Concrete rigid-body/point-mass engines are explicitly out of scope
// (spec.md §1) — only the contract and the cross-engine transfer
// coordinator live here, plus a minimal point-mass reference engine kept
// for the kernel's own tests (PointMassEngine, in reference.go), the way
// the teacher keeps a reference Mover implementation in package move
// behind the same Body/Mover contract it exposes to applications.
package physics

import (
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/math/lin"
)

// ID is the entity identifier engines key their models by. It is the
// same id space as package entity's, re-exported here so engine
// implementations do not need to import entity just for the type name.
type ID = entity.ID

// RayHit is one engine's answer for a ray query: the entity hit and the
// intersection parameter, normalized so 0 < t <= 1 over the query
// segment (spec.md §6 "Ray query result format").
type RayHit struct {
	EntityID ID
	T        float64
}

// Engine is the per-physics-engine contract (spec.md §4.3). Every engine
// is independent; the only cross-engine interaction is entity transfer,
// coordinated by TransferEntities in this package.
type Engine interface {
	// EngineID names this engine for logging, metrics, and as the key
	// entity.Embodied.Model is indexed under.
	EngineID() string

	// AddEntity installs a physics model for id at pose, returning true
	// if the engine accepted responsibility for it (eg. because the pose
	// falls within the engine's spatial volume).
	AddEntity(id ID, pos lin.V3, rot lin.Q, movable bool) bool

	// RemoveEntity drops the model for id, returning true if it existed.
	RemoveEntity(id ID) bool

	// Update advances every owned model by one physics tick, split into
	// the given number of sub-steps (spec.md §4.7 "Sub-stepping").
	Update(dt float64, substeps int)

	// IsEntityTransferNeeded reports whether any owned model has left
	// this engine's spatial volume and is waiting on TransferEntities.
	IsEntityTransferNeeded() bool

	// PendingTransfers returns the ids flagged for transfer since the
	// last TransferEntities call, without removing them.
	PendingTransfers() []ID

	// IsPointContained is the spatial volume predicate used both to
	// decide which engine accepts a transferred entity and, internally,
	// to detect when an owned model has left the volume.
	IsPointContained(p lin.V3) bool

	// CheckIntersectionWithRay tests every owned model's collision shape
	// against the ray from origin in direction dir (unnormalized; a
	// parameter of 1.0 lands on origin+dir), returning every hit with
	// 0 < t <= 1, not sorted.
	CheckIntersectionWithRay(origin, dir lin.V3) []RayHit

	// Push writes an actuator-issued linear velocity delta into id's
	// model. Has no effect on unknown or non-movable ids.
	Push(id ID, delta lin.V3)

	// Pose returns id's current position and orientation, and whether id
	// is owned by this engine.
	Pose(id ID) (pos lin.V3, rot lin.Q, ok bool)

	// Speed returns id's current linear speed (for §4.7 sub-step
	// threshold selection) and whether id is owned by this engine.
	Speed(id ID) (speed float64, ok bool)

	// IsColliding reports id's most recent collision result.
	IsColliding(id ID) bool

	// NumModels, Iterations, PhysicsClockTick and SimulationClockTick
	// report the diagnostics spec.md §4.3 requires engines to expose.
	NumModels() int
	Iterations() int
	PhysicsClockTick() float64
	SimulationClockTick() uint64
}
