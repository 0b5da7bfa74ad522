// Copyright © 2024 Galvanized Logic Inc.

// Package media implements the per-channel observation registries
// (spec.md §4.4): transmitting entities register with a named medium
// at init; each media phase the medium recomputes, per receiver, which
// currently-enabled emitters are in range and unoccluded. Readings
// computed in tick N are visible to sensors in tick N's sense phase,
// following the teacher's pattern of a registry type owning the
// members it was handed at init and recomputing derived state once
// per update call (vu/role.go's per-frame recompute-from-registered
// style).
package media

import (
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/index"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/physics"
)

// Occluder answers whether a ray between two emitter/receiver poses is
// blocked by any physics engine's geometry. NewPhysicsOccluder supplies
// the implementation; package space builds one from its live engine set
// each media phase.
type Occluder interface {
	// Occluded reports true if something solid lies strictly between
	// from and to (excluding the emitter and receiver entities
	// themselves).
	Occluded(from, to lin.V3, exclude ...entity.ID) bool
}

// Medium is the per-channel registry contract (spec.md glossary
// "Medium"). Implementations are channel-specific (range-and-bearing,
// LEDs); Update is called once per media phase.
type Medium interface {
	// Name identifies the channel, eg. for error/metric labelling.
	Name() string

	// RegisterEmitter and RegisterReceiver add a participant; both may
	// be called for the same entity id (a robot transmitting its own
	// LED colour while also reading its neighbours').
	RegisterEmitter(id entity.ID, pos lin.V3)
	RegisterReceiver(id entity.ID, pos lin.V3, rangeLimit float64)

	// Deregister removes id from both roles, eg. on entity disposal.
	Deregister(id entity.ID)

	// SyncPositions refreshes every registered participant's position
	// from pose, called once per media phase before Update so occlusion
	// and range queries see this tick's post-physics poses rather than
	// registration-time snapshots. Ids pose reports nothing for are left
	// at their last known position.
	SyncPositions(pose func(id entity.ID) (lin.V3, bool))

	// Update recomputes every receiver's reading list for this tick.
	Update(idx index.Index, occluder Occluder)

	// Readings returns receiver id's observations as of the last
	// Update. The slice is owned by the medium; callers must not
	// mutate it.
	Readings(receiver entity.ID) []Reading
}

// Reading is one observed emitter, from a particular receiver's point
// of view.
type Reading struct {
	EmitterID entity.ID
	Range     float64 // distance between receiver and emitter.
	Bearing   lin.V3  // unit vector from receiver towards emitter.
	Payload   any     // channel-specific data (eg. LED colour, RAB message).
}

// enabledPoint is shared bookkeeping for one registered participant.
type enabledPoint struct {
	id      entity.ID
	pos     lin.V3
	enabled bool
}

// physicsEngineOccluder adapts a fixed set of physics.Engine values
// into an Occluder, ray-casting against every engine and treating any
// hit (other than the two endpoints' own entities) as occlusion.
type physicsEngineOccluder struct{ engines []physics.Engine }

// NewPhysicsOccluder builds an Occluder backed by engines, the way
// spec.md §4.4 requires occlusion to be "tested via ray queries
// against engines".
func NewPhysicsOccluder(engines []physics.Engine) Occluder {
	return &physicsEngineOccluder{engines: engines}
}

func (o *physicsEngineOccluder) Occluded(from, to lin.V3, exclude ...entity.ID) bool {
	excl := make(map[entity.ID]bool, len(exclude))
	for _, id := range exclude {
		excl[id] = true
	}
	dir := *new(lin.V3).Sub(&to, &from)
	length := dir.Len()
	if lin.Aeq(length, 0) {
		return false
	}
	for _, eng := range o.engines {
		for _, hit := range eng.CheckIntersectionWithRay(from, dir) {
			if excl[entity.ID(hit.EntityID)] {
				continue
			}
			if hit.T > 0 && hit.T < 1 {
				return true
			}
		}
	}
	return false
}
