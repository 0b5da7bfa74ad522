// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/math/lin"
)

// EngineModel is the entity.PhysicsModel adapter seating one embodied
// entity's anchor in one of its owning Space's engines (spec.md §3
// "Physics model"). It resolves its owning engine by id on every call
// rather than caching one, since entity-transfer (spec.md §4.3, phase
// 3) can re-seat the entity in a different engine between ticks.
type EngineModel struct {
	engines func() []Engine
	id      ID
	anchor  *entity.Anchor
	movable bool
}

// NewEngineModel builds a model for id, refreshing anchor from whichever
// engine in engines() currently owns id. engines is called fresh on
// every lookup rather than captured once, so it should be cheap (eg. a
// snapshot of a small slice under a mutex).
func NewEngineModel(engines func() []Engine, id ID, anchor *entity.Anchor, movable bool) *EngineModel {
	return &EngineModel{engines: engines, id: id, anchor: anchor, movable: movable}
}

func (m *EngineModel) owner() Engine {
	for _, e := range m.engines() {
		if _, _, ok := e.Pose(m.id); ok {
			return e
		}
	}
	return nil
}

// MoveTo forces the owning engine to re-seat id at pos/rot, bypassing
// simulation, then refreshes the anchor to match.
func (m *EngineModel) MoveTo(pos lin.V3, rot lin.Q) {
	if e := m.owner(); e != nil {
		e.RemoveEntity(m.id)
		e.AddEntity(m.id, pos, rot, m.movable)
	}
	m.anchor.Refresh(pos, rot)
}

// UpdateFromEntityStatus is a no-op in this binding: actuators push
// commands straight into the engine via the act phase's ActContext, so
// by the time physics runs the body already reflects the latest
// command and there is nothing buffered here to commit.
func (m *EngineModel) UpdateFromEntityStatus() {}

// UpdateEntityStatus pulls the owning engine's post-step pose back into
// the anchor, invoking every updater registered on it (spec.md §4.1
// "body -> anchors").
func (m *EngineModel) UpdateEntityStatus() {
	e := m.owner()
	if e == nil {
		return
	}
	pos, rot, ok := e.Pose(m.id)
	if !ok {
		return
	}
	m.anchor.Refresh(pos, rot)
}

// IsColliding reports the owning engine's most recent collision result
// for id, or false if no engine currently owns it.
func (m *EngineModel) IsColliding() bool {
	if e := m.owner(); e != nil {
		return e.IsColliding(m.id)
	}
	return false
}

// CheckIntersectionWithRay tests the owning engine's copy of id's shape
// against the given ray.
func (m *EngineModel) CheckIntersectionWithRay(origin, dir lin.V3) (bool, float64) {
	e := m.owner()
	if e == nil {
		return false, 0
	}
	for _, hit := range e.CheckIntersectionWithRay(origin, dir) {
		if hit.EntityID == m.id {
			return true, hit.T
		}
	}
	return false, 0
}
