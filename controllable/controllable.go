// Copyright © 2024 Galvanized Logic Inc.

// Package controllable implements the controllable-entity boundary
// (spec.md §4, glossary "Controllable entity"): it wraps a
// user-supplied Controller plus its Sensors and Actuators behind the
// four hooks a tick drives in strict phase order — act, sense,
// control_step, reset — following the teacher's pattern of a thin
// wrapper type (vu.Pov) that owns user-facing behaviour and delegates
// to registered sub-components rather than implementing domain logic
// itself.
package controllable

import (
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/index"
	"github.com/swarmkit/arena/kernelerr"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/media"
)

// Controller is the user boundary (spec.md §6 "Controller boundary").
type Controller interface {
	Init(config any) error
	Reset() error
	Destroy()
	ControlStep() error
}

// Sensor reads anchors and indices during the sense phase only; it
// must never mutate simulation state (spec.md §6: "a sensor's update
// must only read anchors and indices").
type Sensor interface {
	Init(config any) error
	Update(ctx SenseContext) error
	Reset() error
}

// Actuator pushes commands into engine models during the act phase
// only (spec.md §6: "an actuator's update must only push commands
// into engine models").
type Actuator interface {
	Init(config any) error
	Update(ctx ActContext) error
	Reset() error
}

// Ray is one ray checked by a sensor this tick, kept for
// visualization (spec.md glossary "Controllable entity": "a per-tick
// list of checked rays for visualization").
type Ray struct {
	Origin lin.V3
	Dir    lin.V3
}

// SenseContext is what a Sensor may read: anchors (via the owning
// entity), the frozen positional index, media readings, and the
// ray/AABB query layer. Implemented by package space.
type SenseContext interface {
	Index() index.Index
	Medium(name string) media.Medium
	ClosestIntersectedByRay(origin, dir lin.V3, exclude ...entity.ID) (hitID entity.ID, t float64, ok bool)
}

// ActContext is what an Actuator may write to: engine models, keyed
// by engine id. Implemented by package space.
type ActContext interface {
	Push(engineID string, id entity.ID, delta lin.V3)
}

// Entity couples a Controller and its Sensors/Actuators to an
// Embodied entity, enforcing the sense/control_step/act/reset phase
// boundary. Hooks are only invoked while Enabled is true (spec.md
// §4: "hooks are called ... on enabled entities only").
type Entity struct {
	*entity.Embodied

	Controller Controller
	Sensors    map[string]Sensor
	Actuators  map[string]Actuator
	Enabled    bool

	// PreStep and PostStep are this entity's loop-function hooks
	// (spec.md §6 "Loop-function boundary"), run by phases 5 and 7 of
	// the tick sequence (spec.md §4.6). Either may be left nil.
	PreStep  func(tick uint64, dt float64) error
	PostStep func(tick uint64, dt float64) error

	// HalfExtents sizes the query bounding box package space inserts
	// into the positional index for this entity. Defaults to
	// defaultHalfExtents when left zero.
	HalfExtents lin.V3

	checkedRays []Ray
}

// defaultHalfExtents is used for index insertion when HalfExtents is
// unset.
var defaultHalfExtents = lin.V3{X: 0.25, Y: 0.25, Z: 0.25}

// QueryAABB returns the world-space box package space should insert
// into the positional index for this entity this tick.
func (e *Entity) QueryAABB() lin.AABB {
	half := e.HalfExtents
	if half == (lin.V3{}) {
		half = defaultHalfExtents
	}
	return e.AABB(half)
}

// RunPreStep invokes PreStep if this entity is enabled and has one
// registered, a no-op otherwise.
func (e *Entity) RunPreStep(tick uint64, dt float64) error {
	if !e.Enabled || e.PreStep == nil {
		return nil
	}
	return e.PreStep(tick, dt)
}

// RunPostStep invokes PostStep if this entity is enabled and has one
// registered, a no-op otherwise.
func (e *Entity) RunPostStep(tick uint64, dt float64) error {
	if !e.Enabled || e.PostStep == nil {
		return nil
	}
	return e.PostStep(tick, dt)
}

// New wraps em with ctrl, starting enabled with no sensors/actuators
// registered.
func New(em *entity.Embodied, ctrl Controller) *Entity {
	return &Entity{
		Embodied:   em,
		Controller: ctrl,
		Sensors:    map[string]Sensor{},
		Actuators:  map[string]Actuator{},
		Enabled:    true,
	}
}

// Init initializes the controller then every sensor and actuator,
// stopping at the first failure.
func (e *Entity) Init(config any) error {
	if err := e.Controller.Init(config); err != nil {
		return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "controller init failed for entity %s", e.ID())
	}
	for name, s := range e.Sensors {
		if err := s.Init(config); err != nil {
			return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "sensor %q init failed for entity %s", name, e.ID())
		}
	}
	for name, a := range e.Actuators {
		if err := a.Init(config); err != nil {
			return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "actuator %q init failed for entity %s", name, e.ID())
		}
	}
	return nil
}

// Act runs every actuator's Update if this entity is enabled
// (phase 1, spec.md §4.6).
func (e *Entity) Act(ctx ActContext) error {
	if !e.Enabled {
		return nil
	}
	e.checkedRays = e.checkedRays[:0]
	for name, a := range e.Actuators {
		if err := a.Update(ctx); err != nil {
			return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "actuator %q failed for entity %s in act", name, e.ID())
		}
	}
	return nil
}

// Sense runs every sensor's Update, then ControlStep, in that order
// (phase 6, spec.md §4.6 "sense() then control_step()").
func (e *Entity) Sense(ctx SenseContext) error {
	if !e.Enabled {
		return nil
	}
	for name, s := range e.Sensors {
		if err := s.Update(ctx); err != nil {
			return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "sensor %q failed for entity %s in sense", name, e.ID())
		}
	}
	if err := e.Controller.ControlStep(); err != nil {
		return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "control_step failed for entity %s", e.ID())
	}
	return nil
}

// Reset clears sensor/actuator/controller state and discards this
// tick's checked-ray list. It does not touch pose — pose belongs to
// the physics model, not the controllable wrapper — matching the
// re-entry law that disable-then-enable restores pose but clears
// sensor readings.
func (e *Entity) Reset() error {
	e.checkedRays = nil
	for name, s := range e.Sensors {
		if err := s.Reset(); err != nil {
			return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "sensor %q reset failed for entity %s", name, e.ID())
		}
	}
	for name, a := range e.Actuators {
		if err := a.Reset(); err != nil {
			return kernelerr.Wrap(kernelerr.KindControllerFailure, err, "actuator %q reset failed for entity %s", name, e.ID())
		}
	}
	return e.Controller.Reset()
}

// Destroy tears down the controller. Sensors/Actuators carry no
// Destroy hook (spec.md §6 only names it for Controller).
func (e *Entity) Destroy() { e.Controller.Destroy() }

// RecordCheckedRay appends to this tick's visualization ray list,
// called by sensors that cast rays during Sense.
func (e *Entity) RecordCheckedRay(origin, dir lin.V3) {
	e.checkedRays = append(e.checkedRays, Ray{Origin: origin, Dir: dir})
}

// CheckedRays returns this tick's checked rays. Owned by e; callers
// must not mutate the returned slice.
func (e *Entity) CheckedRays() []Ray { return e.checkedRays }
