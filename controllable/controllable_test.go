// Copyright © 2024 Galvanized Logic Inc.

package controllable

import (
	"errors"
	"testing"

	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/index"
	"github.com/swarmkit/arena/kernelerr"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/media"
)

type recordingController struct {
	steps    int
	resets   int
	destroys int
	failNext bool
}

func (c *recordingController) Init(any) error { return nil }
func (c *recordingController) Reset() error    { c.resets++; return nil }
func (c *recordingController) Destroy()        { c.destroys++ }
func (c *recordingController) ControlStep() error {
	if c.failNext {
		return errors.New("boom")
	}
	c.steps++
	return nil
}

type countingSensor struct{ updates int }

func (s *countingSensor) Init(any) error             { return nil }
func (s *countingSensor) Reset() error                { s.updates = 0; return nil }
func (s *countingSensor) Update(SenseContext) error  { s.updates++; return nil }

type countingActuator struct{ updates int }

func (a *countingActuator) Init(any) error          { return nil }
func (a *countingActuator) Reset() error             { a.updates = 0; return nil }
func (a *countingActuator) Update(ActContext) error { a.updates++; return nil }

type stubSenseCtx struct{}

func (stubSenseCtx) Index() index.Index { return nil }
func (stubSenseCtx) Medium(string) media.Medium { return nil }
func (stubSenseCtx) ClosestIntersectedByRay(lin.V3, lin.V3, ...entity.ID) (entity.ID, float64, bool) {
	return 0, 0, false
}

type stubActCtx struct{}

func (stubActCtx) Push(string, entity.ID, lin.V3) {}

func newTestEntity() *Entity {
	ar := entity.NewArena()
	em := entity.NewEmbodied(ar.Create(), true)
	return New(em, &recordingController{})
}

func TestActSenseControlStepRunExactlyOnceWhenEnabled(t *testing.T) {
	e := newTestEntity()
	sensor := &countingSensor{}
	actuator := &countingActuator{}
	e.Sensors["s"] = sensor
	e.Actuators["a"] = actuator

	if err := e.Act(stubActCtx{}); err != nil {
		t.Fatalf("act: %v", err)
	}
	if err := e.Sense(stubSenseCtx{}); err != nil {
		t.Fatalf("sense: %v", err)
	}

	if actuator.updates != 1 {
		t.Fatalf("actuator updates = %d, want 1", actuator.updates)
	}
	if sensor.updates != 1 {
		t.Fatalf("sensor updates = %d, want 1", sensor.updates)
	}
	ctrl := e.Controller.(*recordingController)
	if ctrl.steps != 1 {
		t.Fatalf("control steps = %d, want 1", ctrl.steps)
	}
}

func TestDisabledEntitySkipsAllHooks(t *testing.T) {
	e := newTestEntity()
	e.Enabled = false
	sensor := &countingSensor{}
	actuator := &countingActuator{}
	e.Sensors["s"] = sensor
	e.Actuators["a"] = actuator

	e.Act(stubActCtx{})
	e.Sense(stubSenseCtx{})

	if sensor.updates != 0 || actuator.updates != 0 {
		t.Fatalf("expected no hook calls while disabled: sensor=%d actuator=%d", sensor.updates, actuator.updates)
	}
}

func TestControllerFailurePropagatesAsControllerFailureKind(t *testing.T) {
	e := newTestEntity()
	e.Controller.(*recordingController).failNext = true

	err := e.Sense(stubSenseCtx{})
	if err == nil {
		t.Fatal("expected an error")
	}
	kind, ok := kernelerr.KindOf(err)
	if !ok || kind != kernelerr.KindControllerFailure {
		t.Fatalf("unexpected error kind: %v (%v)", kind, err)
	}
}

func TestResetClearsSensorReadingsNotPose(t *testing.T) {
	e := newTestEntity()
	e.Origin().Position = lin.V3{X: 3}
	sensor := &countingSensor{updates: 5}
	e.Sensors["s"] = sensor

	if err := e.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if sensor.updates != 0 {
		t.Fatalf("expected sensor reading state cleared, got %d", sensor.updates)
	}
	if e.Origin().Position.X != 3 {
		t.Fatal("reset must not move the entity's pose")
	}
	ctrl := e.Controller.(*recordingController)
	if ctrl.resets != 1 {
		t.Fatalf("controller reset count = %d, want 1", ctrl.resets)
	}
}

func TestRecordedRaysClearEachAct(t *testing.T) {
	e := newTestEntity()
	e.RecordCheckedRay(lin.V3{}, lin.V3{X: 1})
	if len(e.CheckedRays()) != 1 {
		t.Fatal("expected one recorded ray")
	}
	e.Act(stubActCtx{})
	if len(e.CheckedRays()) != 0 {
		t.Fatal("expected checked rays to be cleared at the start of act")
	}
}
