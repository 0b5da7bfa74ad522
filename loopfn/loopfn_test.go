// Copyright © 2024 Galvanized Logic Inc.

package loopfn

import (
	"errors"
	"testing"

	"github.com/swarmkit/arena/math/lin"
)

func TestZeroValueHooksAreNoops(t *testing.T) {
	var r Runner
	if err := r.Init(); err != nil {
		t.Fatalf("unexpected error from nil Init: %v", err)
	}
	if err := r.PreStep(1, 0.02); err != nil {
		t.Fatalf("unexpected error from nil PreStep: %v", err)
	}
	r.Destroy() // must not panic.
	if c := r.FloorColour(0, 0); c != (lin.V3{}) {
		t.Fatalf("expected zero colour, got %+v", c)
	}
}

func TestRegisteredHooksAreInvoked(t *testing.T) {
	var preStepTick uint64
	r := Runner{Hooks: Hooks{
		PreStep: func(tick uint64, dt float64) error {
			preStepTick = tick
			return nil
		},
		GetFloorColour: func(x, y float64) lin.V3 { return lin.V3{X: x, Y: y} },
	}}
	if err := r.PreStep(7, 0.02); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preStepTick != 7 {
		t.Fatalf("pre-step tick = %d, want 7", preStepTick)
	}
	if c := r.FloorColour(3, 4); c.X != 3 || c.Y != 4 {
		t.Fatalf("unexpected floor colour: %+v", c)
	}
}

func TestHookErrorsPropagate(t *testing.T) {
	r := Runner{Hooks: Hooks{PostStep: func(uint64, float64) error { return errors.New("boom") }}}
	if err := r.PostStep(1, 0.02); err == nil {
		t.Fatal("expected error to propagate")
	}
}
