// Copyright © 2024 Galvanized Logic Inc.

package entity

import (
	"testing"

	"github.com/swarmkit/arena/math/lin"
)

func TestAnchorUpdatersRunInRegistrationOrder(t *testing.T) {
	a := NewAnchor("body")
	var order []int
	a.RegisterUpdater(func(lin.V3, lin.Q) { order = append(order, 1) })
	a.RegisterUpdater(func(lin.V3, lin.Q) { order = append(order, 2) })
	a.Refresh(lin.V3{X: 1}, lin.Q{W: 1})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("updaters ran out of order: %v", order)
	}
	if a.Position.X != 1 {
		t.Fatalf("pose not applied: %+v", a.Position)
	}
}

func TestEmbodiedAABBRecomputedLazily(t *testing.T) {
	ar := NewArena()
	em := NewEmbodied(ar.Create(), true)
	half := lin.V3{X: 1, Y: 1, Z: 1}

	first := em.AABB(half)
	if first.Min.X != -1 || first.Max.X != 1 {
		t.Fatalf("unexpected initial box: %+v", first)
	}

	em.Origin().Position = lin.V3{X: 5}
	em.MarkDirty()
	moved := em.AABB(half)
	if moved.Min.X != 4 || moved.Max.X != 6 {
		t.Fatalf("box did not follow pose mutation: %+v", moved)
	}
}

func TestEmbodiedModelLifecycle(t *testing.T) {
	ar := NewArena()
	em := NewEmbodied(ar.Create(), true)
	if em.Model("engineA") != nil {
		t.Fatal("expected no model before SetModel")
	}
	m := &stubModel{}
	em.SetModel("engineA", m)
	if em.Model("engineA") != m {
		t.Fatal("model not installed")
	}
	em.RemoveModel("engineA")
	if em.Model("engineA") != nil {
		t.Fatal("model not drained")
	}
}

type stubModel struct{}

func (stubModel) MoveTo(lin.V3, lin.Q)                               {}
func (stubModel) UpdateFromEntityStatus()                            {}
func (stubModel) UpdateEntityStatus()                                {}
func (stubModel) IsColliding() bool                                  { return false }
func (stubModel) CheckIntersectionWithRay(lin.V3, lin.V3) (bool, float64) { return false, 0 }
