// Copyright © 2024 Galvanized Logic Inc.

package query

import (
	"testing"

	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/physics"
)

func blocksEngine() *physics.PointMassEngine {
	e := physics.NewPointMassEngine("main", lin.AABB{Min: lin.V3{X: -100, Y: -100, Z: -100}, Max: lin.V3{X: 100, Y: 100, Z: 100}}, 0.02)
	for i, x := range []float64{1, 2, 3} {
		id := entity.ID(i + 1)
		e.AddEntity(id, lin.V3{X: x, Z: 0.1}, lin.Q{W: 1}, false)
		e.SetShape(id, physics.BoxShape{Half: lin.V3{X: 0.25, Y: 0.25, Z: 0.25}})
	}
	return e
}

func TestClosestEmbodiedIntersectedByRayPicksNearestBlock(t *testing.T) {
	e := blocksEngine()
	hit, ok := ClosestEmbodiedIntersectedByRay([]physics.Engine{e}, lin.V3{Z: 0.1}, lin.V3{X: 10}, nil)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.EntityID != 1 {
		t.Fatalf("closest hit = entity %d, want 1", hit.EntityID)
	}
}

func TestClosestEmbodiedIntersectedByRayHonoursExcludeSet(t *testing.T) {
	e := blocksEngine()
	exclude := map[entity.ID]bool{1: true}
	hit, ok := ClosestEmbodiedIntersectedByRay([]physics.Engine{e}, lin.V3{Z: 0.1}, lin.V3{X: 10}, exclude)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.EntityID != 2 {
		t.Fatalf("closest non-excluded hit = entity %d, want 2", hit.EntityID)
	}
}

func TestClosestEmbodiedIntersectedByRayNoneWhenNoEnginesHit(t *testing.T) {
	e := blocksEngine()
	_, ok := ClosestEmbodiedIntersectedByRay([]physics.Engine{e}, lin.V3{Y: 50}, lin.V3{X: 10}, nil)
	if ok {
		t.Fatal("expected no hit far from any block")
	}
}

func TestAllIntersectedByRayReturnsIncreasingT(t *testing.T) {
	e := blocksEngine()
	hits := AllIntersectedByRay([]physics.Engine{e}, lin.V3{Z: 0.1}, lin.V3{X: 10}, nil)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].T < hits[i-1].T {
			t.Fatalf("hits not sorted by increasing t: %+v", hits)
		}
	}
	if hits[0].EntityID != 1 {
		t.Fatalf("first hit = entity %d, want 1", hits[0].EntityID)
	}
}
