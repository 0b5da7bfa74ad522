// Copyright © 2024 Galvanized Logic Inc.

// Package query implements the ray/AABB query layer (spec.md §4.8):
// casting one ray against every physics engine and keeping the
// closest hit, excluding a caller-supplied set of entities. Kept
// separate from package physics so sensors and the scene's own
// diagnostics can share one query entry point without importing the
// engine-contract package directly, the way the teacher keeps ray
// casting (eg. camera.go's screen-to-world ray) outside the lower-level
// collision package.
package query

import (
	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/math/lin"
	"github.com/swarmkit/arena/physics"
)

// Hit is the result of a successful closest-intersection query.
type Hit struct {
	EntityID entity.ID
	T        float64 // normalised to the query ray, in (0,1].
}

// ClosestEmbodiedIntersectedByRay asks every engine in turn and keeps
// the hit with the smallest t, filtering out any entity in exclude.
// Returns ok=false if no engine reports a hit (spec.md §4.8,
// §8 "returns the hit with minimal t over all engines, or None").
func ClosestEmbodiedIntersectedByRay(engines []physics.Engine, origin, dir lin.V3, exclude map[entity.ID]bool) (Hit, bool) {
	var best Hit
	found := false
	for _, eng := range engines {
		for _, hit := range eng.CheckIntersectionWithRay(origin, dir) {
			id := entity.ID(hit.EntityID)
			if exclude[id] {
				continue
			}
			if hit.T <= 0 || hit.T > 1 {
				continue
			}
			if !found || hit.T < best.T {
				best = Hit{EntityID: id, T: hit.T}
				found = true
			}
		}
	}
	return best, found
}

// AllIntersectedByRay returns every hit across every engine, filtered
// by exclude and sorted by increasing t (spec.md §6 "list order is by
// increasing t"), used by scenario queries that need every hit rather
// than just the closest (eg. "ray through three stationary blocks").
func AllIntersectedByRay(engines []physics.Engine, origin, dir lin.V3, exclude map[entity.ID]bool) []Hit {
	var hits []Hit
	for _, eng := range engines {
		for _, hit := range eng.CheckIntersectionWithRay(origin, dir) {
			id := entity.ID(hit.EntityID)
			if exclude[id] || hit.T <= 0 || hit.T > 1 {
				continue
			}
			hits = append(hits, Hit{EntityID: id, T: hit.T})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].T < hits[j-1].T; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	return hits
}
