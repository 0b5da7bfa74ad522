// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"github.com/hashicorp/go-multierror"

	"github.com/swarmkit/arena/kernelerr"
)

// TransferEntities drains every engine's pending transfers and re-seats
// each entity in the first engine whose IsPointContained accepts its
// current pose (spec.md §4.3, §4.6 phase 3). It runs once per tick, on
// the calling goroutine only — entity-to-entity migration across engines
// is not safe to parallelize, per spec.md §4.6's note that phase 3 "runs
// only on the main thread".
//
// Any entity no engine will accept is reported as UnsimulableEntity; all
// such failures for the tick are collected and returned together via
// hashicorp/go-multierror (spec.md §7 "the tick is aborted and the error
// is reported with all partial errors attached").
func TransferEntities(engines []Engine) error {
	var result *multierror.Error
	for _, src := range engines {
		if !src.IsEntityTransferNeeded() {
			continue
		}
		for _, id := range src.PendingTransfers() {
			pos, rot, ok := src.Pose(id)
			if !ok {
				continue // already moved by an earlier pass this tick.
			}
			movable := true // transfer only applies to movable bodies.
			src.RemoveEntity(id)

			accepted := false
			for _, dst := range engines {
				if dst == src {
					continue
				}
				if dst.IsPointContained(pos) && dst.AddEntity(id, pos, rot, movable) {
					accepted = true
					break
				}
			}
			if !accepted {
				result = multierror.Append(result, kernelerr.New(
					kernelerr.KindUnsimulableEntity,
					"entity %d left engine %s and no engine accepted it at %+v",
					id, src.EngineID(), pos,
				))
			}
		}
	}
	if result != nil {
		return result.ErrorOrNil()
	}
	return nil
}
