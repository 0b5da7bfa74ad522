// Copyright © 2024 Galvanized Logic Inc.

// Package balance implements the three interchangeable task-to-worker
// assignment strategies a phase can use (spec.md §4.7): scatter-gather
// (static contiguous chunking), balance-quantity (floor/ceil split),
// and balance-length (work-stealing by shared fetch index). All three
// satisfy the same Strategy contract so package pool can swap between
// them without changing its dispatch loop, the same "interface with
// several concrete implementations selected at construction" shape the
// teacher uses for its Grid/Mover/Body families.
package balance

// Strategy assigns phase task indices [0, taskCount) to workers
// [0, workerCount). Plan is called once per phase, on the main thread,
// before any worker observes phase-start; NextTask is called
// concurrently by every worker to pull its next assignment.
type Strategy interface {
	// Plan prepares (or reuses) the assignment for a phase with the
	// given task and worker counts.
	Plan(taskCount, workerCount int)

	// NextTask returns the next task index owned by workerID, and
	// false once workerID has exhausted its assignment for this phase.
	NextTask(workerID int) (int, bool)

	// MarkDirty invalidates any cached assignment, forcing the next
	// Plan to recompute it (spec.md §4.7: scatter-gather/balance-
	// quantity "recomputed only when the assignment-dirty flag is
	// set").
	MarkDirty()
}

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
