// Copyright © 2024 Galvanized Logic Inc.

// Package loopfn implements the loop-function boundary (spec.md §6
// "Loop-function boundary"): user hooks for a Space's lifecycle and for
// per-tick pre/post-step work. Space calls Init, Reset and Destroy;
// Space.Tick does not call PreStep or PostStep, its pre/post-step phases
// run each controllable's own PreStep/PostStep callbacks. Mirrors the
// teacher's own top-level application hooks (app.go's Create/Update
// pair handed to vu.New) — one small struct of optional callbacks the
// host fills in, threaded through by the scheduler rather than subclassed.
package loopfn

import "github.com/swarmkit/arena/math/lin"

// Hooks is the user-supplied loop-function set. Any method may be left
// nil; package space treats a nil hook as a no-op. Pre/post-step may
// read everything and mutate only entities they created themselves
// (spec.md §6).
type Hooks struct {
	Init           func() error
	Reset          func() error
	Destroy        func()
	PreStep        func(tick uint64, dt float64) error
	PostStep       func(tick uint64, dt float64) error
	GetFloorColour func(x, y float64) lin.V3
}

func (h Hooks) callInit() error {
	if h.Init == nil {
		return nil
	}
	return h.Init()
}

func (h Hooks) callReset() error {
	if h.Reset == nil {
		return nil
	}
	return h.Reset()
}

func (h Hooks) callDestroy() {
	if h.Destroy != nil {
		h.Destroy()
	}
}

func (h Hooks) callPreStep(tick uint64, dt float64) error {
	if h.PreStep == nil {
		return nil
	}
	return h.PreStep(tick, dt)
}

func (h Hooks) callPostStep(tick uint64, dt float64) error {
	if h.PostStep == nil {
		return nil
	}
	return h.PostStep(tick, dt)
}

// FloorColour calls GetFloorColour, returning black if unset.
func (h Hooks) FloorColour(x, y float64) lin.V3 {
	if h.GetFloorColour == nil {
		return lin.V3{}
	}
	return h.GetFloorColour(x, y)
}

// Runner adapts Hooks to the call sites package space needs, keeping
// the zero-Hooks{} case (no user hooks registered) always safe to
// invoke.
type Runner struct{ Hooks Hooks }

func (r Runner) Init() error                          { return r.Hooks.callInit() }
func (r Runner) Reset() error                          { return r.Hooks.callReset() }
func (r Runner) Destroy()                              { r.Hooks.callDestroy() }
func (r Runner) PreStep(tick uint64, dt float64) error { return r.Hooks.callPreStep(tick, dt) }
func (r Runner) PostStep(tick uint64, dt float64) error {
	return r.Hooks.callPostStep(tick, dt)
}
func (r Runner) FloorColour(x, y float64) lin.V3 { return r.Hooks.FloorColour(x, y) }
