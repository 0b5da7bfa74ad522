// Copyright © 2024 Galvanized Logic Inc.

package entity

import "github.com/swarmkit/arena/math/lin"

// anchor.go implements the named reference frames carried by embodied
// entities (spec.md §3 "Anchor"). Anchors are written by exactly one
// physics model per tick and read by many observers; the updater list
// gives that one writer a place to register without the reader side
// needing to know which physics model (if any) owns the anchor.

// AnchorUpdater is called whenever the owning physics model refreshes an
// anchor's pose, in the order the updaters were registered (spec.md §4.1
// "Anchor updates").
type AnchorUpdater func(pos lin.V3, rot lin.Q)

// Anchor is a named pose: position, orientation, and an enabled flag.
type Anchor struct {
	Name     string
	Position lin.V3
	Rotation lin.Q
	Enabled  bool

	updaters []AnchorUpdater
}

// NewAnchor creates an anchor at the identity pose.
func NewAnchor(name string) *Anchor {
	return &Anchor{Name: name, Rotation: lin.Q{W: 1}, Enabled: true}
}

// Set overwrites the anchor's pose directly (used by loader/reset code;
// physics models should go through RegisterUpdater + refresh instead so
// observers reading mid-tick never see a half-applied pose).
func (a *Anchor) Set(pos lin.V3, rot lin.Q) {
	a.Position = pos
	a.Rotation = rot
}

// RegisterUpdater appends fn to the anchor's updater list. A physics model
// registers exactly one updater per anchor it owns, at construction time.
func (a *Anchor) RegisterUpdater(fn AnchorUpdater) {
	a.updaters = append(a.updaters, fn)
}

// Refresh sets the anchor pose and invokes every registered updater, in
// registration order, so that any secondary bookkeeping (eg. a render
// transform cache) observes the new pose consistently.
func (a *Anchor) Refresh(pos lin.V3, rot lin.Q) {
	a.Set(pos, rot)
	for _, u := range a.updaters {
		u(pos, rot)
	}
}
