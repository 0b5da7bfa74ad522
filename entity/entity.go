// Copyright © 2024 Galvanized Logic Inc.

package entity

// entity.go implements the composition tree: nodes with a stable ID, an
// enabled flag, an optional parent, and an ordered tag->children multimap.
// The dispatch-by-tag lookup here follows the teacher's note in ent.go
// about "methods that work with specific components" — here generalized
// into an open, string-tag-keyed registry instead of one Go method per
// component kind (see spec.md §9 "Polymorphic components").

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/swarmkit/arena/kernelerr"
)

// Entity is a node in the composition tree. Entities are created by an
// Arena and never relocated in memory while referenced: Arena stores them
// behind pointers in a slice indexed by ID, matching the teacher's
// dense-array-by-id component manager pattern (see gazed/vu simulation.go).
type Entity struct {
	id      ID
	enabled bool
	parent  *Entity

	// tags preserves insertion order of distinct tags; children preserves
	// per-tag insertion order. Together they give the "ordered (by
	// insertion index) multimap from child-type-tag -> child reference"
	// required by spec.md §3.
	tags     []string
	children map[string][]*Entity
}

func newEntity(id ID) *Entity {
	return &Entity{id: id, enabled: true, children: map[string][]*Entity{}}
}

// ID returns the entity's stable identifier.
func (e *Entity) ID() ID { return e.id }

// Enabled reports whether the entity currently participates in phases.
func (e *Entity) Enabled() bool { return e.enabled }

// SetEnabled flips the enabled flag. Re-entry (disable then enable) does
// not by itself restore state; restoring pose/readings per spec.md §8
// "Re-entry" law is left to the caller.
func (e *Entity) SetEnabled(enabled bool) { e.enabled = enabled }

// Parent returns the owning entity, or nil for a root.
func (e *Entity) Parent() *Entity { return e.parent }

// AddComponent attaches child under the given tag, appended after any
// existing children sharing that tag.
func (e *Entity) AddComponent(tag string, child *Entity) {
	if _, ok := e.children[tag]; !ok {
		e.tags = append(e.tags, tag)
	}
	e.children[tag] = append(e.children[tag], child)
	child.parent = e
}

// RemoveComponent removes the i-th child (0-based, insertion order) under
// tag. Use RemoveComponent(tag, 0) for a known-unique tag.
func (e *Entity) RemoveComponent(tag string, i int) error {
	kids, ok := e.children[tag]
	if !ok {
		return kernelerr.New(kernelerr.KindNotFound, "no children tagged %q", tag)
	}
	if i < 0 || i >= len(kids) {
		return kernelerr.New(kernelerr.KindIndexOutOfBounds, "tag %q index %d of %d", tag, i, len(kids))
	}
	kids[i].parent = nil
	e.children[tag] = append(kids[:i:i], kids[i+1:]...)
	if len(e.children[tag]) == 0 {
		delete(e.children, tag)
		e.removeTag(tag)
	}
	return nil
}

func (e *Entity) removeTag(tag string) {
	for i, t := range e.tags {
		if t == tag {
			e.tags = append(e.tags[:i], e.tags[i+1:]...)
			return
		}
	}
}

// GetComponent resolves a query of the form "tag" or "tag[index]".
//
//	"tag"       - the unique child with that tag; AmbiguousLookup if more
//	              than one exists, NotFound if none do.
//	"tag[i]"    - the i-th (0-based) child with that tag; NotFound if the
//	              tag has zero children, IndexOutOfBounds if i is out of
//	              range for a tag that does have children, SyntaxError for
//	              a malformed bracket expression.
func (e *Entity) GetComponent(query string) (*Entity, error) {
	tag, idx, hasIdx, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	kids, ok := e.children[tag]
	if !ok || len(kids) == 0 {
		return nil, kernelerr.New(kernelerr.KindNotFound, "no children tagged %q", tag)
	}
	if !hasIdx {
		if len(kids) > 1 {
			return nil, kernelerr.New(kernelerr.KindAmbiguousLookup, "tag %q has %d children, need an index", tag, len(kids))
		}
		return kids[0], nil
	}
	if idx < 0 || idx >= len(kids) {
		return nil, kernelerr.New(kernelerr.KindIndexOutOfBounds, "tag %q index %d of %d", tag, idx, len(kids))
	}
	return kids[idx], nil
}

// HasComponent reports whether query resolves without error.
func (e *Entity) HasComponent(query string) bool {
	_, err := e.GetComponent(query)
	return err == nil
}

// Children returns the children for tag in insertion order. The returned
// slice is owned by the entity; callers must not mutate it.
func (e *Entity) Children(tag string) []*Entity { return e.children[tag] }

// Tags returns the distinct child tags in first-insertion order.
func (e *Entity) Tags() []string { return append([]string(nil), e.tags...) }

// Update cascades to every child, depth-first, matching the teacher's
// "update() cascades update() to all children" contract (spec.md §4.1).
func (e *Entity) Update() {
	for _, tag := range e.tags {
		for _, child := range e.children[tag] {
			child.Update()
		}
	}
}

// parseQuery splits "tag" or "tag[index]" into its parts. A malformed
// bracket expression — a missing close bracket, a non-numeric index, or a
// stray ']' appearing before its matching '[' (spec.md Open Question 2
// about the RAB space-hash key guard applies the same malformed-bracket
// rule here) — is a SyntaxError.
func parseQuery(query string) (tag string, idx int, hasIdx bool, err error) {
	open := strings.IndexByte(query, '[')
	closeB := strings.IndexByte(query, ']')
	if open < 0 && closeB < 0 {
		return query, 0, false, nil
	}
	if open < 0 || closeB < 0 || closeB < open || !strings.HasSuffix(query, "]") {
		return "", 0, false, kernelerr.New(kernelerr.KindSyntaxError, "malformed indexed query %q", query)
	}
	tag = query[:open]
	n, convErr := strconv.Atoi(query[open+1 : closeB])
	if convErr != nil || tag == "" {
		return "", 0, false, kernelerr.New(kernelerr.KindSyntaxError, "malformed indexed query %q", query)
	}
	return tag, n, true, nil
}

// String gives a debug-friendly rendering, mirroring the teacher's
// habit of small Stringer helpers for log lines (see gazed/vu eid.go).
func (e *Entity) String() string {
	return fmt.Sprintf("entity#%d(enabled=%t,tags=%v)", e.id, e.enabled, e.tags)
}
