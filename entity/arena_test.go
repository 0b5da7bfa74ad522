// Copyright © 2024 Galvanized Logic Inc.

package entity

import (
	"testing"

	"github.com/swarmkit/arena/kernelerr"
)

func TestArenaDisposeInvalidatesID(t *testing.T) {
	a := NewArena()
	e := a.Create()
	id := e.ID()
	a.Dispose(e)
	if a.Valid(id) {
		t.Fatal("id should be invalid after dispose")
	}
	if _, err := a.Resolve(id); err == nil {
		t.Fatal("expected InvalidHandle error")
	} else {
		assertKind(t, err, kernelerr.KindInvalidHandle)
	}
}

func TestArenaDisposeCascadesToChildren(t *testing.T) {
	a := NewArena()
	root := a.Create()
	child := a.Create()
	root.AddComponent("part", child)
	childID := child.ID()

	a.Dispose(root)
	if a.Valid(childID) {
		t.Fatal("child should be disposed along with its parent")
	}
}

func TestArenaResetIsIdempotent(t *testing.T) {
	a := NewArena()
	a.Create()
	a.Create()
	a.Reset()
	countAfterFirstReset := a.Len()
	a.Reset()
	if a.Len() != countAfterFirstReset {
		t.Fatalf("second reset changed entity count: %d vs %d", a.Len(), countAfterFirstReset)
	}
	if a.Len() != 0 {
		t.Fatalf("expected empty arena after reset, got %d", a.Len())
	}
}
