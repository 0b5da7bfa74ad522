// Copyright © 2024 Galvanized Logic Inc.

package entity

import (
	"testing"

	"github.com/swarmkit/arena/kernelerr"
)

func TestGetComponentUnique(t *testing.T) {
	a := NewArena()
	root := a.Create()
	led := a.Create()
	root.AddComponent("leds", led)

	got, err := root.GetComponent("leds")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != led {
		t.Errorf("got %v want %v", got, led)
	}
}

func TestGetComponentAmbiguous(t *testing.T) {
	a := NewArena()
	root := a.Create()
	root.AddComponent("leds", a.Create())
	root.AddComponent("leds", a.Create())

	_, err := root.GetComponent("leds")
	assertKind(t, err, kernelerr.KindAmbiguousLookup)
}

func TestGetComponentNotFound(t *testing.T) {
	a := NewArena()
	root := a.Create()
	_, err := root.GetComponent("leds")
	assertKind(t, err, kernelerr.KindNotFound)
}

// TestZeroChildrenIndexedLookupIsNotFound asserts the boundary behaviour
// called out in spec.md §8: get_component("leds[0]") on an entity with
// zero leds children returns NotFound, not IndexOutOfBounds.
func TestZeroChildrenIndexedLookupIsNotFound(t *testing.T) {
	a := NewArena()
	root := a.Create()
	_, err := root.GetComponent("leds[0]")
	assertKind(t, err, kernelerr.KindNotFound)
}

func TestIndexOutOfBounds(t *testing.T) {
	a := NewArena()
	root := a.Create()
	root.AddComponent("leds", a.Create())
	_, err := root.GetComponent("leds[1]")
	assertKind(t, err, kernelerr.KindIndexOutOfBounds)
}

func TestSyntaxErrorOnMalformedIndex(t *testing.T) {
	a := NewArena()
	root := a.Create()
	root.AddComponent("leds", a.Create())

	cases := []string{"leds[", "leds]", "leds]0[", "leds[x]", "leds[0"}
	for _, q := range cases {
		_, err := root.GetComponent(q)
		if err == nil {
			t.Errorf("query %q: expected SyntaxError", q)
			continue
		}
		assertKind(t, err, kernelerr.KindSyntaxError)
	}
}

func TestIndexedLookupInsertionOrder(t *testing.T) {
	a := NewArena()
	root := a.Create()
	first := a.Create()
	second := a.Create()
	root.AddComponent("leds", first)
	root.AddComponent("leds", second)

	got, err := root.GetComponent("leds[1]")
	if err != nil || got != second {
		t.Fatalf("got %v, %v; want %v, nil", got, err, second)
	}
}

func TestUpdateCascades(t *testing.T) {
	a := NewArena()
	root := a.Create()
	child := a.Create()
	grandchild := a.Create()
	root.AddComponent("part", child)
	child.AddComponent("part", grandchild)

	root.Update() // should visit every descendant without panicking.
}

func assertKind(t *testing.T, err error, want kernelerr.Kind) {
	t.Helper()
	got, ok := kernelerr.KindOf(err)
	if !ok {
		t.Fatalf("error %v has no kernelerr.Kind", err)
	}
	if got != want {
		t.Fatalf("got kind %s, want %s", got, want)
	}
}
