package scrollreel

import (
	"errors"
	"testing"
)

func TestElementSetResolve(t *testing.T) {
	s := NewElementSet("cards", 2)
	if _, err := s.Resolve(); !errors.Is(err, ErrUnresolvedElement) {
		t.Fatalf("empty slots: err = %v, want ErrUnresolvedElement", err)
	}
	a, b := NewSprite("a", 1, 1), NewSprite("b", 1, 1)
	s.Set(0, a)
	s.Set(1, b)
	nodes, err := s.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[0] != a || nodes[1] != b {
		t.Errorf("nodes = %v", nodes)
	}

	b.Dispose()
	if _, err := s.Resolve(); !errors.Is(err, ErrUnresolvedElement) {
		t.Errorf("disposed slot: err = %v, want ErrUnresolvedElement", err)
	}
}

func TestElementSetSetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewElementSet("cards", 1).Set(1, NewSprite("x", 1, 1))
}

func TestResolveTarget(t *testing.T) {
	nodes := []*Node{NewSprite("a", 1, 1), NewSprite("b", 1, 1), NewSprite("c", 1, 1)}
	elems := NewElements(SetOf("cards", nodes...))

	all, err := elems.resolveTarget(All("cards"))
	if err != nil || len(all) != 3 {
		t.Fatalf("All: %v, %v", all, err)
	}
	one, err := elems.resolveTarget(One("cards", 1))
	if err != nil || len(one) != 1 || one[0] != nodes[1] {
		t.Fatalf("One: %v, %v", one, err)
	}
	if _, err := elems.resolveTarget(One("cards", 3)); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("out of range: err = %v, want ErrCountMismatch", err)
	}
	if _, err := elems.resolveTarget(All("labels")); !errors.Is(err, ErrUnknownSet) {
		t.Errorf("unknown set: err = %v, want ErrUnknownSet", err)
	}
}

func TestTargetString(t *testing.T) {
	if got := All("cards").String(); got != "cards" {
		t.Errorf("All = %q", got)
	}
	if got := One("cards", 2).String(); got != "cards[2]" {
		t.Errorf("One = %q", got)
	}
}
