package lifecycle

import (
	"errors"
	"testing"
)

type state string

func testMachine() Machine[state] {
	return NewMachine[state]("pending", map[state][]state{
		"pending":     {"in_progress", "rejected"},
		"in_progress": {"resolved"},
	})
}

func TestMachine_NextAndTerminal(t *testing.T) {
	m := testMachine()

	if m.Initial() != "pending" {
		t.Fatalf("expected initial pending, got %s", m.Initial())
	}

	next := m.Next("pending")
	if len(next) != 2 || next[0] != "in_progress" || next[1] != "rejected" {
		t.Fatalf("unexpected next for pending: %#v", next)
	}

	for _, s := range []state{"resolved", "rejected"} {
		if !m.IsTerminal(s) {
			t.Fatalf("expected %s terminal", s)
		}
		if len(m.Next(s)) != 0 {
			t.Fatalf("expected no transitions from %s", s)
		}
	}

	if m.IsTerminal("unknown") {
		t.Fatalf("unknown state must not be reported as terminal")
	}
}

func TestMachine_NextReturnsCopy(t *testing.T) {
	m := testMachine()
	next := m.Next("pending")
	next[0] = "hacked"

	if m.Next("pending")[0] != "in_progress" {
		t.Fatalf("Next must not expose internal slice")
	}
}

func TestMachine_Check(t *testing.T) {
	m := testMachine()

	if err := m.Check("pending", "in_progress"); err != nil {
		t.Fatalf("expected legal transition, got %v", err)
	}
	// hacia atrás
	if err := m.Check("in_progress", "pending"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	// saltar estados
	if err := m.Check("pending", "resolved"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	// mismo estado
	if err := m.Check("pending", "pending"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for self transition, got %v", err)
	}
}
