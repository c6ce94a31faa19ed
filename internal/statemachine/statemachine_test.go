package statemachine

import (
	"errors"
	"testing"
)

func TestLegalTransitionChain(t *testing.T) {
	m := New(1, StateIdle)
	chain := []State{
		StateWaiting, StateCharacterSelect, StateCountdown, StateAwaitingMoves,
		StateMoveSubmitted, StateResolvingRound, StateRoundResolved,
		StateAwaitingMoves, StateMoveSubmitted, StateMoveSubmitted,
		StateResolvingRound, StateMatchEnded, StateResults,
	}
	for _, next := range chain {
		if err := m.Transition(next); err != nil {
			t.Fatalf("transition %s -> %s rejected: %v", m.Current(), next, err)
		}
	}
	if !Terminal(m.Current()) {
		t.Fatalf("expected terminal state, got %s", m.Current())
	}
}

func TestIllegalTransitionDoesNotMutate(t *testing.T) {
	m := New(1, StateWaiting)
	if err := m.Transition(StateResults); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if m.Current() != StateWaiting {
		t.Fatalf("rejected transition must not mutate, state is %s", m.Current())
	}
}

func TestUnknownStateRejected(t *testing.T) {
	m := New(1, StateWaiting)
	if err := m.Transition(State("limbo")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown state, got %v", err)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []State{StateResults, StateCancelled, StateError} {
		if !Terminal(s) {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	if Terminal(StateAwaitingMoves) {
		t.Fatalf("awaiting_moves must not be terminal")
	}
}

func TestForceStateOnlyFromRecoveryStates(t *testing.T) {
	m := New(1, StateAwaitingMoves)
	if err := m.ForceState(StateCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("force-state from a healthy state must be rejected, got %v", err)
	}

	m = New(1, StateError)
	if err := m.ForceState(StateAwaitingMoves); err != nil {
		t.Fatalf("force-state out of error rejected: %v", err)
	}
	if m.Current() != StateAwaitingMoves {
		t.Fatalf("expected awaiting_moves, got %s", m.Current())
	}

	m = New(1, StateDisconnected)
	if err := m.ForceState(StateCancelled); err != nil {
		t.Fatalf("force-state out of disconnected rejected: %v", err)
	}
}

func TestHandlersFireInOrder(t *testing.T) {
	m := New(1, StateWaiting)
	var seen []string
	m.OnAny(func(from, to State) { seen = append(seen, "any:"+string(to)) })
	m.OnEnter(StateCharacterSelect, func(from, to State) { seen = append(seen, "enter:"+string(to)) })

	if err := m.Transition(StateCharacterSelect); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != "any:character_select" || seen[1] != "enter:character_select" {
		t.Fatalf("unexpected handler order: %v", seen)
	}
}

func TestHandlerPanicDoesNotCorruptState(t *testing.T) {
	m := New(1, StateWaiting)
	m.OnAny(func(from, to State) { panic("boom") })
	fired := false
	m.OnEnter(StateCharacterSelect, func(from, to State) { fired = true })

	if err := m.Transition(StateCharacterSelect); err != nil {
		t.Fatalf("transition failed despite panicking handler: %v", err)
	}
	if m.Current() != StateCharacterSelect {
		t.Fatalf("panicking handler corrupted state: %s", m.Current())
	}
	if !fired {
		t.Fatalf("later handlers must still run after a panic")
	}
}
