package statemachine

import (
	"errors"
	"fmt"

	"github.com/zaikaman/kaspaclash/internal/logging"
)

// State is a match lifecycle state. States are persisted as strings on the
// match record.
type State string

const (
	StateIdle            State = "idle"
	StateWaiting         State = "waiting"
	StateCharacterSelect State = "character_select"
	StateCountdown       State = "countdown"
	StateAwaitingMoves   State = "awaiting_moves"
	StateMoveSubmitted   State = "move_submitted"
	StateResolvingRound  State = "resolving_round"
	StateRoundResolved   State = "round_resolved"
	StateMatchEnded      State = "match_ended"
	StateResults         State = "results"
	StateCancelled       State = "cancelled"
	StateDisconnected    State = "disconnected"
	StateError           State = "error"
)

// ErrInvalidTransition is returned when the requested next state is not in
// the current state's allow-list. Callers must treat it as a no-op, not a
// fatal error: racing events routinely request stale transitions.
var ErrInvalidTransition = errors.New("invalid state transition")

// transitions is the fixed, total transition table. A state absent from a
// target list can never be reached by a normal transition.
var transitions = map[State][]State{
	StateIdle:            {StateWaiting, StateCharacterSelect, StateError},
	StateWaiting:         {StateCharacterSelect, StateCancelled, StateDisconnected, StateError},
	StateCharacterSelect: {StateCountdown, StateCancelled, StateDisconnected, StateError},
	StateCountdown:       {StateAwaitingMoves, StateDisconnected, StateError},
	StateAwaitingMoves:   {StateMoveSubmitted, StateResolvingRound, StateCancelled, StateDisconnected, StateError},
	StateMoveSubmitted:   {StateAwaitingMoves, StateMoveSubmitted, StateResolvingRound, StateCancelled, StateDisconnected, StateError},
	StateResolvingRound:  {StateRoundResolved, StateMatchEnded, StateCancelled, StateError},
	StateRoundResolved:   {StateAwaitingMoves, StateMatchEnded, StateError},
	StateMatchEnded:      {StateResults},
	StateResults:         {},
	StateCancelled:       {},
	StateDisconnected:    {StateAwaitingMoves, StateCancelled, StateError},
	StateError:           {},
}

// Known reports whether s is a defined state.
func Known(s State) bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether the state has no outgoing normal transitions.
func Terminal(s State) bool {
	return len(transitions[s]) == 0
}

// Handler observes a completed transition.
type Handler func(from, to State)

// Machine is a per-match state machine value. It is constructed by the
// caller for the match at hand and never shared between matches: multiple
// matches run concurrently across independent request handlers, so there is
// deliberately no process-wide instance.
type Machine struct {
	matchID  uint
	current  State
	onState  map[State][]Handler
	onGlobal []Handler
}

// New creates a machine positioned at the given state (typically loaded
// from the persisted match).
func New(matchID uint, current State) *Machine {
	if !Known(current) {
		current = StateIdle
	}
	return &Machine{matchID: matchID, current: current, onState: make(map[State][]Handler)}
}

// Current returns the machine's state.
func (m *Machine) Current() State { return m.current }

// OnEnter registers a handler fired whenever the machine enters the state.
func (m *Machine) OnEnter(s State, h Handler) {
	m.onState[s] = append(m.onState[s], h)
}

// OnAny registers a handler fired on every successful transition.
func (m *Machine) OnAny(h Handler) {
	m.onGlobal = append(m.onGlobal, h)
}

// Transition moves to next if the transition table allows it. On rejection
// nothing mutates and ErrInvalidTransition is returned. Handlers run after
// the state is recorded, each isolated so one misbehaving handler can
// neither corrupt the state nor starve the others.
func (m *Machine) Transition(next State) error {
	if !Known(next) {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, next)
	}
	allowed := false
	for _, s := range transitions[m.current] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, next)
	}
	from := m.current
	m.current = next
	m.fire(from, next)
	return nil
}

// ForceState overrides the transition table for operator-initiated recovery.
// It is legal only out of error or disconnected and is logged distinctly
// from normal transitions.
func (m *Machine) ForceState(next State) error {
	if m.current != StateError && m.current != StateDisconnected {
		return fmt.Errorf("%w: force-state only from error or disconnected (at %s)", ErrInvalidTransition, m.current)
	}
	if !Known(next) {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, next)
	}
	from := m.current
	m.current = next
	logging.Warn("forced state transition", logging.Fields{
		"match_id": m.matchID,
		"from":     string(from),
		"to":       string(next),
		"forced":   true,
	})
	m.fire(from, next)
	return nil
}

func (m *Machine) fire(from, to State) {
	for _, h := range m.onGlobal {
		m.safeRun(h, from, to)
	}
	for _, h := range m.onState[to] {
		m.safeRun(h, from, to)
	}
}

// safeRun isolates handler panics: the recorded state must survive a
// misbehaving observer.
func (m *Machine) safeRun(h Handler, from, to State) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("state handler panicked", fmt.Errorf("%v", r), logging.Fields{
				"match_id": m.matchID,
				"from":     string(from),
				"to":       string(to),
			})
		}
	}()
	h(from, to)
}
