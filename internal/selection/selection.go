package selection

import (
	"errors"
	"math/rand"
	"time"

	"github.com/zaikaman/kaspaclash/internal/game"
)

var (
	ErrInvalidCharacter = errors.New("unknown character")
	ErrAlreadyConfirmed = errors.New("selection already confirmed")
	ErrNoSelection      = errors.New("no character selected")
	ErrDeadlineExpired  = errors.New("selection deadline expired")
)

// Negotiation runs the pre-match character pick protocol over a match's
// persisted selection fields. It is a transient per-match value: build one,
// apply an operation, persist the match. Both players confirming is the
// sole exit condition into the countdown.
type Negotiation struct {
	roster *game.Roster
	m      *game.Match
	now    func() time.Time
}

// New wraps a match in a negotiation. The clock is injected for tests.
func New(roster *game.Roster, m *game.Match, now func() time.Time) *Negotiation {
	if now == nil {
		now = time.Now
	}
	return &Negotiation{roster: roster, m: m, now: now}
}

func (n *Negotiation) expired() bool {
	return !n.m.SelectionDeadline.IsZero() && n.now().After(n.m.SelectionDeadline)
}

// Select records a (still unconfirmed) character pick for the slot.
// Re-selection before confirming is allowed.
func (n *Negotiation) Select(slot game.Slot, characterID string) error {
	if _, ok := n.roster.Get(characterID); !ok {
		return ErrInvalidCharacter
	}
	if n.confirmed(slot) {
		return ErrAlreadyConfirmed
	}
	if n.expired() {
		return ErrDeadlineExpired
	}
	switch slot {
	case game.Slot1:
		n.m.Player1CharacterID = characterID
	case game.Slot2:
		n.m.Player2CharacterID = characterID
	}
	return nil
}

// Confirm locks the slot's current pick.
func (n *Negotiation) Confirm(slot game.Slot) error {
	if n.confirmed(slot) {
		return ErrAlreadyConfirmed
	}
	if n.m.CharacterOf(slot) == "" {
		return ErrNoSelection
	}
	if n.expired() {
		return ErrDeadlineExpired
	}
	n.setConfirmed(slot)
	return nil
}

// HandleTimeout force-confirms any unconfirmed player once the deadline has
// passed, assigning a uniformly random valid character where nothing was
// selected. Idempotent: invocations after the first change nothing, so
// racing sweepers and client-driven timers are safe. Returns the slots it
// forced, so callers can persist and announce exactly those.
func (n *Negotiation) HandleTimeout(rng *rand.Rand) []game.Slot {
	if !n.expired() {
		return nil
	}
	var forced []game.Slot
	for _, slot := range []game.Slot{game.Slot1, game.Slot2} {
		if n.confirmed(slot) {
			continue
		}
		if n.m.CharacterOf(slot) == "" {
			ids := n.roster.IDs()
			pick := ids[rng.Intn(len(ids))]
			switch slot {
			case game.Slot1:
				n.m.Player1CharacterID = pick
			case game.Slot2:
				n.m.Player2CharacterID = pick
			}
		}
		n.setConfirmed(slot)
		forced = append(forced, slot)
	}
	return forced
}

// BothConfirmed is the exit condition into match start.
func (n *Negotiation) BothConfirmed() bool {
	return n.m.Player1Confirmed && n.m.Player2Confirmed
}

func (n *Negotiation) confirmed(slot game.Slot) bool {
	if slot == game.Slot1 {
		return n.m.Player1Confirmed
	}
	return n.m.Player2Confirmed
}

func (n *Negotiation) setConfirmed(slot game.Slot) {
	if slot == game.Slot1 {
		n.m.Player1Confirmed = true
		return
	}
	n.m.Player2Confirmed = true
}
