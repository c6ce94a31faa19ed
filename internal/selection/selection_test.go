package selection

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/zaikaman/kaspaclash/internal/game"
)

func testRoster() *game.Roster {
	return game.NewRoster([]game.Character{
		{ID: "alpha", Name: "Alpha", MaxHP: 100, MaxEnergy: 100, EnergyRegen: 20, PunchModifier: 1, KickModifier: 1, SpecialModifier: 1, BlockEffectiveness: 0.5, SpecialCostModifier: 1},
		{ID: "beta", Name: "Beta", MaxHP: 110, MaxEnergy: 90, EnergyRegen: 18, PunchModifier: 1, KickModifier: 1, SpecialModifier: 1, BlockEffectiveness: 0.4, SpecialCostModifier: 1},
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSelectAndConfirmFlow(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(time.Minute)}
	n := New(testRoster(), m, fixedClock(now))

	if err := n.Select(game.Slot1, "alpha"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	// Re-selection before confirming is allowed.
	if err := n.Select(game.Slot1, "beta"); err != nil {
		t.Fatalf("re-select failed: %v", err)
	}
	if err := n.Confirm(game.Slot1); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := n.Select(game.Slot1, "alpha"); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed after lock, got %v", err)
	}
	if n.BothConfirmed() {
		t.Fatalf("one confirmation must not complete the negotiation")
	}

	if err := n.Select(game.Slot2, "alpha"); err != nil {
		t.Fatalf("slot2 select failed: %v", err)
	}
	if err := n.Confirm(game.Slot2); err != nil {
		t.Fatalf("slot2 confirm failed: %v", err)
	}
	if !n.BothConfirmed() {
		t.Fatalf("expected both confirmed")
	}
	if m.Player1CharacterID != "beta" || m.Player2CharacterID != "alpha" {
		t.Fatalf("unexpected picks: %s/%s", m.Player1CharacterID, m.Player2CharacterID)
	}
}

func TestConfirmWithoutSelection(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(time.Minute)}
	n := New(testRoster(), m, fixedClock(now))
	if err := n.Confirm(game.Slot1); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestSelectUnknownCharacter(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(time.Minute)}
	n := New(testRoster(), m, fixedClock(now))
	if err := n.Select(game.Slot1, "nobody"); !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("expected ErrInvalidCharacter, got %v", err)
	}
}

func TestSelectAfterDeadline(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(-time.Second)}
	n := New(testRoster(), m, fixedClock(now))
	if err := n.Select(game.Slot1, "alpha"); !errors.Is(err, ErrDeadlineExpired) {
		t.Fatalf("expected ErrDeadlineExpired, got %v", err)
	}
}

func TestHandleTimeoutForcesConfirmation(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(-time.Second)}
	m.Player1CharacterID = "alpha" // picked but never confirmed
	n := New(testRoster(), m, fixedClock(now))

	rng := rand.New(rand.NewSource(3))
	forced := n.HandleTimeout(rng)
	if len(forced) != 2 {
		t.Fatalf("expected both slots forced, got %v", forced)
	}
	if !n.BothConfirmed() {
		t.Fatalf("expected both slots confirmed after timeout")
	}
	if m.Player1CharacterID != "alpha" {
		t.Fatalf("existing pick must be kept, got %s", m.Player1CharacterID)
	}
	if m.Player2CharacterID == "" {
		t.Fatalf("empty slot must receive a random character")
	}
	if _, ok := testRoster().Get(m.Player2CharacterID); !ok {
		t.Fatalf("random pick %s is not in the roster", m.Player2CharacterID)
	}

	// Idempotent: a second invocation changes nothing.
	if forced := n.HandleTimeout(rng); len(forced) != 0 {
		t.Fatalf("second timeout invocation must be a no-op, forced %v", forced)
	}
}

func TestHandleTimeoutSkipsConfirmedSlots(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(-time.Second)}
	m.Player1CharacterID = "alpha"
	m.Player1Confirmed = true
	n := New(testRoster(), m, fixedClock(now))

	forced := n.HandleTimeout(rand.New(rand.NewSource(5)))
	if len(forced) != 1 || forced[0] != game.Slot2 {
		t.Fatalf("only the unconfirmed slot should be forced, got %v", forced)
	}
	if m.Player1CharacterID != "alpha" {
		t.Fatalf("confirmed pick must not change, got %s", m.Player1CharacterID)
	}
}

func TestHandleTimeoutBeforeDeadline(t *testing.T) {
	now := time.Now()
	m := &game.Match{SelectionDeadline: now.Add(time.Minute)}
	n := New(testRoster(), m, fixedClock(now))
	if forced := n.HandleTimeout(rand.New(rand.NewSource(1))); forced != nil {
		t.Fatalf("timeout before the deadline must be a no-op, forced %v", forced)
	}
}
