package service

import (
	"errors"
	"math/rand"

	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/keys"
	"github.com/zaikaman/kaspaclash/internal/selection"
	"github.com/zaikaman/kaspaclash/internal/statemachine"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// SelectCharacter records an unconfirmed pick for the player. Re-picking
// before confirming is allowed. The pick is persisted with a per-slot
// conditional write so it can never clobber the opponent's columns.
func (r *Resolver) SelectCharacter(code, address, characterID string) (*game.Match, error) {
	m, slot, err := r.matchInSelection(code, address)
	if err != nil {
		return nil, err
	}

	n := selection.New(r.roster, m, r.now)
	if err := n.Select(slot, characterID); err != nil {
		return nil, err
	}
	if err := r.repo.SetCharacterSelection(m.ID, slot, characterID); err != nil {
		if errors.Is(err, storage.ErrStaleUpdate) {
			return nil, selection.ErrAlreadyConfirmed
		}
		return nil, err
	}

	r.publish(m.ID, broadcast.EventCharacterSelected, map[string]interface{}{
		"player":    keys.ShortAddress(address),
		"character": characterID,
	})
	return m, nil
}

// ConfirmCharacter locks the player's current pick. When it locks the second
// side, the match leaves negotiation and the first round opens. The
// both-confirmed check runs against a fresh row, so a confirmation persisted
// by the opponent between our load and our write is never missed.
func (r *Resolver) ConfirmCharacter(code, address string) (*game.Match, error) {
	m, slot, err := r.matchInSelection(code, address)
	if err != nil {
		return nil, err
	}

	n := selection.New(r.roster, m, r.now)
	if err := n.Confirm(slot); err != nil {
		return nil, err
	}
	if err := r.repo.ConfirmSlot(m.ID, slot); err != nil {
		if errors.Is(err, storage.ErrStaleUpdate) {
			return nil, selection.ErrAlreadyConfirmed
		}
		return nil, err
	}

	r.publish(m.ID, broadcast.EventCharacterLocked, map[string]interface{}{
		"player":    keys.ShortAddress(address),
		"character": m.CharacterOf(slot),
	})

	fresh, err := r.repo.GetMatchByID(m.ID)
	if err != nil {
		return nil, err
	}
	if fresh.Player1Confirmed && fresh.Player2Confirmed {
		if err := r.startFight(fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

// HandleSelectionTimeout force-confirms stragglers once the selection
// deadline has passed. Safe to call from both the sweeper and client-driven
// timers: before the deadline, and on any repeat invocation, it is a no-op.
// Lock events are published only for the slots this call actually forced.
func (r *Resolver) HandleSelectionTimeout(code string) (*game.Match, error) {
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, err
	}
	if m.Status != string(statemachine.StateCharacterSelect) {
		return m, nil
	}

	n := selection.New(r.roster, m, r.now)
	var forced []game.Slot
	r.withRng(func(rng *rand.Rand) { forced = n.HandleTimeout(rng) })

	for _, slot := range forced {
		if err := r.repo.SetCharacterSelection(m.ID, slot, m.CharacterOf(slot)); err != nil {
			if errors.Is(err, storage.ErrStaleUpdate) {
				continue // the player confirmed in the meantime
			}
			return nil, err
		}
		if err := r.repo.ConfirmSlot(m.ID, slot); err != nil {
			if errors.Is(err, storage.ErrStaleUpdate) {
				continue
			}
			return nil, err
		}
		r.publish(m.ID, broadcast.EventCharacterLocked, map[string]interface{}{
			"player":    keys.ShortAddress(m.AddressOf(slot)),
			"character": m.CharacterOf(slot),
			"forced":    true,
		})
	}

	fresh, err := r.repo.GetMatchByID(m.ID)
	if err != nil {
		return nil, err
	}
	if fresh.Player1Confirmed && fresh.Player2Confirmed {
		if err := r.startFight(fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

// startFight moves a fully-negotiated match through the countdown into the
// first round. Losing the countdown transition means a racing caller is
// already starting the fight, so this caller simply backs off.
func (r *Resolver) startFight(m *game.Match) error {
	if !r.tryTransition(m, statemachine.StateCountdown) {
		return nil
	}
	r.publish(m.ID, broadcast.EventCountdownStarted, map[string]interface{}{
		"player1_character": m.Player1CharacterID,
		"player2_character": m.Player2CharacterID,
		"format":            m.Format,
	})

	if err := r.transition(m, statemachine.StateAwaitingMoves); err != nil {
		return err
	}
	m.Message = "Fight!"
	if err := r.repo.SetMatchMessage(m.ID, m.Message); err != nil {
		return err
	}

	round, err := r.repo.CreateOrFetchRound(m.ID, 1, r.now().Add(r.moveTimeout))
	if err != nil {
		return err
	}
	r.scheduleBotMove(m, round.RoundNumber)
	return nil
}

// matchInSelection loads the match and resolves the caller's slot, requiring
// an active character negotiation.
func (r *Resolver) matchInSelection(code, address string) (*game.Match, game.Slot, error) {
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, game.SlotNone, err
	}
	slot := m.SlotOf(address)
	if slot == game.SlotNone {
		return nil, game.SlotNone, ErrPlayerNotInMatch
	}
	if m.Status != string(statemachine.StateCharacterSelect) {
		return nil, game.SlotNone, ErrSelectionNotInProgress
	}
	return m, slot, nil
}
