package service

import (
	"errors"
	"fmt"

	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/dedupe"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/keys"
	"github.com/zaikaman/kaspaclash/internal/statemachine"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// HandleRejection records that the player refuses to play the round. The
// round then ends down one of three paths: the opponent already moved, so
// they take the round by forfeit; the opponent also rejected, so the match
// cancels with a refund; or nothing is decided yet and the round waits for
// the opponent or the deadline.
func (r *Resolver) HandleRejection(code string, roundNumber int, address string) (*game.Round, error) {
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, err
	}
	slot := m.SlotOf(address)
	if slot == game.SlotNone {
		return nil, ErrPlayerNotInMatch
	}
	if statemachine.Terminal(statemachine.State(m.Status)) {
		return nil, ErrMatchNotInProgress
	}

	round, err := r.repo.GetRound(m.ID, roundNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if round.ResolvedAt != nil {
		return nil, ErrRoundAlreadyResolved
	}
	if moveOf(round, slot) != nil {
		return nil, ErrMoveAlreadySubmitted
	}

	if err := r.repo.MarkRoundRejected(round.ID, slot); err != nil {
		return nil, err
	}
	r.publish(m.ID, broadcast.EventMoveRejected, map[string]interface{}{
		"player": keys.ShortAddress(address),
		"round":  roundNumber,
	})

	round, err = r.repo.GetRoundByID(round.ID)
	if err != nil {
		return nil, err
	}
	opponent := slot.Other()
	switch {
	case rejectedBy(round, opponent):
		return r.cancelMatch(m, round, "Match cancelled: both players rejected the round")
	case moveOf(round, opponent) != nil:
		return r.forfeitRound(m, round, opponent, "opponent rejected the round")
	default:
		return round, nil
	}
}

// HandleTimeout enforces the round's move deadline. The sweeper and any
// client-driven timer can both call it; duplicates collapse in-process on
// the timeout group and cross-process on the resolved_at write.
func (r *Resolver) HandleTimeout(code string, roundNumber int) (*game.Round, error) {
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, err
	}

	v, err, _ := dedupe.TimeoutGroup.Do(keys.RoundKey(m.ID, roundNumber), func() (interface{}, error) {
		return r.handleTimeout(m, roundNumber)
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*game.Round), nil
}

func (r *Resolver) handleTimeout(m *game.Match, roundNumber int) (*game.Round, error) {
	round, err := r.repo.GetRound(m.ID, roundNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if round.ResolvedAt != nil {
		// Race already settled: someone resolved the round first.
		return round, nil
	}
	if !r.now().After(round.MoveDeadlineAt.Add(r.grace)) {
		return nil, ErrDeadlineNotReached
	}

	moved1 := round.Player1Move != nil
	moved2 := round.Player2Move != nil
	switch {
	case moved1 && moved2:
		// Both moves landed inside the grace window; resolve normally.
		return r.ResolveRound(m.ID, roundNumber)
	case !moved1 && !moved2:
		return r.cancelMatch(m, round, "Match cancelled: both players timed out")
	case moved1:
		return r.forfeitRound(m, round, game.Slot1, "opponent timed out")
	default:
		return r.forfeitRound(m, round, game.Slot2, "opponent timed out")
	}
}

// forfeitRound awards the current fight round to the winner slot without a
// combat exchange. Rejection and timeout both funnel here, so the two
// paths cannot drift apart.
func (r *Resolver) forfeitRound(m *game.Match, round *game.Round, winner game.Slot, cause string) (*game.Round, error) {
	engine, err := r.rebuildEngine(m, round.RoundNumber)
	if err != nil {
		return nil, err
	}
	if engine.Finished() {
		return nil, ErrRoundAlreadyResolved
	}

	r.tryTransition(m, statemachine.StateResolvingRound)

	res, err := engine.ForfeitRound(winner)
	if err != nil {
		return nil, err
	}
	winnerName := r.characterName(m, winner)
	res.Narrative = append(res.Narrative,
		fmt.Sprintf("%s takes the round by forfeit: %s", winnerName, cause))
	return r.applyOutcome(m, round, res)
}

func (r *Resolver) characterName(m *game.Match, slot game.Slot) string {
	if c, ok := r.roster.Get(m.CharacterOf(slot)); ok {
		return c.Name
	}
	return keys.ShortAddress(m.AddressOf(slot))
}
