package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/combat"
	"github.com/zaikaman/kaspaclash/internal/dedupe"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/keys"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/statemachine"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// ResolveRound resolves the round once both moves are present. It is
// idempotent end to end: in-process duplicates collapse on the singleflight
// group, cross-process duplicates lose the resolved_at conditional write and
// return the already-persisted outcome.
func (r *Resolver) ResolveRound(matchID uint, roundNumber int) (*game.Round, error) {
	v, err, _ := dedupe.ResolveGroup.Do(keys.RoundKey(matchID, roundNumber), func() (interface{}, error) {
		return r.resolveRound(matchID, roundNumber)
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Round), nil
}

func (r *Resolver) resolveRound(matchID uint, roundNumber int) (*game.Round, error) {
	m, err := r.repo.GetMatchByID(matchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	round, err := r.repo.GetRound(matchID, roundNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if round.ResolvedAt != nil {
		return round, nil
	}
	if round.Player1Move == nil || round.Player2Move == nil {
		return nil, ErrRoundNotReady
	}

	engine, err := r.rebuildEngine(m, roundNumber)
	if err != nil {
		return nil, err
	}
	if engine.Finished() {
		return nil, ErrMatchNotInProgress
	}

	r.tryTransition(m, statemachine.StateResolvingRound)

	res, err := engine.ResolveTurn(game.Move(*round.Player1Move), game.Move(*round.Player2Move))
	if err != nil {
		return nil, err
	}
	return r.applyOutcome(m, round, res)
}

// rebuildEngine reconstructs combat state by replaying every resolved round
// before the given one. Forfeited rounds replay as round awards; cancelled
// rounds (finalized with neither winner nor a move pair) replay as nothing.
func (r *Resolver) rebuildEngine(m *game.Match, beforeNumber int) (*combat.Engine, error) {
	c1, c2, err := r.characters(m)
	if err != nil {
		return nil, err
	}
	rounds, err := r.repo.RoundsForMatch(m.ID)
	if err != nil {
		return nil, err
	}

	engine := combat.New(c1, c2, game.Format(m.Format))
	for _, rd := range rounds {
		if rd.RoundNumber >= beforeNumber {
			break
		}
		if rd.ResolvedAt == nil {
			continue
		}
		switch {
		case rd.Player1Move != nil && rd.Player2Move != nil:
			if _, err := engine.ResolveTurn(game.Move(*rd.Player1Move), game.Move(*rd.Player2Move)); err != nil {
				return nil, fmt.Errorf("replay of round %d failed: %w", rd.RoundNumber, err)
			}
		case rd.WinnerAddress != nil:
			if _, err := engine.ForfeitRound(m.SlotOf(*rd.WinnerAddress)); err != nil {
				return nil, fmt.Errorf("replay of forfeited round %d failed: %w", rd.RoundNumber, err)
			}
		}
	}
	return engine, nil
}

// applyOutcome persists one engine result for the round and advances the
// match. The FinalizeRound conditional write is the serialization point:
// whoever wins it owns the match progression that follows; everyone else
// returns the row the winner wrote.
func (r *Resolver) applyOutcome(m *game.Match, round *game.Round, res combat.TurnResult) (*game.Round, error) {
	resolution := storage.RoundResolution{
		Narrative:          strings.Join(res.Narrative, " "),
		Player1HPAfter:     res.Fighter1.HP,
		Player2HPAfter:     res.Fighter2.HP,
		Player1EnergyAfter: res.Fighter1.Energy,
		Player2EnergyAfter: res.Fighter2.Energy,
	}
	if res.Outcome != combat.OutcomeContinue {
		winner := m.AddressOf(res.Winner)
		resolution.WinnerAddress = &winner
	}

	if err := r.repo.FinalizeRound(round.ID, resolution); err != nil {
		if errors.Is(err, storage.ErrStaleUpdate) {
			return r.repo.GetRoundByID(round.ID)
		}
		return nil, err
	}

	m.Player1RoundsWon = res.Fighter1.RoundsWon
	m.Player2RoundsWon = res.Fighter2.RoundsWon

	r.publish(m.ID, broadcast.EventRoundResolved, map[string]interface{}{
		"round":          round.RoundNumber,
		"narrative":      resolution.Narrative,
		"player1_hp":     res.Fighter1.HP,
		"player2_hp":     res.Fighter2.HP,
		"player1_energy": res.Fighter1.Energy,
		"player2_energy": res.Fighter2.Energy,
		"rounds_won":     []int{res.Fighter1.RoundsWon, res.Fighter2.RoundsWon},
	})

	if res.Outcome == combat.OutcomeMatchOver {
		if err := r.finishMatch(m, res.Winner); err != nil {
			return nil, err
		}
	} else {
		if err := r.openNextRound(m, round.RoundNumber+1); err != nil {
			return nil, err
		}
	}
	return r.repo.GetRoundByID(round.ID)
}

// openNextRound moves the match back into awaiting_moves and creates the
// next round row.
func (r *Resolver) openNextRound(m *game.Match, number int) error {
	r.tryTransition(m, statemachine.StateRoundResolved)
	r.tryTransition(m, statemachine.StateAwaitingMoves)
	if err := r.repo.SetRoundTallies(m.ID, m.Player1RoundsWon, m.Player2RoundsWon); err != nil {
		return err
	}
	round, err := r.repo.CreateOrFetchRound(m.ID, number, r.now().Add(r.moveTimeout))
	if err != nil {
		return err
	}
	r.scheduleBotMove(m, round.RoundNumber)
	return nil
}

// finishMatch records the decided match and fires the at-most-once
// downstream triggers. Trigger failures are logged, never rolled back: the
// match result stands regardless of rating or settlement hiccups.
func (r *Resolver) finishMatch(m *game.Match, winner game.Slot) error {
	winnerAddr := m.AddressOf(winner)
	loserAddr := m.AddressOf(winner.Other())

	r.tryTransition(m, statemachine.StateMatchEnded)
	m.WinnerAddress = winnerAddr
	m.Message = fmt.Sprintf("%s wins the match", keys.ShortAddress(winnerAddr))
	if err := r.repo.SetRoundTallies(m.ID, m.Player1RoundsWon, m.Player2RoundsWon); err != nil {
		return err
	}
	if err := r.repo.SetMatchDecision(m.ID, winnerAddr, m.Message); err != nil {
		return err
	}

	claimed, err := r.repo.MarkStatsCounted(m.ID)
	if err != nil {
		return err
	}
	if claimed {
		if err := r.repo.RecordMatchOutcome(winnerAddr, loserAddr); err != nil {
			logging.Error("failed to record match outcome", err, logging.Fields{
				"match_id": m.ID,
				"winner":   keys.ShortAddress(winnerAddr),
			})
		}
		if _, err := r.repo.CreateSettlementOnce(&game.Settlement{
			MatchID:       m.ID,
			Kind:          game.SettlementPayout,
			WinnerAddress: winnerAddr,
			LoserAddress:  loserAddr,
		}); err != nil {
			logging.Error("failed to create payout settlement", err, logging.Fields{
				"match_id": m.ID,
			})
		}
	}

	r.publish(m.ID, broadcast.EventMatchEnded, map[string]interface{}{
		"winner":     keys.ShortAddress(winnerAddr),
		"rounds_won": []int{m.Player1RoundsWon, m.Player2RoundsWon},
	})

	r.tryTransition(m, statemachine.StateResults)
	return nil
}

// cancelMatch voids the match and records a refund obligation. Used when
// both players reject the round or both time out.
func (r *Resolver) cancelMatch(m *game.Match, round *game.Round, reason string) (*game.Round, error) {
	if round != nil {
		err := r.repo.FinalizeRound(round.ID, storage.RoundResolution{Narrative: reason})
		if err != nil && !errors.Is(err, storage.ErrStaleUpdate) {
			return nil, err
		}
		if errors.Is(err, storage.ErrStaleUpdate) {
			return r.repo.GetRoundByID(round.ID)
		}
	}

	r.tryTransition(m, statemachine.StateCancelled)
	m.Message = reason
	if err := r.repo.SetMatchMessage(m.ID, reason); err != nil {
		return nil, err
	}

	if _, err := r.repo.CreateSettlementOnce(&game.Settlement{
		MatchID: m.ID,
		Kind:    game.SettlementRefund,
	}); err != nil {
		logging.Error("failed to create refund settlement", err, logging.Fields{
			"match_id": m.ID,
		})
	}

	r.publish(m.ID, broadcast.EventMatchCancelled, map[string]interface{}{
		"reason": reason,
	})

	if round != nil {
		return r.repo.GetRoundByID(round.ID)
	}
	return nil, nil
}
