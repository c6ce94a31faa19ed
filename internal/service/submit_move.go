package service

import (
	"errors"
	"math/rand"
	"time"

	"github.com/zaikaman/kaspaclash/internal/bot"
	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/keys"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/statemachine"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// SubmitMove records one player's move for the round. The write is a
// set-iff-null conditional update, so a duplicate submission surfaces as
// ErrMoveAlreadySubmitted no matter how the requests interleave. When the
// submission completes the pair, resolution triggers inline.
func (r *Resolver) SubmitMove(code string, roundNumber int, address, moveStr string) (*game.Round, error) {
	move := game.Move(moveStr)
	if !move.Valid() {
		return nil, ErrUnknownMove
	}

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
	if rejectedBy(round, slot) {
		return nil, ErrAlreadyRejected
	}
	if r.now().After(round.MoveDeadlineAt.Add(r.grace)) {
		return nil, ErrMoveDeadlineExpired
	}

	if err := r.repo.SetRoundMove(round.ID, slot, move); err != nil {
		if errors.Is(err, storage.ErrStaleUpdate) {
			return nil, ErrMoveAlreadySubmitted
		}
		return nil, err
	}
	r.tryTransition(m, statemachine.StateMoveSubmitted)

	// The event deliberately omits the move itself: the opponent learns that
	// a move exists, not what it is, until the round resolves.
	r.publish(m.ID, broadcast.EventMoveSubmitted, map[string]interface{}{
		"player": keys.ShortAddress(address),
		"round":  roundNumber,
	})

	round, err = r.repo.GetRoundByID(round.ID)
	if err != nil {
		return nil, err
	}
	if round.Player1Move != nil && round.Player2Move != nil {
		return r.ResolveRound(m.ID, roundNumber)
	}

	if m.BotSlot() == slot.Other() {
		r.scheduleBotMove(m, roundNumber)
	}
	return round, nil
}

func rejectedBy(round *game.Round, slot game.Slot) bool {
	if slot == game.Slot1 {
		return round.Player1Rejected
	}
	return round.Player2Rejected
}

func moveOf(round *game.Round, slot game.Slot) *string {
	if slot == game.Slot1 {
		return round.Player1Move
	}
	return round.Player2Move
}

// scheduleBotMove queues the automated opponent's submission after a
// randomized thinking delay. The timer is detached from the originating
// request; the callback re-reads persisted state, so a round that resolved
// or expired in the meantime turns the callback into a no-op.
func (r *Resolver) scheduleBotMove(m *game.Match, roundNumber int) {
	botSlot := m.BotSlot()
	if botSlot == game.SlotNone {
		return
	}
	var delay time.Duration
	r.withRng(func(rng *rand.Rand) { delay = r.delay.ThinkingDelay(rng) })

	code := m.JoinCode
	time.AfterFunc(delay, func() {
		if err := r.playBotTurn(code, roundNumber, botSlot); err != nil {
			logging.Error("bot turn failed", err, logging.Fields{
				"join_code": code,
				"round":     roundNumber,
			})
		}
	})
}

// playBotTurn decides and submits the bot's move for the round. All the
// benign races (already moved, already resolved, deadline passed) are
// normal outcomes here, not errors.
func (r *Resolver) playBotTurn(code string, roundNumber int, botSlot game.Slot) error {
	m, err := r.loadMatch(code)
	if err != nil {
		return err
	}
	round, err := r.repo.GetRound(m.ID, roundNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if round.ResolvedAt != nil || moveOf(round, botSlot) != nil {
		return nil
	}

	engine, err := r.rebuildEngine(m, roundNumber)
	if err != nil {
		return err
	}
	c1, c2, err := r.characters(m)
	if err != nil {
		return err
	}
	ctx := bot.Context{
		Self:     engine.Fighter(botSlot),
		Opponent: engine.Fighter(botSlot.Other()),
		Round:    engine.Round(),
		Turn:     engine.Turn(),
	}
	if botSlot == game.Slot1 {
		ctx.SelfChar, ctx.OpponentChar = c1, c2
	} else {
		ctx.SelfChar, ctx.OpponentChar = c2, c1
	}

	var decision bot.Decision
	r.withRng(func(rng *rand.Rand) { decision = r.bots.Decide(ctx, rng) })
	logging.Info("bot move decided", logging.Fields{
		"join_code": code,
		"round":     roundNumber,
		"move":      string(decision.Move),
		"reasoning": decision.Reasoning,
	})

	_, err = r.SubmitMove(code, roundNumber, m.AddressOf(botSlot), string(decision.Move))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMoveAlreadySubmitted),
		errors.Is(err, ErrRoundAlreadyResolved),
		errors.Is(err, ErrMoveDeadlineExpired),
		errors.Is(err, ErrMatchNotInProgress):
		return nil
	}
	return err
}
