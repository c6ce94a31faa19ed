package combat

import (
	"errors"

	"github.com/zaikaman/kaspaclash/internal/game"
)

// Combat tuning constants. These mirror the published balance sheet; the
// per-character multipliers come from the roster config.
const (
	PunchDamage   = 10
	KickDamage    = 15
	SpecialDamage = 25

	PunchCost   = 0
	KickCost    = 25
	SpecialCost = 50

	// GuardGainPerBlock accrues on the blocker each time an attack lands on
	// the guard; GuardBreakThreshold triggers the stagger.
	GuardGainPerBlock   = 25
	GuardBreakThreshold = 100
	// GuardDecayPerTurn bleeds off the meter on turns the fighter does not
	// block.
	GuardDecayPerTurn = 10

	// StaggerDuration is how many turns a guard break incapacitates.
	StaggerDuration = 2
	// CritMultiplier applies to the guaranteed hit on a staggered fighter.
	CritMultiplier = 1.5
)

var (
	// ErrInvalidMove is returned for a move outside the four playable moves.
	ErrInvalidMove = errors.New("invalid move")
	// ErrEngineMisuse is returned when ResolveTurn is invoked on a finished
	// engine. It indicates a caller bug, not a user-facing condition.
	ErrEngineMisuse = errors.New("engine misuse: match already over")
)

// Outcome classifies the result of one resolved turn.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeRoundWon
	OutcomeMatchOver
)

// TurnResult reports the effects of one resolved move pair.
type TurnResult struct {
	Outcome   Outcome
	Winner    game.Slot // winner of the fight round (or match) when Outcome != continue
	Narrative []string
	// Effective moves after forced substitutions (stun fallback,
	// insufficient-energy special downgrade).
	Move1, Move2 game.Move
	// Post-turn fighter snapshots.
	Fighter1, Fighter2 FighterState
}

// Engine owns the combat state for a single match. It is pure and
// deterministic: identical prior state plus an identical move pair always
// produces byte-identical output, which is what makes replay-based state
// reconstruction possible. The engine performs no I/O and holds no hidden
// state beyond what a replay reconstructs.
type Engine struct {
	char1, char2 game.Character
	f1, f2       FighterState
	format       game.Format

	currentRound int // fight round (best-of-N unit)
	currentTurn  int // exchange counter within the fight round

	finished bool
	winner   game.Slot
}

// New constructs a fresh engine for the given pairing. Constructed once per
// match and mutated only through ResolveTurn.
func New(char1, char2 game.Character, format game.Format) *Engine {
	e := &Engine{
		char1:        char1,
		char2:        char2,
		format:       format,
		currentRound: 1,
		currentTurn:  1,
	}
	e.f1 = FighterState{MaxHP: char1.MaxHP, MaxEnergy: char1.MaxEnergy}
	e.f2 = FighterState{MaxHP: char2.MaxHP, MaxEnergy: char2.MaxEnergy}
	e.f1.resetForRound()
	e.f2.resetForRound()
	return e
}

// Replay rebuilds engine state by resolving every prior move pair in order.
// This is the mandatory statelessness strategy: resolution may happen in a
// different process than the one that received the moves, so the persisted
// pairs are the only source of truth.
func Replay(char1, char2 game.Character, format game.Format, pairs [][2]game.Move) (*Engine, error) {
	e := New(char1, char2, format)
	for _, p := range pairs {
		if _, err := e.ResolveTurn(p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Fighter returns a snapshot of the slot's fighter state.
func (e *Engine) Fighter(s game.Slot) FighterState {
	if s == game.Slot1 {
		return e.f1
	}
	return e.f2
}

// Round returns the current fight round number.
func (e *Engine) Round() int { return e.currentRound }

// Turn returns the exchange counter within the current fight round.
func (e *Engine) Turn() int { return e.currentTurn }

// Format returns the series length.
func (e *Engine) Format() game.Format { return e.format }

// Finished reports whether the match has been decided.
func (e *Engine) Finished() bool { return e.finished }

// Winner returns the winning slot once the match is decided.
func (e *Engine) Winner() game.Slot { return e.winner }

// ForfeitRound awards the current fight round to the given slot without a
// combat exchange. Used by the resolver when the opponent rejected or timed
// out. Both fighters reset as if the round had ended by knockout.
func (e *Engine) ForfeitRound(winner game.Slot) (TurnResult, error) {
	if e.finished {
		return TurnResult{}, ErrEngineMisuse
	}
	res := TurnResult{Winner: winner}
	e.awardRound(winner, &res)
	res.Fighter1 = e.f1
	res.Fighter2 = e.f2
	return res, nil
}
