package combat

import (
	"fmt"
	"math"

	"github.com/zaikaman/kaspaclash/internal/game"
)

// turnContext carries the per-turn working state for one fighter.
type turnContext struct {
	slot    game.Slot
	char    game.Character
	state   *FighterState
	move    game.Move
	blocked bool // move resolved to an effective block
	// staggerAtStart marks fighters that began the turn incapacitated so the
	// countdown only ticks for them, not for a guard broken this turn.
	staggerAtStart bool
}

// ResolveTurn resolves one exchange of simultaneous moves. It is pure:
// no I/O, no randomness, and identical inputs on identical state always
// yield identical results.
func (e *Engine) ResolveTurn(move1, move2 game.Move) (TurnResult, error) {
	if e.finished {
		return TurnResult{}, ErrEngineMisuse
	}
	if !move1.Valid() || !move2.Valid() {
		return TurnResult{}, ErrInvalidMove
	}

	res := TurnResult{}
	t1 := &turnContext{slot: game.Slot1, char: e.char1, state: &e.f1, move: move1}
	t2 := &turnContext{slot: game.Slot2, char: e.char2, state: &e.f2, move: move2}

	// Forced substitutions happen before anything else so costs and the
	// interaction matrix only ever see the effective move.
	e.applyStatusSubstitutions(t1, &res)
	e.applyStatusSubstitutions(t2, &res)

	// Energy regen at turn start.
	t1.state.clampEnergy(t1.char.EnergyRegen)
	t2.state.clampEnergy(t2.char.EnergyRegen)

	// Insufficient energy downgrades the move to the fallback punch rather
	// than failing the submission.
	e.applyEnergyFallback(t1, &res)
	e.applyEnergyFallback(t2, &res)

	// Pay costs.
	t1.state.clampEnergy(-moveCost(t1.move, t1.char))
	t2.state.clampEnergy(-moveCost(t2.move, t2.char))

	t1.blocked = t1.move == game.MoveBlock
	t2.blocked = t2.move == game.MoveBlock

	e.resolveExchange(t1, t2, &res)

	// Guard decay on turns the fighter did not block; guard gained while
	// blocking is handled inside the exchange.
	e.decayGuard(t1)
	e.decayGuard(t2)

	// Stagger countdown for fighters that began the turn incapacitated.
	e.tickStagger(t1, &res)
	e.tickStagger(t2, &res)

	e.finishTurn(t1, t2, &res)

	res.Move1 = t1.move
	res.Move2 = t2.move
	res.Fighter1 = e.f1
	res.Fighter2 = e.f2
	return res, nil
}

// applyStatusSubstitutions forces the effective move for staggered and
// stunned fighters. Stagger wins over stun: an incapacitated fighter cannot
// even throw the fallback punch.
func (e *Engine) applyStatusSubstitutions(t *turnContext, res *TurnResult) {
	if t.state.StaggerTurns > 0 {
		t.staggerAtStart = true
		t.move = game.MoveNone
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s is staggered and cannot act", t.char.Name))
		return
	}
	if t.state.IsStunned {
		t.state.IsStunned = false
		t.move = game.MovePunch
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s shakes off the stun and throws a desperate punch", t.char.Name))
	}
}

// applyEnergyFallback downgrades unaffordable attacks to the free punch.
func (e *Engine) applyEnergyFallback(t *turnContext, res *TurnResult) {
	cost := moveCost(t.move, t.char)
	if cost > 0 && t.state.Energy < cost {
		if t.move == game.MoveSpecial {
			res.Narrative = append(res.Narrative, fmt.Sprintf("%s lacks the energy for a special and falls back to a punch", t.char.Name))
		} else {
			res.Narrative = append(res.Narrative, fmt.Sprintf("%s is too exhausted for a %s and falls back to a punch", t.char.Name, t.move))
		}
		t.move = game.MovePunch
	}
}

func moveCost(m game.Move, c game.Character) int {
	switch m {
	case game.MoveKick:
		return KickCost
	case game.MoveSpecial:
		return int(math.Round(SpecialCost * c.SpecialCostModifier))
	}
	return 0
}

func baseDamage(m game.Move) int {
	switch m {
	case game.MovePunch:
		return PunchDamage
	case game.MoveKick:
		return KickDamage
	case game.MoveSpecial:
		return SpecialDamage
	}
	return 0
}

// resolveExchange applies the move interaction matrix.
func (e *Engine) resolveExchange(t1, t2 *turnContext, res *TurnResult) {
	a1 := t1.move.IsAttack()
	a2 := t2.move.IsAttack()

	switch {
	case t1.blocked && t2.blocked:
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s and %s circle each other behind raised guards", t1.char.Name, t2.char.Name))
	case a1 && t2.blocked:
		e.landHit(t1, t2, res)
	case a2 && t1.blocked:
		e.landHit(t2, t1, res)
	case a1 && a2:
		// Simultaneous attacks trade by priority; the faster strike lands
		// first and a knockout cancels the slower one. Equal priority means
		// a clean trade computed from the pre-exchange state.
		p1, p2 := t1.move.Priority(), t2.move.Priority()
		switch {
		case p1 > p2:
			e.landHit(t1, t2, res)
			if t2.state.HP > 0 {
				e.landHit(t2, t1, res)
			} else {
				res.Narrative = append(res.Narrative, fmt.Sprintf("%s never gets the %s off", t2.char.Name, t2.move))
			}
		case p2 > p1:
			e.landHit(t2, t1, res)
			if t1.state.HP > 0 {
				e.landHit(t1, t2, res)
			} else {
				res.Narrative = append(res.Narrative, fmt.Sprintf("%s never gets the %s off", t1.char.Name, t1.move))
			}
		default:
			e.landHit(t1, t2, res)
			e.landHit(t2, t1, res)
		}
	case a1:
		e.landHit(t1, t2, res)
	case a2:
		e.landHit(t2, t1, res)
	default:
		// Neither side acts (double stagger, or block against an
		// incapacitated opponent).
	}
}

// landHit applies one attack from atk to def, honoring block reduction,
// primed criticals, guard accrual and stun infliction.
func (e *Engine) landHit(atk, def *turnContext, res *TurnResult) {
	dmg := float64(baseDamage(atk.move)) * atk.char.DamageModifier(atk.move)

	crit := false
	if def.state.CritPrimed {
		def.state.CritPrimed = false
		dmg *= CritMultiplier
		crit = true
	}

	if def.blocked {
		dmg *= 1.0 - def.char.BlockEffectiveness
		final := int(math.Round(dmg))
		def.state.clampHP(-final)
		def.state.GuardMeter += GuardGainPerBlock
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s's %s thuds into %s's guard for %d", atk.char.Name, atk.move, def.char.Name, final))
		if def.state.GuardMeter >= GuardBreakThreshold {
			def.state.GuardMeter = 0
			def.state.StaggerTurns = StaggerDuration
			def.state.CritPrimed = true
			// A broken guard supersedes any stun.
			def.state.IsStunned = false
			res.Narrative = append(res.Narrative, fmt.Sprintf("%s's guard shatters — staggered!", def.char.Name))
		}
		return
	}

	final := int(math.Round(dmg))
	def.state.clampHP(-final)
	if crit {
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s lands a critical %s on the staggered %s for %d!", atk.char.Name, atk.move, def.char.Name, final))
	} else {
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s lands a %s on %s for %d", atk.char.Name, atk.move, def.char.Name, final))
	}

	// A clean special rattles the target into a stun, unless the target is
	// already incapacitated (stagger suppresses stun; stun does not stack).
	if atk.move == game.MoveSpecial && def.state.HP > 0 && def.state.StaggerTurns == 0 && !def.state.IsStunned {
		def.state.IsStunned = true
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s is stunned by the special!", def.char.Name))
	}
}

func (e *Engine) decayGuard(t *turnContext) {
	if t.blocked {
		return
	}
	t.state.GuardMeter -= GuardDecayPerTurn
	if t.state.GuardMeter < 0 {
		t.state.GuardMeter = 0
	}
}

func (e *Engine) tickStagger(t *turnContext, res *TurnResult) {
	if !t.staggerAtStart {
		return
	}
	t.state.StaggerTurns--
	if t.state.StaggerTurns <= 0 {
		t.state.StaggerTurns = 0
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s recovers their footing", t.char.Name))
	}
}

// finishTurn evaluates knockouts and advances round/turn counters.
func (e *Engine) finishTurn(t1, t2 *turnContext, res *TurnResult) {
	ko1 := t1.state.HP <= 0
	ko2 := t2.state.HP <= 0

	switch {
	case ko1 && ko2:
		// Double knockout: the fight round is a wash; neither tally moves.
		res.Narrative = append(res.Narrative, "Both fighters hit the canvas — the round is a draw")
		res.Outcome = OutcomeContinue
		e.f1.resetForRound()
		e.f2.resetForRound()
		e.currentRound++
		e.currentTurn = 1
	case ko2:
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s is down! %s takes the round", t2.char.Name, t1.char.Name))
		e.awardRound(game.Slot1, res)
	case ko1:
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s is down! %s takes the round", t1.char.Name, t2.char.Name))
		e.awardRound(game.Slot2, res)
	default:
		res.Outcome = OutcomeContinue
		e.currentTurn++
	}
}

// awardRound credits a fight round, checks the series majority and either
// finishes the match or resets for the next round.
func (e *Engine) awardRound(winner game.Slot, res *TurnResult) {
	var w *FighterState
	if winner == game.Slot1 {
		w = &e.f1
	} else {
		w = &e.f2
	}
	w.RoundsWon++
	res.Winner = winner

	if w.RoundsWon >= e.format.Majority() {
		res.Outcome = OutcomeMatchOver
		e.finished = true
		e.winner = winner
		return
	}
	res.Outcome = OutcomeRoundWon
	e.f1.resetForRound()
	e.f2.resetForRound()
	e.currentRound++
	e.currentTurn = 1
}
