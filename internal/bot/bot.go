package bot

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/zaikaman/kaspaclash/internal/combat"
	"github.com/zaikaman/kaspaclash/internal/game"
)

// Context is the full snapshot a decision is made from. The engine keeps no
// memory beyond it, so a fresh Engine per decision produces the same
// choices as a long-lived one given the same context and rng stream.
type Context struct {
	Self     combat.FighterState
	Opponent combat.FighterState

	SelfChar     game.Character
	OpponentChar game.Character

	Round int
	Turn  int
}

// Decision is a chosen move plus the reasoning that produced it. The
// reasoning is logged, never shown to players, so bot play stays
// indistinguishable from a slow human.
type Decision struct {
	Move      game.Move
	Reasoning string
}

// Engine selects moves from weighted heuristics. Aggression in [0,1] biases
// the weighted-random branch toward attacks; ties always break by the fixed
// move precedence so behavior is reproducible in tests.
type Engine struct {
	aggression float64
}

// New returns a decision engine with the given aggression parameter.
// Values outside [0,1] are clamped.
func New(aggression float64) *Engine {
	if aggression < 0 {
		aggression = 0
	}
	if aggression > 1 {
		aggression = 1
	}
	return &Engine{aggression: aggression}
}

// Low-HP and guard-pressure thresholds for the heuristic branches.
const (
	lowHPFraction   = 0.3
	lowGuardCeiling = 25
)

// Decide picks a move for the current combat state. The rng is supplied by
// the caller so tests can seed it; the decision itself is synchronous and
// instantaneous. Any human-like delay is the resolver's business.
func (e *Engine) Decide(ctx Context, rng *rand.Rand) Decision {
	specialCost := int(math.Round(combat.SpecialCost * ctx.SelfChar.SpecialCostModifier))

	// Finisher: enough energy and the opponent's guard is down.
	if ctx.Self.Energy >= specialCost && ctx.Opponent.GuardMeter <= lowGuardCeiling {
		return Decision{
			Move:      game.MoveSpecial,
			Reasoning: fmt.Sprintf("energy %d covers special (%d) and opponent guard is low (%d)", ctx.Self.Energy, specialCost, ctx.Opponent.GuardMeter),
		}
	}

	// Survival: low on health while the opponent can afford a special.
	oppSpecialCost := int(math.Round(combat.SpecialCost * ctx.OpponentChar.SpecialCostModifier))
	if float64(ctx.Self.HP) <= float64(ctx.Self.MaxHP)*lowHPFraction && ctx.Opponent.Energy >= oppSpecialCost {
		return Decision{
			Move:      game.MoveBlock,
			Reasoning: fmt.Sprintf("hp %d/%d is critical and opponent energy %d suggests an incoming special", ctx.Self.HP, ctx.Self.MaxHP, ctx.Opponent.Energy),
		}
	}

	// Otherwise a weighted random pick, biased by aggression. Kick needs
	// energy; never weight moves the fighter cannot afford.
	weights := map[game.Move]float64{
		game.MovePunch: 1.0,
		game.MoveBlock: 1.0 - e.aggression*0.5,
	}
	if ctx.Self.Energy >= combat.KickCost {
		weights[game.MoveKick] = 0.5 + e.aggression
	}
	if ctx.Self.Energy >= specialCost {
		weights[game.MoveSpecial] = e.aggression * 0.75
	}

	total := 0.0
	for _, m := range game.Moves {
		total += weights[m]
	}
	pick := rng.Float64() * total

	// Walk the fixed precedence order so equal rolls resolve the same way
	// every time.
	acc := 0.0
	chosen := game.MovePunch
	for _, m := range game.Moves {
		w := weights[m]
		if w <= 0 {
			continue
		}
		acc += w
		if pick < acc {
			chosen = m
			break
		}
	}
	return Decision{
		Move:      chosen,
		Reasoning: fmt.Sprintf("weighted pick (aggression %.2f, roll %.3f of %.3f)", e.aggression, pick, total),
	}
}

// DelayBand is the randomized "thinking time" window used to emulate human
// reaction speed.
type DelayBand struct {
	Min time.Duration
	Max time.Duration
}

// ThinkingDelay returns a uniformly random duration within the band. The
// resolver schedules the bot's submission after it, detached from the
// originating request.
func (b DelayBand) ThinkingDelay(rng *rand.Rand) time.Duration {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + time.Duration(rng.Int63n(int64(b.Max-b.Min)))
}
