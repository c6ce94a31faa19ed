package bot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/zaikaman/kaspaclash/internal/combat"
	"github.com/zaikaman/kaspaclash/internal/game"
)

func testChar() game.Character {
	return game.Character{
		ID: "test", Name: "Test",
		MaxHP: 100, MaxEnergy: 100, EnergyRegen: 20,
		PunchModifier: 1.0, KickModifier: 1.0, SpecialModifier: 1.0,
		BlockEffectiveness: 0.5, SpecialCostModifier: 1.0,
	}
}

func ctxWith(selfHP, selfEnergy, oppEnergy, oppGuard int) Context {
	return Context{
		Self:         combat.FighterState{HP: selfHP, MaxHP: 100, Energy: selfEnergy, MaxEnergy: 100},
		Opponent:     combat.FighterState{HP: 100, MaxHP: 100, Energy: oppEnergy, MaxEnergy: 100, GuardMeter: oppGuard},
		SelfChar:     testChar(),
		OpponentChar: testChar(),
		Round:        1,
		Turn:         1,
	}
}

func TestDecideFinisherSpecial(t *testing.T) {
	e := New(0.5)
	// Plenty of energy, opponent guard down: always the special.
	d := e.Decide(ctxWith(100, 80, 0, 0), rand.New(rand.NewSource(1)))
	if d.Move != game.MoveSpecial {
		t.Fatalf("expected special finisher, got %s (%s)", d.Move, d.Reasoning)
	}
}

func TestDecideSurvivalBlock(t *testing.T) {
	e := New(0.9)
	// Critical HP while the opponent can afford a special, and not enough
	// energy for a finisher of our own.
	d := e.Decide(ctxWith(25, 10, 60, 80), rand.New(rand.NewSource(1)))
	if d.Move != game.MoveBlock {
		t.Fatalf("expected survival block, got %s (%s)", d.Move, d.Reasoning)
	}
}

func TestDecideNeverPicksUnaffordableMove(t *testing.T) {
	e := New(1.0)
	// 10 energy: kick (25) and special (50) are out. Opponent guard is high
	// so the finisher branch does not fire either.
	for seed := int64(0); seed < 50; seed++ {
		d := e.Decide(ctxWith(100, 10, 0, 90), rand.New(rand.NewSource(seed)))
		if d.Move == game.MoveKick || d.Move == game.MoveSpecial {
			t.Fatalf("seed %d: picked unaffordable move %s", seed, d.Move)
		}
	}
}

func TestDecideDeterministicForSeed(t *testing.T) {
	e := New(0.6)
	ctx := ctxWith(70, 40, 30, 60)
	a := e.Decide(ctx, rand.New(rand.NewSource(42)))
	b := e.Decide(ctx, rand.New(rand.NewSource(42)))
	if a.Move != b.Move || a.Reasoning != b.Reasoning {
		t.Fatalf("same seed produced different decisions: %+v vs %+v", a, b)
	}
}

func TestAggressionClamped(t *testing.T) {
	for _, aggr := range []float64{-1.0, 2.5} {
		e := New(aggr)
		if e.aggression < 0 || e.aggression > 1 {
			t.Fatalf("aggression %f not clamped: %f", aggr, e.aggression)
		}
	}
}

func TestThinkingDelayWithinBand(t *testing.T) {
	band := DelayBand{Min: 100 * time.Millisecond, Max: 400 * time.Millisecond}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		d := band.ThinkingDelay(rng)
		if d < band.Min || d >= band.Max {
			t.Fatalf("delay %s outside [%s, %s)", d, band.Min, band.Max)
		}
	}
}

func TestThinkingDelayDegenerateBand(t *testing.T) {
	band := DelayBand{Min: 2 * time.Second, Max: 2 * time.Second}
	if d := band.ThinkingDelay(rand.New(rand.NewSource(1))); d != band.Min {
		t.Fatalf("expected min delay for a degenerate band, got %s", d)
	}
}
