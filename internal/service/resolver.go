package service

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/zaikaman/kaspaclash/internal/bot"
	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/config"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/statemachine"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// Resolver arbitrates the match lifecycle: character negotiation, move
// submission, deadline and rejection handling, and idempotent round
// resolution. It is stateless between calls: all cross-request
// coordination happens through the persisted Match/Round rows, so any
// number of Resolver instances across processes behave as one.
type Resolver struct {
	repo   storage.Repository
	pub    broadcast.Publisher
	roster *game.Roster

	bots  *bot.Engine
	delay bot.DelayBand

	moveTimeout      time.Duration
	selectionTimeout time.Duration
	grace            time.Duration

	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customizes a Resolver; used by tests to pin the clock and rng.
type Option func(*Resolver)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithRand replaces the randomness source used for bot decisions, thinking
// delays and fallback character picks.
func WithRand(rng *rand.Rand) Option {
	return func(r *Resolver) { r.rng = rng }
}

// NewResolver wires the resolver with its collaborators and tuning.
func NewResolver(repo storage.Repository, pub broadcast.Publisher, roster *game.Roster, cfg *config.Settings, opts ...Option) *Resolver {
	r := &Resolver{
		repo:             repo,
		pub:              pub,
		roster:           roster,
		bots:             bot.New(cfg.BotAggression),
		delay:            bot.DelayBand{Min: cfg.BotDelayMin, Max: cfg.BotDelayMax},
		moveTimeout:      cfg.MoveTimeout,
		selectionTimeout: cfg.SelectionTimeout,
		grace:            cfg.DeadlineGrace,
		now:              time.Now,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// randIntn serializes access to the shared rng; request handlers run
// concurrently.
func (r *Resolver) randIntn(n int) int {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Intn(n)
}

func (r *Resolver) withRng(fn func(*rand.Rand)) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	fn(r.rng)
}

// transition advances the match through the state machine and persists the
// new status with a compare-and-set. A rejected transition or a lost CAS
// both mean a racing event got there first; callers decide whether that is
// benign.
func (r *Resolver) transition(m *game.Match, next statemachine.State) error {
	sm := statemachine.New(m.ID, statemachine.State(m.Status))
	if err := sm.Transition(next); err != nil {
		return err
	}
	if err := r.repo.SetMatchStatus(m.ID, m.Status, string(next)); err != nil {
		return err
	}
	m.Status = string(next)
	return nil
}

// tryTransition is transition for the benign-race call sites: a rejected
// or lost transition is swallowed.
func (r *Resolver) tryTransition(m *game.Match, next statemachine.State) bool {
	err := r.transition(m, next)
	if err == nil {
		return true
	}
	if errors.Is(err, statemachine.ErrInvalidTransition) || errors.Is(err, storage.ErrStaleUpdate) {
		return false
	}
	logging.Error("status update failed", err, logging.Fields{
		"match_id": m.ID,
		"to":       string(next),
	})
	return false
}

func (r *Resolver) publish(matchID uint, eventType string, payload map[string]interface{}) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(matchID, broadcast.NewEvent(eventType, matchID, payload))
}

// loadMatch resolves a join code to the match record.
func (r *Resolver) loadMatch(code string) (*game.Match, error) {
	m, err := r.repo.FindMatchByJoinCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

// characters returns the configured characters for the match pairing.
func (r *Resolver) characters(m *game.Match) (c1, c2 game.Character, err error) {
	c1, ok := r.roster.Get(m.Player1CharacterID)
	if !ok {
		return c1, c2, selectionInvalid(m.Player1CharacterID)
	}
	c2, ok = r.roster.Get(m.Player2CharacterID)
	if !ok {
		return c1, c2, selectionInvalid(m.Player2CharacterID)
	}
	return c1, c2, nil
}

func selectionInvalid(id string) error {
	return errors.New("match references unknown character '" + id + "'")
}
