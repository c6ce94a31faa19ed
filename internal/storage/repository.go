package storage

import (
	"errors"
	"time"

	"github.com/zaikaman/kaspaclash/internal/game"
)

var (
	// ErrNotFound wraps the driver's record-not-found for callers.
	ErrNotFound = errors.New("record not found")
	// ErrStaleUpdate is returned when a conditional update matched no rows:
	// someone else already set the column. Callers treat it as "already
	// acted", not as a failure.
	ErrStaleUpdate = errors.New("conditional update matched no rows")
)

// RoundResolution is the full set of columns written when a round resolves.
// Applied atomically and only while resolved_at is still NULL.
type RoundResolution struct {
	WinnerAddress *string
	Narrative     string

	Player1HPAfter     int
	Player2HPAfter     int
	Player1EnergyAfter int
	Player2EnergyAfter int
}

// Repository is the persistence boundary. Match and Round rows are the
// single source of truth and the synchronization point between stateless
// request handlers; every mutation of shared columns goes through a
// narrowly-scoped conditional update, never a blind overwrite.
type Repository interface {
	CreateMatch(m *game.Match) error
	GetMatchByID(id uint) (*game.Match, error)
	FindMatchByJoinCode(code string) (*game.Match, error)
	// SetMatchStatus performs a compare-and-set on the status column.
	SetMatchStatus(matchID uint, from, to string) error
	// ClaimPlayer2Slot fills the second slot iff it is still empty, so two
	// concurrent joiners cannot both land in the match.
	ClaimPlayer2Slot(matchID uint, address string, selectionDeadline time.Time) error
	// SetCharacterSelection writes the slot's pick iff the slot has not
	// confirmed yet.
	SetCharacterSelection(matchID uint, slot game.Slot, characterID string) error
	// ConfirmSlot locks the slot's pick iff a pick exists and the slot is
	// still unconfirmed. Each slot's columns are written only by this and
	// SetCharacterSelection, so the two players' writes cannot erase each
	// other.
	ConfirmSlot(matchID uint, slot game.Slot) error
	SetMatchMessage(matchID uint, message string) error
	SetRoundTallies(matchID uint, player1RoundsWon, player2RoundsWon int) error
	// SetMatchDecision records the winner and closing message of a decided
	// match.
	SetMatchDecision(matchID uint, winnerAddress, message string) error
	// MarkStatsCounted claims the at-most-once downstream triggers for the
	// match; reports whether this call made the claim.
	MarkStatsCounted(matchID uint) (bool, error)
	ListOpenMatches() ([]game.Match, error)

	// CreateOrFetchRound is the race-safe insert for round creation: two
	// concurrent triggers both end up holding the same row.
	CreateOrFetchRound(matchID uint, number int, deadline time.Time) (*game.Round, error)
	GetRoundByID(id uint) (*game.Round, error)
	GetRound(matchID uint, number int) (*game.Round, error)
	// RoundsForMatch returns all rounds ordered by round number; the
	// resolver replays them to rebuild combat state.
	RoundsForMatch(matchID uint) ([]game.Round, error)
	// SetRoundMove sets the slot's move iff it is currently NULL.
	SetRoundMove(roundID uint, slot game.Slot, move game.Move) error
	// MarkRoundRejected sets the slot's rejection flag; flags are monotonic
	// and never cleared.
	MarkRoundRejected(roundID uint, slot game.Slot) error
	// FinalizeRound writes the resolution outcome iff the round is still
	// unresolved.
	FinalizeRound(roundID uint, res RoundResolution) error
	FindExpiredRounds(now time.Time) ([]game.Round, error)
	FindExpiredSelections(now time.Time) ([]game.Match, error)

	UpsertProfile(address, displayName string) error
	GetProfile(address string) (*game.PlayerProfile, error)
	// RecordMatchOutcome updates tallies and ratings for a decided match.
	// Bot addresses are skipped.
	RecordMatchOutcome(winnerAddress, loserAddress string) error
	TopPlayers(limit int) ([]game.PlayerProfile, error)

	// CreateSettlementOnce inserts the settlement if none exists for the
	// match yet; reports whether this call created it.
	CreateSettlementOnce(s *game.Settlement) (bool, error)
	GetSettlement(matchID uint) (*game.Settlement, error)
}
