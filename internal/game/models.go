package game

import (
	"time"

	"gorm.io/gorm"
)

// Match is the durable record for one head-to-head fight. It is owned by
// the match state machine: Status is only changed through valid
// transitions (or an operator force-state), never written ad hoc.
type Match struct {
	gorm.Model
	JoinCode string `json:"join_code" gorm:"uniqueIndex;size:8"`
	// Format is the number of rounds in the series (1, 3 or 5).
	Format int `json:"format"`

	Player1Address string `json:"player1_address" gorm:"index"`
	Player2Address string `json:"player2_address" gorm:"index"`

	// Character negotiation state. The per-player selection is persisted on
	// the match so any process can run the negotiation protocol; it is only
	// meaningful while Status is character_select.
	Player1CharacterID string    `json:"player1_character_id"`
	Player2CharacterID string    `json:"player2_character_id"`
	Player1Confirmed   bool      `json:"player1_confirmed"`
	Player2Confirmed   bool      `json:"player2_confirmed"`
	SelectionDeadline  time.Time `json:"selection_deadline"`

	Status string `json:"status"`

	Player1RoundsWon int    `json:"player1_rounds_won"`
	Player2RoundsWon int    `json:"player2_rounds_won"`
	WinnerAddress    string `json:"winner_address"`
	Message          string `json:"message"`

	// StatsCounted guards the at-most-once downstream triggers (rating,
	// settlement) fired on match completion.
	StatsCounted bool `json:"-"`
}

func (Match) TableName() string { return "matches" }

// Round is the durable record for one exchange of simultaneous moves.
// Move columns start NULL and are set exactly once; the conditional
// "set iff null" update on them is the concurrency primitive for the whole
// resolver. Rejection flags are monotonic. ResolvedAt marks the round as
// resolved; WinnerAddress is set only when the exchange ended a fight round
// (knockout or forfeit).
type Round struct {
	gorm.Model
	MatchID     uint `json:"match_id" gorm:"uniqueIndex:idx_rounds_match_number"`
	RoundNumber int  `json:"round_number" gorm:"uniqueIndex:idx_rounds_match_number"`

	Player1Move *string `json:"player1_move"`
	Player2Move *string `json:"player2_move"`

	Player1Rejected bool `json:"player1_rejected"`
	Player2Rejected bool `json:"player2_rejected"`

	MoveDeadlineAt time.Time  `json:"move_deadline_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	WinnerAddress  *string    `json:"winner_address"`

	// Health/energy snapshots after resolution; used by clients and as a
	// cross-check against replayed engine state.
	Player1HPAfter     int `json:"player1_hp_after"`
	Player2HPAfter     int `json:"player2_hp_after"`
	Player1EnergyAfter int `json:"player1_energy_after"`
	Player2EnergyAfter int `json:"player2_energy_after"`

	Narrative string `json:"narrative" gorm:"size:1024"`
}

func (Round) TableName() string { return "rounds" }

// PlayerProfile stores unique player identity and aggregate stats keyed by
// wallet address.
type PlayerProfile struct {
	gorm.Model
	Address       string `json:"address" gorm:"uniqueIndex"`
	DisplayName   string `json:"display_name"`
	Rating        int    `json:"rating"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	MatchesPlayed int    `json:"matches_played"`
}

func (PlayerProfile) TableName() string { return "player_profiles" }

// Settlement records the payout obligation produced by a completed match.
// The external payout collaborator consumes these rows; the core writes at
// most one per match (enforced by the unique index on MatchID).
type Settlement struct {
	gorm.Model
	MatchID       uint   `json:"match_id" gorm:"uniqueIndex"`
	Kind          string `json:"kind"` // payout | refund
	WinnerAddress string `json:"winner_address"`
	LoserAddress  string `json:"loser_address"`
}

const (
	SettlementPayout = "payout"
	SettlementRefund = "refund"
)

func (Settlement) TableName() string { return "settlements" }
