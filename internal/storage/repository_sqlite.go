package storage

import (
	"errors"
	"time"

	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/rating"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository wraps a gorm DB in the Repository interface.
func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *sqliteRepository) CreateMatch(m *game.Match) error {
	return r.db.Create(m).Error
}

func (r *sqliteRepository) GetMatchByID(id uint) (*game.Match, error) {
	var m game.Match
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *sqliteRepository) FindMatchByJoinCode(code string) (*game.Match, error) {
	var m game.Match
	if err := r.db.Where("join_code = ?", code).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// SetMatchStatus is a compare-and-set: it only moves the status forward if
// nobody else already did. Racing callers observe ErrStaleUpdate and treat
// it as "someone else already acted".
func (r *sqliteRepository) SetMatchStatus(matchID uint, from, to string) error {
	res := r.db.Model(&game.Match{}).
		Where("id = ? AND status = ?", matchID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// ClaimPlayer2Slot assigns the joiner iff the slot is still empty. The
// loser of a join race matches no rows and gets ErrStaleUpdate.
func (r *sqliteRepository) ClaimPlayer2Slot(matchID uint, address string, selectionDeadline time.Time) error {
	res := r.db.Model(&game.Match{}).
		Where("id = ? AND player2_address = ''", matchID).
		Updates(map[string]interface{}{
			"player2_address":    address,
			"selection_deadline": selectionDeadline,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

func selectionColumns(slot game.Slot) (characterCol, confirmedCol string) {
	if slot == game.Slot1 {
		return "player1_character_id", "player1_confirmed"
	}
	return "player2_character_id", "player2_confirmed"
}

// SetCharacterSelection writes the slot's pick iff the slot has not locked
// one yet. A confirmed slot matches no rows and gets ErrStaleUpdate.
func (r *sqliteRepository) SetCharacterSelection(matchID uint, slot game.Slot, characterID string) error {
	characterCol, confirmedCol := selectionColumns(slot)
	res := r.db.Model(&game.Match{}).
		Where("id = ? AND "+confirmedCol+" = ?", matchID, false).
		Update(characterCol, characterID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// ConfirmSlot locks the slot's pick iff a pick exists and the flag is still
// unset. Touching only the slot's own flag keeps concurrent confirmations
// from the two players independent.
func (r *sqliteRepository) ConfirmSlot(matchID uint, slot game.Slot) error {
	characterCol, confirmedCol := selectionColumns(slot)
	res := r.db.Model(&game.Match{}).
		Where("id = ? AND "+confirmedCol+" = ? AND "+characterCol+" <> ''", matchID, false).
		Update(confirmedCol, true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

func (r *sqliteRepository) SetMatchMessage(matchID uint, message string) error {
	return r.db.Model(&game.Match{}).
		Where("id = ?", matchID).
		Update("message", message).Error
}

func (r *sqliteRepository) SetRoundTallies(matchID uint, player1RoundsWon, player2RoundsWon int) error {
	return r.db.Model(&game.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"player1_rounds_won": player1RoundsWon,
			"player2_rounds_won": player2RoundsWon,
		}).Error
}

func (r *sqliteRepository) SetMatchDecision(matchID uint, winnerAddress, message string) error {
	return r.db.Model(&game.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"winner_address": winnerAddress,
			"message":        message,
		}).Error
}

// MarkStatsCounted claims the stats_counted flag. Only the caller that flips
// it runs the once-per-match follow-ups (ratings, settlement).
func (r *sqliteRepository) MarkStatsCounted(matchID uint) (bool, error) {
	res := r.db.Model(&game.Match{}).
		Where("id = ? AND stats_counted = ?", matchID, false).
		Update("stats_counted", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sqliteRepository) ListOpenMatches() ([]game.Match, error) {
	var matches []game.Match
	err := r.db.
		Where("status = ? AND player2_address = ''", "waiting").
		Order("created_at desc").
		Find(&matches).Error
	return matches, err
}

// CreateOrFetchRound inserts the round if absent and returns the winning
// row either way. The unique (match_id, round_number) index plus OnConflict
// DoNothing makes the insert race-safe for concurrent triggers.
func (r *sqliteRepository) CreateOrFetchRound(matchID uint, number int, deadline time.Time) (*game.Round, error) {
	round := game.Round{MatchID: matchID, RoundNumber: number, MoveDeadlineAt: deadline}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "round_number"}},
		DoNothing: true,
	}).Create(&round).Error
	if err != nil {
		return nil, err
	}
	return r.GetRound(matchID, number)
}

func (r *sqliteRepository) GetRoundByID(id uint) (*game.Round, error) {
	var round game.Round
	if err := r.db.First(&round, id).Error; err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (r *sqliteRepository) GetRound(matchID uint, number int) (*game.Round, error) {
	var round game.Round
	err := r.db.Where("match_id = ? AND round_number = ?", matchID, number).First(&round).Error
	if err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (r *sqliteRepository) RoundsForMatch(matchID uint) ([]game.Round, error) {
	var rounds []game.Round
	err := r.db.Where("match_id = ?", matchID).Order("round_number asc").Find(&rounds).Error
	return rounds, err
}

func moveColumn(slot game.Slot) string {
	if slot == game.Slot1 {
		return "player1_move"
	}
	return "player2_move"
}

// SetRoundMove is the core concurrency primitive: set the move iff the
// column is still NULL. A second writer for the same slot matches no rows.
func (r *sqliteRepository) SetRoundMove(roundID uint, slot game.Slot, move game.Move) error {
	col := moveColumn(slot)
	res := r.db.Model(&game.Round{}).
		Where("id = ? AND "+col+" IS NULL", roundID).
		Update(col, string(move))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// MarkRoundRejected sets the slot's rejection flag. Monotonic: setting an
// already-set flag is a no-op, not an error, so duplicate rejection events
// are harmless.
func (r *sqliteRepository) MarkRoundRejected(roundID uint, slot game.Slot) error {
	col := "player1_rejected"
	if slot == game.Slot2 {
		col = "player2_rejected"
	}
	return r.db.Model(&game.Round{}).
		Where("id = ?", roundID).
		Update(col, true).Error
}

// FinalizeRound writes the resolution outcome iff the round is still
// unresolved. The resolved_at guard is what makes redundant resolution
// triggers idempotent at the persistence layer.
func (r *sqliteRepository) FinalizeRound(roundID uint, resolution RoundResolution) error {
	now := time.Now()
	res := r.db.Model(&game.Round{}).
		Where("id = ? AND resolved_at IS NULL", roundID).
		Updates(map[string]interface{}{
			"resolved_at":          now,
			"winner_address":       resolution.WinnerAddress,
			"narrative":            resolution.Narrative,
			"player1_hp_after":     resolution.Player1HPAfter,
			"player2_hp_after":     resolution.Player2HPAfter,
			"player1_energy_after": resolution.Player1EnergyAfter,
			"player2_energy_after": resolution.Player2EnergyAfter,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// FindExpiredRounds returns unresolved rounds whose deadline is at or
// before now. The caller (the sweeper) decides how to resolve them.
func (r *sqliteRepository) FindExpiredRounds(now time.Time) ([]game.Round, error) {
	var rounds []game.Round
	err := r.db.
		Where("resolved_at IS NULL AND move_deadline_at <= ?", now).
		Find(&rounds).Error
	return rounds, err
}

func (r *sqliteRepository) FindExpiredSelections(now time.Time) ([]game.Match, error) {
	var matches []game.Match
	err := r.db.
		Where("status = ? AND selection_deadline <= ?", "character_select", now).
		Find(&matches).Error
	return matches, err
}

func (r *sqliteRepository) UpsertProfile(address, displayName string) error {
	if game.IsBotAddress(address) {
		return nil
	}
	var p game.PlayerProfile
	if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = game.PlayerProfile{Address: address, Rating: rating.InitialRating}
		} else {
			return err
		}
	}
	if displayName != "" {
		p.DisplayName = displayName
	}
	return r.db.Save(&p).Error
}

func (r *sqliteRepository) GetProfile(address string) (*game.PlayerProfile, error) {
	var p game.PlayerProfile
	if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &game.PlayerProfile{Address: address, Rating: rating.InitialRating}, nil
		}
		return nil, err
	}
	return &p, nil
}

// RecordMatchOutcome applies tallies and Elo deltas for a decided match.
// Profiles are created on demand; bot sides are skipped entirely.
func (r *sqliteRepository) RecordMatchOutcome(winnerAddress, loserAddress string) error {
	load := func(addr string) (*game.PlayerProfile, error) {
		var p game.PlayerProfile
		if err := r.db.Where("address = ?", addr).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &game.PlayerProfile{Address: addr, Rating: rating.InitialRating}, nil
			}
			return nil, err
		}
		return &p, nil
	}

	winnerIsBot := game.IsBotAddress(winnerAddress)
	loserIsBot := game.IsBotAddress(loserAddress)

	var winner, loser *game.PlayerProfile
	var err error
	winnerRating, loserRating := rating.InitialRating, rating.InitialRating
	if !winnerIsBot {
		if winner, err = load(winnerAddress); err != nil {
			return err
		}
		winnerRating = winner.Rating
	}
	if !loserIsBot {
		if loser, err = load(loserAddress); err != nil {
			return err
		}
		loserRating = loser.Rating
	}

	newWinner, newLoser := rating.Outcome(winnerRating, loserRating)

	if winner != nil {
		winner.Rating = newWinner
		winner.Wins++
		winner.MatchesPlayed++
		if err := r.db.Save(winner).Error; err != nil {
			return err
		}
	}
	if loser != nil {
		loser.Rating = newLoser
		loser.Losses++
		loser.MatchesPlayed++
		if err := r.db.Save(loser).Error; err != nil {
			return err
		}
	}
	return nil
}

// TopPlayers returns top N players ordered by rating desc, then wins desc.
func (r *sqliteRepository) TopPlayers(limit int) ([]game.PlayerProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	var players []game.PlayerProfile
	err := r.db.Model(&game.PlayerProfile{}).
		Order("rating DESC").
		Order("wins DESC").
		Limit(limit).
		Find(&players).Error
	return players, err
}

// CreateSettlementOnce relies on the unique match_id index: the first
// writer creates the row, later writers insert nothing.
func (r *sqliteRepository) CreateSettlementOnce(s *game.Settlement) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}},
		DoNothing: true,
	}).Create(s)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sqliteRepository) GetSettlement(matchID uint) (*game.Settlement, error) {
	var s game.Settlement
	if err := r.db.Where("match_id = ?", matchID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
