package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/keys"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/statemachine"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

// generateJoinCode derives a short shareable code. The first UUID group is
// hex, so the code stays unambiguous in chat and on stream overlays.
func generateJoinCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// CreateMatch opens a new match hosted by the given address. With vsBot set
// the second slot is filled by an automated opponent immediately and the
// match skips the waiting room straight into character select.
func (r *Resolver) CreateMatch(hostAddress, displayName string, format int, vsBot bool) (*game.Match, error) {
	if !game.ValidAddress(hostAddress) || game.IsBotAddress(hostAddress) {
		return nil, ErrInvalidAddress
	}
	f := game.Format(format)
	if !f.Valid() {
		return nil, ErrInvalidFormat
	}

	m := &game.Match{
		JoinCode:       generateJoinCode(),
		Format:         format,
		Player1Address: hostAddress,
		Status:         string(statemachine.StateWaiting),
		Message:        "Waiting for an opponent",
	}

	if vsBot {
		m.Player2Address = game.BotAddressPrefix + uuid.NewString()[:8]
		m.Status = string(statemachine.StateCharacterSelect)
		m.SelectionDeadline = r.now().Add(r.selectionTimeout)
		m.Message = "Choose your fighter"
		// The bot picks and locks immediately; only the human negotiates.
		ids := r.roster.IDs()
		m.Player2CharacterID = ids[r.randIntn(len(ids))]
		m.Player2Confirmed = true
	}

	if err := r.repo.CreateMatch(m); err != nil {
		return nil, err
	}
	if err := r.repo.UpsertProfile(hostAddress, displayName); err != nil {
		logging.Error("failed to upsert host profile", err, logging.Fields{
			"address": keys.ShortAddress(hostAddress),
		})
	}

	r.publish(m.ID, broadcast.EventPlayerJoined, map[string]interface{}{
		"player":    keys.ShortAddress(hostAddress),
		"join_code": m.JoinCode,
	})
	return m, nil
}

// JoinMatch claims the open slot of a waiting match. The slot assignment is
// a conditional update, so exactly one of two concurrent joiners wins.
func (r *Resolver) JoinMatch(code, address, displayName string) (*game.Match, error) {
	if !game.ValidAddress(address) || game.IsBotAddress(address) {
		return nil, ErrInvalidAddress
	}
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, err
	}
	if m.Player1Address == address {
		return nil, ErrAlreadyInMatch
	}
	if m.Player2Address != "" {
		return nil, ErrMatchFull
	}
	if m.Status != string(statemachine.StateWaiting) {
		return nil, ErrMatchNotInProgress
	}

	deadline := r.now().Add(r.selectionTimeout)
	if err := r.repo.ClaimPlayer2Slot(m.ID, address, deadline); err != nil {
		if errors.Is(err, storage.ErrStaleUpdate) {
			return nil, ErrMatchFull
		}
		return nil, err
	}
	m.Player2Address = address
	m.SelectionDeadline = deadline

	if err := r.transition(m, statemachine.StateCharacterSelect); err != nil {
		// The claim succeeded, so a failed transition here is a genuine
		// inconsistency rather than a benign race.
		return nil, err
	}
	m.Message = "Choose your fighter"
	if err := r.repo.SetMatchMessage(m.ID, m.Message); err != nil {
		return nil, err
	}

	if err := r.repo.UpsertProfile(address, displayName); err != nil {
		logging.Error("failed to upsert joiner profile", err, logging.Fields{
			"address": keys.ShortAddress(address),
		})
	}

	r.publish(m.ID, broadcast.EventPlayerJoined, map[string]interface{}{
		"player":    keys.ShortAddress(address),
		"join_code": m.JoinCode,
	})
	return m, nil
}

// GetMatch returns the match for a join code.
func (r *Resolver) GetMatch(code string) (*game.Match, error) {
	return r.loadMatch(code)
}

// Rounds returns the match's rounds in play order.
func (r *Resolver) Rounds(code string) ([]game.Round, error) {
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, err
	}
	return r.repo.RoundsForMatch(m.ID)
}

// OpenMatches lists joinable matches for the lobby.
func (r *Resolver) OpenMatches() ([]game.Match, error) {
	return r.repo.ListOpenMatches()
}

// Leaderboard returns the top rated players.
func (r *Resolver) Leaderboard(limit int) ([]game.PlayerProfile, error) {
	return r.repo.TopPlayers(limit)
}

// Profile returns the aggregate stats for a player address.
func (r *Resolver) Profile(address string) (*game.PlayerProfile, error) {
	if !game.ValidAddress(address) {
		return nil, ErrInvalidAddress
	}
	return r.repo.GetProfile(address)
}

// ForceState is the operator escape hatch: it overrides the transition
// table, but only out of the error and disconnected states.
func (r *Resolver) ForceState(code, state string) (*game.Match, error) {
	next := statemachine.State(state)
	if !statemachine.Known(next) {
		return nil, ErrForceStateNotAllowed
	}
	m, err := r.loadMatch(code)
	if err != nil {
		return nil, err
	}
	sm := statemachine.New(m.ID, statemachine.State(m.Status))
	if err := sm.ForceState(next); err != nil {
		return nil, ErrForceStateNotAllowed
	}
	if err := r.repo.SetMatchStatus(m.ID, m.Status, string(next)); err != nil {
		if errors.Is(err, storage.ErrStaleUpdate) {
			return nil, ErrForceStateNotAllowed
		}
		return nil, err
	}
	m.Status = string(next)
	return m, nil
}
