package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zaikaman/kaspaclash/internal/game"
)

type characterEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Price       int    `json:"price"`
	MaxHP       int    `json:"max_hp"`
	MaxEnergy   int    `json:"max_energy"`
	EnergyRegen int    `json:"energy_regen"`

	PunchModifier   float64 `json:"punch_modifier"`
	KickModifier    float64 `json:"kick_modifier"`
	SpecialModifier float64 `json:"special_modifier"`

	BlockEffectiveness  float64 `json:"block_effectiveness"`
	SpecialCostModifier float64 `json:"special_cost_modifier"`
}

type rawConfig struct {
	CharacterList []characterEntry `json:"character_list"`
}

// LoadRoster reads the character roster file at path. It requires the key
// `character_list` (snake_case) and validates every entry: the roster is
// the balance source of truth, so a malformed entry should stop the server
// at startup, not surface mid-match.
func LoadRoster(path string) (*game.Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if len(rc.CharacterList) == 0 {
		return nil, fmt.Errorf("config file %s: character_list is empty (provide 'character_list' array)", path)
	}

	out := make([]game.Character, 0, len(rc.CharacterList))
	seen := make(map[string]struct{}, len(rc.CharacterList))
	for _, e := range rc.CharacterList {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("config file %s: character entry missing 'id'", path)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("config file %s: duplicate character id '%s'", path, id)
		}
		seen[id] = struct{}{}
		if e.MaxHP <= 0 || e.MaxEnergy <= 0 || e.EnergyRegen <= 0 {
			return nil, fmt.Errorf("config file %s: character '%s' needs positive max_hp, max_energy and energy_regen", path, id)
		}
		if e.PunchModifier <= 0 || e.KickModifier <= 0 || e.SpecialModifier <= 0 {
			return nil, fmt.Errorf("config file %s: character '%s' needs positive damage modifiers", path, id)
		}
		if e.BlockEffectiveness < 0 || e.BlockEffectiveness >= 1 {
			return nil, fmt.Errorf("config file %s: character '%s' block_effectiveness must be in [0,1)", path, id)
		}
		if e.SpecialCostModifier <= 0 {
			return nil, fmt.Errorf("config file %s: character '%s' needs a positive special_cost_modifier", path, id)
		}
		out = append(out, game.Character{
			ID:                  id,
			Name:                e.Name,
			Tier:                e.Tier,
			Price:               e.Price,
			MaxHP:               e.MaxHP,
			MaxEnergy:           e.MaxEnergy,
			EnergyRegen:         e.EnergyRegen,
			PunchModifier:       e.PunchModifier,
			KickModifier:        e.KickModifier,
			SpecialModifier:     e.SpecialModifier,
			BlockEffectiveness:  e.BlockEffectiveness,
			SpecialCostModifier: e.SpecialCostModifier,
		})
	}
	return game.NewRoster(out), nil
}
