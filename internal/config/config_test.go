package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kaspaclash_config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validEntry = `{
  "id": "cyber-ninja", "name": "Cyber Ninja", "tier": "Free", "price": 0,
  "max_hp": 96, "max_energy": 105, "energy_regen": 20,
  "punch_modifier": 1.15, "kick_modifier": 1.05, "special_modifier": 1.0,
  "block_effectiveness": 0.6, "special_cost_modifier": 0.85
}`

func TestLoadRoster(t *testing.T) {
	path := writeConfig(t, `{"character_list": [`+validEntry+`]}`)
	roster, err := LoadRoster(path)
	require.NoError(t, err)

	c, ok := roster.Get("cyber-ninja")
	require.True(t, ok)
	require.Equal(t, 96, c.MaxHP)
	require.Equal(t, 0.85, c.SpecialCostModifier)
	require.Len(t, roster.List(), 1)
}

func TestLoadRosterMissingFile(t *testing.T) {
	_, err := LoadRoster(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadRosterEmptyList(t *testing.T) {
	path := writeConfig(t, `{"character_list": []}`)
	_, err := LoadRoster(path)
	require.ErrorContains(t, err, "character_list is empty")
}

func TestLoadRosterDuplicateID(t *testing.T) {
	path := writeConfig(t, `{"character_list": [`+validEntry+`,`+validEntry+`]}`)
	_, err := LoadRoster(path)
	require.ErrorContains(t, err, "duplicate character id")
}

func TestLoadRosterRejectsBadStats(t *testing.T) {
	cases := map[string]string{
		"zero hp":        `{"character_list": [{"id": "x", "max_hp": 0, "max_energy": 100, "energy_regen": 20, "punch_modifier": 1, "kick_modifier": 1, "special_modifier": 1, "block_effectiveness": 0.5, "special_cost_modifier": 1}]}`,
		"full block":     `{"character_list": [{"id": "x", "max_hp": 100, "max_energy": 100, "energy_regen": 20, "punch_modifier": 1, "kick_modifier": 1, "special_modifier": 1, "block_effectiveness": 1.0, "special_cost_modifier": 1}]}`,
		"free special":   `{"character_list": [{"id": "x", "max_hp": 100, "max_energy": 100, "energy_regen": 20, "punch_modifier": 1, "kick_modifier": 1, "special_modifier": 1, "block_effectiveness": 0.5, "special_cost_modifier": 0}]}`,
		"zero modifiers": `{"character_list": [{"id": "x", "max_hp": 100, "max_energy": 100, "energy_regen": 20, "punch_modifier": 0, "kick_modifier": 1, "special_modifier": 1, "block_effectiveness": 0.5, "special_cost_modifier": 1}]}`,
	}
	for name, body := range cases {
		_, err := LoadRoster(writeConfig(t, body))
		require.Error(t, err, name)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, ":8080", s.Address)
	require.Positive(t, s.MoveTimeout)
	require.Positive(t, s.SelectionTimeout)
	require.GreaterOrEqual(t, s.BotDelayMax, s.BotDelayMin)
}
