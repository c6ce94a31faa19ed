package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the runtime knobs, parsed from the environment. Gameplay
// timing values are explicit configuration, not implicit races: the
// deadline grace in particular decides how far past a round deadline a
// late submission is still honored.
type Settings struct {
	Address    string `env:"KASPACLASH_ADDR" envDefault:":8080"`
	DBPath     string `env:"KASPACLASH_DB" envDefault:"./data/kaspaclash.db"`
	ConfigPath string `env:"KASPACLASH_CONFIG" envDefault:"./kaspaclash_config.json"`

	MoveTimeout      time.Duration `env:"KASPACLASH_MOVE_TIMEOUT" envDefault:"30s"`
	SelectionTimeout time.Duration `env:"KASPACLASH_SELECTION_TIMEOUT" envDefault:"60s"`
	DeadlineGrace    time.Duration `env:"KASPACLASH_DEADLINE_GRACE" envDefault:"2s"`
	SweepInterval    time.Duration `env:"KASPACLASH_SWEEP_INTERVAL" envDefault:"5s"`

	BotDelayMin   time.Duration `env:"KASPACLASH_BOT_DELAY_MIN" envDefault:"1500ms"`
	BotDelayMax   time.Duration `env:"KASPACLASH_BOT_DELAY_MAX" envDefault:"4s"`
	BotAggression float64       `env:"KASPACLASH_BOT_AGGRESSION" envDefault:"0.6"`
}

// LoadSettings parses settings from the environment and sanity-checks the
// timing values.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse environment settings: %w", err)
	}
	if s.MoveTimeout <= 0 || s.SelectionTimeout <= 0 {
		return nil, fmt.Errorf("move and selection timeouts must be positive")
	}
	if s.DeadlineGrace < 0 {
		return nil, fmt.Errorf("deadline grace must not be negative")
	}
	if s.BotDelayMax < s.BotDelayMin {
		return nil, fmt.Errorf("bot delay band is inverted (min %s > max %s)", s.BotDelayMin, s.BotDelayMax)
	}
	return &s, nil
}
