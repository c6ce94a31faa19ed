package game

// Character holds the fixed stats of a playable fighter. Characters are
// configured via the server config file (kaspaclash_config.json) and are
// not persisted: the config is the source of truth, as numeric tuning
// changes between deployments.
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Price       int    `json:"price"`
	MaxHP       int    `json:"max_hp"`
	MaxEnergy   int    `json:"max_energy"`
	EnergyRegen int    `json:"energy_regen"`

	// Per-move damage multipliers.
	PunchModifier   float64 `json:"punch_modifier"`
	KickModifier    float64 `json:"kick_modifier"`
	SpecialModifier float64 `json:"special_modifier"`

	// BlockEffectiveness is the fraction of incoming damage absorbed while
	// blocking (0.6 means 60% reduction).
	BlockEffectiveness float64 `json:"block_effectiveness"`
	// SpecialCostModifier scales the base special energy cost.
	SpecialCostModifier float64 `json:"special_cost_modifier"`
}

// DamageModifier returns the character's multiplier for an attack move.
func (c Character) DamageModifier(m Move) float64 {
	switch m {
	case MovePunch:
		return c.PunchModifier
	case MoveKick:
		return c.KickModifier
	case MoveSpecial:
		return c.SpecialModifier
	}
	return 1.0
}

// Roster is the validated set of playable characters for this deployment.
type Roster struct {
	byID  map[string]Character
	order []Character
}

// NewRoster builds a roster keyed by character ID. Input order is kept for
// listing endpoints.
func NewRoster(chars []Character) *Roster {
	r := &Roster{byID: make(map[string]Character, len(chars)), order: chars}
	for _, c := range chars {
		r.byID[c.ID] = c
	}
	return r
}

// Get looks up a character by ID.
func (r *Roster) Get(id string) (Character, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// IDs returns all character IDs in configuration order. Used by the
// selection fallback to pick a uniformly random valid character.
func (r *Roster) IDs() []string {
	ids := make([]string, 0, len(r.order))
	for _, c := range r.order {
		ids = append(ids, c.ID)
	}
	return ids
}

// List returns all characters in configuration order.
func (r *Roster) List() []Character {
	out := make([]Character, len(r.order))
	copy(out, r.order)
	return out
}
