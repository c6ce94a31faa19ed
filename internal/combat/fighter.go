package combat

// FighterState is the per-combatant mutable state for one match. It is a
// derived, disposable projection: any process can rebuild it by replaying
// the persisted move pairs, so it is never shared across requests.
type FighterState struct {
	HP        int `json:"hp"`
	MaxHP     int `json:"max_hp"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`

	// GuardMeter accumulates while blocking under attack. Crossing the
	// threshold breaks the guard and staggers the fighter.
	GuardMeter int `json:"guard_meter"`

	// IsStunned forces the next move to the fallback punch.
	IsStunned bool `json:"is_stunned"`
	// StaggerTurns counts remaining turns of incapacitation after a guard
	// break. A staggered fighter cannot act.
	StaggerTurns int `json:"stagger_turns"`
	// CritPrimed guarantees a critical on the next hit taken, set when the
	// guard breaks and consumed by the first incoming hit.
	CritPrimed bool `json:"crit_primed"`

	RoundsWon int `json:"rounds_won"`
}

func (f *FighterState) clampHP(delta int) {
	f.HP += delta
	if f.HP < 0 {
		f.HP = 0
	}
	if f.HP > f.MaxHP {
		f.HP = f.MaxHP
	}
}

func (f *FighterState) clampEnergy(delta int) {
	f.Energy += delta
	if f.Energy < 0 {
		f.Energy = 0
	}
	if f.Energy > f.MaxEnergy {
		f.Energy = f.MaxEnergy
	}
}

// resetForRound restores the fighter for the start of a new fight round.
// HP refills, energy drops back to the starting charge and all status
// effects clear; RoundsWon carries across.
func (f *FighterState) resetForRound() {
	f.HP = f.MaxHP
	f.Energy = f.MaxEnergy / 2
	f.GuardMeter = 0
	f.IsStunned = false
	f.StaggerTurns = 0
	f.CritPrimed = false
}
