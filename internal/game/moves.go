package game

// Move is one of the four combat moves a player can submit per round.
// Using a dedicated type instead of plain string makes code safer and
// self-documenting.
type Move string

const (
	MoveNone    Move = ""
	MovePunch   Move = "punch"
	MoveKick    Move = "kick"
	MoveBlock   Move = "block"
	MoveSpecial Move = "special"
)

// Moves lists the valid moves in the fixed precedence order used for
// deterministic tie-breaks (lowest first).
var Moves = []Move{MovePunch, MoveKick, MoveBlock, MoveSpecial}

// Valid reports whether the move is one of the four playable moves.
func (m Move) Valid() bool {
	switch m {
	case MovePunch, MoveKick, MoveBlock, MoveSpecial:
		return true
	}
	return false
}

// IsAttack reports whether the move deals damage.
func (m Move) IsAttack() bool {
	return m == MovePunch || m == MoveKick || m == MoveSpecial
}

// Priority orders simultaneous attacks: faster/heavier moves strike first.
func (m Move) Priority() int {
	switch m {
	case MoveSpecial:
		return 3
	case MoveKick:
		return 2
	case MovePunch:
		return 1
	}
	return 0
}

// Slot identifies one of the two player positions in a match.
type Slot int

const (
	SlotNone Slot = 0
	Slot1    Slot = 1
	Slot2    Slot = 2
)

// Other returns the opposing slot.
func (s Slot) Other() Slot {
	switch s {
	case Slot1:
		return Slot2
	case Slot2:
		return Slot1
	}
	return SlotNone
}

// Format is the best-of-N series length.
type Format int

const (
	FormatBestOf1 Format = 1
	FormatBestOf3 Format = 3
	FormatBestOf5 Format = 5
)

// Valid reports whether the format is a supported series length.
func (f Format) Valid() bool {
	return f == FormatBestOf1 || f == FormatBestOf3 || f == FormatBestOf5
}

// Majority returns the rounds-won count that decides the match.
func (f Format) Majority() int {
	return int(f)/2 + 1
}
