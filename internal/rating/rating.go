package rating

import "math"

// Standard Elo with a fixed K factor. Ratings never drop below the floor.
const (
	InitialRating = 1000
	KFactor       = 32
	Floor         = 0
)

func expected(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

// Outcome returns the post-match ratings for a decided match.
func Outcome(winner, loser int) (newWinner, newLoser int) {
	ew := expected(winner, loser)
	newWinner = winner + int(math.Round(KFactor*(1.0-ew)))
	newLoser = loser + int(math.Round(KFactor*(0.0-(1.0-ew))))
	if newWinner < Floor {
		newWinner = Floor
	}
	if newLoser < Floor {
		newLoser = Floor
	}
	return newWinner, newLoser
}
