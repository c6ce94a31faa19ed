package rating

import "testing"

func TestEqualRatingsMoveByHalfK(t *testing.T) {
	w, l := Outcome(1000, 1000)
	if w != 1016 || l != 984 {
		t.Fatalf("expected 1016/984 for an even match, got %d/%d", w, l)
	}
}

func TestUpsetMovesMoreThanExpectedWin(t *testing.T) {
	// Underdog beats a favorite: the swing exceeds half K.
	w, l := Outcome(1000, 1200)
	if w-1000 <= KFactor/2 {
		t.Fatalf("upset should move more than %d points, moved %d", KFactor/2, w-1000)
	}
	if 1200-l != w-1000 {
		t.Fatalf("gains and losses must be symmetric, got +%d/-%d", w-1000, 1200-l)
	}

	// Favorite beats an underdog: the swing is small.
	w, _ = Outcome(1200, 1000)
	if w-1200 >= KFactor/2 {
		t.Fatalf("expected win should move less than %d points, moved %d", KFactor/2, w-1200)
	}
}

func TestRatingFloor(t *testing.T) {
	_, l := Outcome(2000, 5)
	if l < Floor {
		t.Fatalf("rating dropped below floor: %d", l)
	}
}
