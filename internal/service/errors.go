package service

import "errors"

// Sentinel errors surfaced to the API layer. Conflict-style errors mean
// "someone else already acted"; callers must not treat them as system
// failures.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrRoundNotFound    = errors.New("round not found")
	ErrPlayerNotInMatch = errors.New("player not in match")
	ErrMatchFull        = errors.New("match is full")
	ErrAlreadyInMatch   = errors.New("player already joined this match")

	ErrInvalidAddress = errors.New("invalid player address")
	ErrInvalidFormat  = errors.New("invalid match format")
	ErrUnknownMove    = errors.New("unknown move")

	ErrMatchNotInProgress     = errors.New("match is not in progress")
	ErrSelectionNotInProgress = errors.New("match is not in character select")

	ErrMoveAlreadySubmitted = errors.New("move already submitted for this round")
	ErrAlreadyRejected      = errors.New("rejection already recorded for this round")
	ErrRoundAlreadyResolved = errors.New("round already resolved")
	ErrRoundNotReady        = errors.New("round is missing a move")
	ErrMoveDeadlineExpired  = errors.New("move deadline expired")
	ErrDeadlineNotReached   = errors.New("move deadline has not passed")

	ErrForceStateNotAllowed = errors.New("force-state allowed only from error or disconnected")
)
