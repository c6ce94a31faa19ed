package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zaikaman/kaspaclash/internal/constants"
	"github.com/zaikaman/kaspaclash/internal/selection"
	"github.com/zaikaman/kaspaclash/internal/service"
)

var joinCodeRegex = regexp.MustCompile("^[A-F0-9]{8}$")

func normalizeJoinCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// respondServiceError translates service sentinel errors into HTTP status
// codes. Conflict-style errors ("someone else already acted") map to 409 so
// clients can tell a lost race apart from a bad request.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrMatchNotFound})
	case errors.Is(err, service.ErrRoundNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRoundNotFound})
	case errors.Is(err, service.ErrPlayerNotInMatch):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrPlayerNotInThisMatch})
	case errors.Is(err, service.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAddress})
	case errors.Is(err, service.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
	case errors.Is(err, service.ErrUnknownMove):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUnknownMove})
	case errors.Is(err, service.ErrMatchFull):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchFull})
	case errors.Is(err, service.ErrAlreadyInMatch):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
	case errors.Is(err, service.ErrMatchNotInProgress):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMatchNotInProgress})
	case errors.Is(err, service.ErrSelectionNotInProgress):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrSelectionNotInProgress})
	case errors.Is(err, service.ErrMoveAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMoveAlreadySubmitted})
	case errors.Is(err, service.ErrAlreadyRejected):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMoveAlreadySubmitted})
	case errors.Is(err, service.ErrRoundAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrRoundAlreadyResolved})
	case errors.Is(err, service.ErrRoundNotReady),
		errors.Is(err, service.ErrDeadlineNotReached):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
	case errors.Is(err, service.ErrMoveDeadlineExpired):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMoveDeadlineExpired})
	case errors.Is(err, selection.ErrInvalidCharacter):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUnknownCharacter})
	case errors.Is(err, selection.ErrAlreadyConfirmed):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrSelectionConfirmed})
	case errors.Is(err, selection.ErrNoSelection):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNothingSelected})
	case errors.Is(err, selection.ErrDeadlineExpired):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrSelectionExpired})
	case errors.Is(err, service.ErrForceStateNotAllowed):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrForceStateNotAllowed})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInternal})
	}
}
