package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zaikaman/kaspaclash/internal/constants"
)

func roundNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("roundNumber"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return 0, false
	}
	return n, true
}

type SubmitMovePayload struct {
	Move string `json:"move"`
}

// SubmitMove stores the calling player's move for the round. If this
// completes the pair the round resolves inline and the resolved round is
// returned; otherwise the caller waits for the opponent.
func (h *MatchHandler) SubmitMove(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	n, ok := roundNumberParam(c)
	if !ok {
		return
	}
	var req SubmitMovePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	round, err := h.svc.SubmitMove(code, n, playerAddress(c), req.Move)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if round.ResolvedAt != nil {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Round resolved", "round": round})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Move stored. Waiting for opponent."})
}

// RejectRound records that the calling player refuses to play the round.
func (h *MatchHandler) RejectRound(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	n, ok := roundNumberParam(c)
	if !ok {
		return
	}

	round, err := h.svc.HandleRejection(code, n, playerAddress(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if round != nil && round.ResolvedAt != nil {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Round closed", "round": round})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Rejection recorded. Waiting for opponent."})
}

// RoundTimeout lets clients report an elapsed move deadline. It may race
// the periodic sweeper; duplicates collapse inside the resolver.
func (h *MatchHandler) RoundTimeout(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	n, ok := roundNumberParam(c)
	if !ok {
		return
	}

	round, err := h.svc.HandleTimeout(code, n)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Timeout handled", "round": round})
}
