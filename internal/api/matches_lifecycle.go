package api

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/zaikaman/kaspaclash/internal/constants"
)

type CreateMatchPayload struct {
	DisplayName string `json:"display_name"`
	Format      int    `json:"format"`
	VsBot       bool   `json:"vs_bot"`
}

// CreateMatch opens a new match and returns its join code.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req CreateMatchPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if utf8.RuneCountInString(req.DisplayName) > 32 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.Format == 0 {
		req.Format = 3
	}

	m, err := h.svc.CreateMatch(playerAddress(c), req.DisplayName, req.Format, req.VsBot)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"match_id":  m.ID,
		"join_code": m.JoinCode,
		"status":    m.Status,
	})
}

type JoinMatchPayload struct {
	JoinCode    string `json:"join_code"`
	DisplayName string `json:"display_name"`
}

// JoinMatch claims the open slot of a waiting match via join code.
func (h *MatchHandler) JoinMatch(c *gin.Context) {
	var req JoinMatchPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	code := normalizeJoinCode(req.JoinCode)
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}

	m, err := h.svc.JoinMatch(code, playerAddress(c), req.DisplayName)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"match_id":  m.ID,
		"join_code": m.JoinCode,
		"status":    m.Status,
		"message":   m.Message,
	})
}

// ListMatches returns joinable matches for the lobby.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches, err := h.svc.OpenMatches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchMatches})
		return
	}
	c.JSON(http.StatusOK, matches)
}

// GetMatch returns the current match state.
func (h *MatchHandler) GetMatch(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	m, err := h.svc.GetMatch(code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetRounds returns the match's rounds in play order.
func (h *MatchHandler) GetRounds(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	rounds, err := h.svc.Rounds(code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

type ForceStatePayload struct {
	State string `json:"state"`
}

// ForceState is the operator recovery endpoint: it overrides the transition
// table, but only out of the error and disconnected states.
func (h *MatchHandler) ForceState(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	var req ForceStatePayload
	if err := c.ShouldBindJSON(&req); err != nil || req.State == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	m, err := h.svc.ForceState(code, req.State)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: m.Status})
}
