package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zaikaman/kaspaclash/internal/constants"
	"github.com/zaikaman/kaspaclash/internal/version"
)

// Characters returns the playable roster.
func (h *MatchHandler) Characters(c *gin.Context) {
	c.JSON(http.StatusOK, h.roster.List())
}

// Leaderboard returns the top rated players.
func (h *MatchHandler) Leaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	players, err := h.svc.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, players)
}

// Profile returns aggregate stats for a player address.
func (h *MatchHandler) Profile(c *gin.Context) {
	p, err := h.svc.Profile(c.Param("address"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Version reports build metadata.
func (h *MatchHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

// Healthz is the liveness probe.
func (h *MatchHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}

// Spectate upgrades the request to a websocket subscribed to the match's
// event stream. Spectating needs no player identity.
func (h *MatchHandler) Spectate(c *gin.Context) {
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
	if err := h.hub.Subscribe(c.Writer, c.Request, m.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInternal})
	}
}
