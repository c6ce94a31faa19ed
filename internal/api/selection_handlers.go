package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaikaman/kaspaclash/internal/constants"
)

type SelectCharacterPayload struct {
	CharacterID string `json:"character_id"`
}

// SelectCharacter records an unconfirmed pick for the calling player.
func (h *MatchHandler) SelectCharacter(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}
	var req SelectCharacterPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.CharacterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	m, err := h.svc.SelectCharacter(code, playerAddress(c), req.CharacterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		constants.JSONKeyStatus: m.Status,
		"player1_character":     m.Player1CharacterID,
		"player2_character":     m.Player2CharacterID,
	})
}

// ConfirmCharacter locks the calling player's current pick. Locking the
// second side starts the fight.
func (h *MatchHandler) ConfirmCharacter(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}

	m, err := h.svc.ConfirmCharacter(code, playerAddress(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		constants.JSONKeyStatus: m.Status,
		"player1_confirmed":     m.Player1Confirmed,
		"player2_confirmed":     m.Player2Confirmed,
	})
}

// SelectionTimeout lets clients report an elapsed selection deadline. The
// periodic sweeper calls the same operation; whichever lands first wins and
// the loser is a harmless no-op.
func (h *MatchHandler) SelectionTimeout(c *gin.Context) {
	code := normalizeJoinCode(c.Param("matchCode"))
	if code == "" || !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMatchCode})
		return
	}

	m, err := h.svc.HandleSelectionTimeout(code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: m.Status})
}
