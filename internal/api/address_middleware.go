package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaikaman/kaspaclash/internal/constants"
	"github.com/zaikaman/kaspaclash/internal/game"
)

const ctxPlayerAddress = "playerAddress"

// RequirePlayerAddress derives the caller's identity from the wallet
// address header. The core trusts the gateway to have verified the wallet
// signature; here only the shape is checked. Bot addresses are rejected:
// bots never originate HTTP requests.
func RequirePlayerAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.GetHeader(constants.HeaderPlayerAddress)
		if addr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAddressRequired})
			return
		}
		if game.IsBotAddress(addr) || !game.ValidAddress(addr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAddress})
			return
		}
		c.Set(ctxPlayerAddress, addr)
		c.Next()
	}
}

// playerAddress returns the identity the middleware stored on the context.
func playerAddress(c *gin.Context) string {
	v, _ := c.Get(ctxPlayerAddress)
	s, _ := v.(string)
	return s
}
