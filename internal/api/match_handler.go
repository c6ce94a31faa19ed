package api

import (
	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/service"
)

// MatchHandler groups all match-related HTTP handlers.
type MatchHandler struct {
	svc    *service.Resolver
	hub    *broadcast.Hub
	roster *game.Roster
}

// NewMatchHandler creates a MatchHandler backed by the resolver and the
// broadcast hub.
func NewMatchHandler(svc *service.Resolver, hub *broadcast.Hub, roster *game.Roster) *MatchHandler {
	return &MatchHandler{svc: svc, hub: hub, roster: roster}
}
