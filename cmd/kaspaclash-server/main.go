package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/zaikaman/kaspaclash/internal/api"
	"github.com/zaikaman/kaspaclash/internal/broadcast"
	"github.com/zaikaman/kaspaclash/internal/config"
	"github.com/zaikaman/kaspaclash/internal/constants"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/service"
	"github.com/zaikaman/kaspaclash/internal/version"
)

func main() {
	// A missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		logging.Fatal("Invalid environment settings", err, nil)
	}
	roster := loadRosterOrExit(settings.ConfigPath)
	repo := createRepositoryOrExit(settings.DBPath)

	hub := broadcast.NewHub()
	resolver := service.NewResolver(repo, hub, roster, settings)
	handler := api.NewMatchHandler(resolver, hub, roster)

	startDeadlineSweeper(repo, resolver, settings.SweepInterval)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteCharacters, handler.Characters)
		apiRoutes.GET(constants.RouteLeaderboard, handler.Leaderboard)
		apiRoutes.GET(constants.RouteVersion, handler.Version)
		apiRoutes.GET(constants.RouteMatches, handler.ListMatches)
		apiRoutes.GET(constants.RouteMatchByCode, handler.GetMatch)
		apiRoutes.GET(constants.RouteMatchRounds, handler.GetRounds)
		apiRoutes.GET("/players/:address", handler.Profile)

		// Deadline reports carry no player identity: the sweeper would fire
		// the same operations anyway.
		apiRoutes.POST(constants.RouteMatchSelTimeout, handler.SelectionTimeout)
		apiRoutes.POST(constants.RouteMatchTimeout, handler.RoundTimeout)
		apiRoutes.POST(constants.RouteMatchForceState, handler.ForceState)

		// Player endpoints
		authed := apiRoutes.Group("")
		authed.Use(api.RequirePlayerAddress())
		authed.POST(constants.RouteMatches, handler.CreateMatch)
		authed.POST(constants.RouteMatchesJoin, handler.JoinMatch)
		authed.POST(constants.RouteMatchSelect, handler.SelectCharacter)
		authed.POST(constants.RouteMatchConfirm, handler.ConfirmCharacter)
		authed.POST(constants.RouteMatchMove, handler.SubmitMove)
		authed.POST(constants.RouteMatchReject, handler.RejectRound)
	}

	router.GET(constants.RouteHealthz, handler.Healthz)
	router.GET(constants.RouteMatchSpectate, handler.Spectate)

	logging.Info("Server started", logging.Fields{
		constants.LogFieldAddr: settings.Address,
		"version":              version.Version,
	})
	if err := router.Run(settings.Address); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
