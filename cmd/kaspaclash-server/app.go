package main

import (
	"github.com/zaikaman/kaspaclash/internal/config"
	"github.com/zaikaman/kaspaclash/internal/game"
	"github.com/zaikaman/kaspaclash/internal/logging"
	"github.com/zaikaman/kaspaclash/internal/storage"
)

func loadRosterOrExit(path string) *game.Roster {
	roster, err := config.LoadRoster(path)
	if err != nil {
		logging.Fatal("Missing or invalid roster configuration", err, logging.Fields{
			"config_path": path,
			"hint":        "create a kaspaclash_config.json with a 'character_list' array of character objects",
		})
	}
	return roster
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	return storage.NewSQLiteRepository(db)
}
