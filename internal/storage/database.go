package storage

import (
	"github.com/zaikaman/kaspaclash/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the SQLite database and keeps the schema updated via
// AutoMigrate. WAL mode and a busy timeout keep concurrent request handlers
// from tripping over the writer lock.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if execErr := db.Exec("PRAGMA journal_mode=WAL;").Error; execErr != nil {
		return nil, execErr
	}
	if execErr := db.Exec("PRAGMA busy_timeout=5000;").Error; execErr != nil {
		return nil, execErr
	}

	err = db.AutoMigrate(
		&game.Match{},
		&game.Round{},
		&game.PlayerProfile{},
		&game.Settlement{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
