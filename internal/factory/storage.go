// Package factory wires configuration to concrete adapters.
package factory

import (
	"fmt"

	"github.com/matchpoint-app/matchpoint/internal/config"
	"github.com/matchpoint-app/matchpoint/internal/storage"
	"github.com/matchpoint-app/matchpoint/internal/storage/postgres"
	"github.com/matchpoint-app/matchpoint/internal/storage/sqlite"
)

// NewStorage selects the storage adapter based on cfg.DBDriver.
func NewStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return postgres.New(db)
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlite.New(db)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
