package store

import (
	"context"
	"fmt"

	"github.com/dd0wney/nodelyzer/pkg/config"
)

// Open builds the backend selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverFile:
		return NewFileStore(cfg.DataDir)
	case config.DriverSQLite:
		if cfg.DSN != "" {
			return OpenSQLite(ctx, cfg.DSN)
		}
		return NewSQLiteStore(ctx, cfg.DataDir)
	case config.DriverPostgres:
		return NewPGStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
