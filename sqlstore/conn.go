// Package sqlstore persists console sessions in SQLite so they survive
// restarts and can be shared by instances using the same database file.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const DriverName = "sqlite"

type Configuration struct {
	Driver     string
	Connection string
}

// Connect opens the database and checks it answers. SQLite files get their
// directory created and a single connection, so writers never contend.
func Connect(ctx context.Context, config Configuration, logger zerolog.Logger) (*sqlx.DB, error) {
	if config.Driver == "" {
		config.Driver = DriverName
	}
	if config.Driver == DriverName && config.Connection != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Connection), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create database directory: %w", err)
		}
	}
	db, err := sqlx.Open(config.Driver, config.Connection)
	if err != nil {
		return nil, fmt.Errorf("error creating connection to database: %w", err)
	}
	if config.Driver == DriverName {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking connection to database: %w", err)
	}
	logger.Info().Str("driver", config.Driver).Str("connection", config.Connection).Msg("connected to database")
	return db, nil
}
