package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	_ "modernc.org/sqlite"
)

// NewSQLDB opens a database/sql handle for the MySQL or SQLite dialect and
// verifies it answers a ping.
func NewSQLDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMySQL, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("database/sql does not serve driver %q", cfg.DatabaseDriver)
	}

	db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DatabaseDriver, err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(int(cfg.MaxDBConns))
		db.SetMaxIdleConns(int(cfg.MaxDBConns) / 2)
		db.SetConnMaxLifetime(3 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DatabaseDriver, err)
	}

	log.Info().
		Str("driver", cfg.DatabaseDriver).
		Int32("max_conns", cfg.MaxDBConns).
		Msg("SQL database connected")

	return db, nil
}
