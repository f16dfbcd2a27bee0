package repository

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/database"
)

// Open connects to the store selected by cfg.DatabaseDriver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (SchoolRepository, error) {
	if cfg.DatabaseDriver == config.DriverPostgres {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewPostgresSchoolRepository(pool), nil
	}

	db, err := database.NewSQLDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return NewSQLSchoolRepository(db), nil
}
