package repository

import (
	"context"
	"errors"

	"github.com/stemsi/school-directory/internal/model"
)

// ErrNotFound is returned when a statement matched no school row.
var ErrNotFound = errors.New("school not found")

// SchoolRepository is the relational store behind the API. Implementations
// exist for PostgreSQL (pgx) and for MySQL/SQLite (database/sql).
type SchoolRepository interface {
	// Create inserts s and sets s.ID to the store-assigned id.
	Create(ctx context.Context, s *model.School) error
	// List returns every row in the store's natural order.
	List(ctx context.Context) ([]model.School, error)
	// Delete removes the row with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
	// Ping runs a trivial query and reports whether it answered correctly.
	Ping(ctx context.Context) (bool, error)
	Close() error
}

const (
	selectSchoolsSQL = `SELECT id, name, address, city, state, contact, image, email_id FROM schools`
	healthQuerySQL   = `SELECT 1 + 1 AS two`
)
