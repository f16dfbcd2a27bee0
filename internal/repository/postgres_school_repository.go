package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/school-directory/internal/model"
)

// PostgresSchoolRepository handles school data access on PostgreSQL.
type PostgresSchoolRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSchoolRepository creates a new PostgresSchoolRepository.
func NewPostgresSchoolRepository(pool *pgxpool.Pool) *PostgresSchoolRepository {
	return &PostgresSchoolRepository{pool: pool}
}

// Create inserts a new school.
func (r *PostgresSchoolRepository) Create(ctx context.Context, s *model.School) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO schools (name, address, city, state, contact, image, email_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		s.Name, s.Address, s.City, s.State, s.Contact, s.Image, s.EmailID,
	).Scan(&s.ID)
}

// List retrieves all schools.
func (r *PostgresSchoolRepository) List(ctx context.Context) ([]model.School, error) {
	rows, err := r.pool.Query(ctx, selectSchoolsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schools := []model.School{}
	for rows.Next() {
		var s model.School
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.Contact, &s.Image, &s.EmailID); err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

// Delete removes a school by its ID.
func (r *PostgresSchoolRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping runs SELECT 1 + 1 and checks the answer.
func (r *PostgresSchoolRepository) Ping(ctx context.Context) (bool, error) {
	var two int
	if err := r.pool.QueryRow(ctx, healthQuerySQL).Scan(&two); err != nil {
		return false, err
	}
	return two == 2, nil
}

// Close releases the pool.
func (r *PostgresSchoolRepository) Close() error {
	r.pool.Close()
	return nil
}
