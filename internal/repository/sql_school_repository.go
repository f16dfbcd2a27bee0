package repository

import (
	"context"
	"database/sql"

	"github.com/stemsi/school-directory/internal/model"
)

// SQLSchoolRepository handles school data access through database/sql. It
// serves MySQL and SQLite, which share ? placeholders and LastInsertId.
type SQLSchoolRepository struct {
	db *sql.DB
}

// NewSQLSchoolRepository creates a new SQLSchoolRepository.
func NewSQLSchoolRepository(db *sql.DB) *SQLSchoolRepository {
	return &SQLSchoolRepository{db: db}
}

// Create inserts a new school.
func (r *SQLSchoolRepository) Create(ctx context.Context, s *model.School) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO schools (name, address, city, state, contact, image, email_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.Address, s.City, s.State, s.Contact, s.Image, s.EmailID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// List retrieves all schools.
func (r *SQLSchoolRepository) List(ctx context.Context) ([]model.School, error) {
	rows, err := r.db.QueryContext(ctx, selectSchoolsSQL)
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
func (r *SQLSchoolRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping runs SELECT 1 + 1 and checks the answer.
func (r *SQLSchoolRepository) Ping(ctx context.Context) (bool, error) {
	var two int
	if err := r.db.QueryRowContext(ctx, healthQuerySQL).Scan(&two); err != nil {
		return false, err
	}
	return two == 2, nil
}

// Close closes the underlying handle.
func (r *SQLSchoolRepository) Close() error {
	return r.db.Close()
}
