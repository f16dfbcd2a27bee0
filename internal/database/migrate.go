package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/migrations"
)

// NewMigrator builds a migrate instance reading the embedded migrations of
// the given dialect. The caller owns Close.
func NewMigrator(driver, databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return nil, fmt.Errorf("open %s migrations: %w", driver, err)
	}

	url, err := migrationURL(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. An up-to-date schema is not an error.
func MigrateUp(driver, databaseURL string) error {
	m, err := NewMigrator(driver, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrationURL converts the connection string the application uses into the
// URL form golang-migrate dispatches on.
func migrationURL(driver, databaseURL string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return databaseURL, nil
	case config.DriverMySQL:
		if strings.HasPrefix(databaseURL, "mysql://") {
			return databaseURL, nil
		}
		return "mysql://" + databaseURL, nil
	case config.DriverSQLite:
		if strings.HasPrefix(databaseURL, "sqlite://") {
			return databaseURL, nil
		}
		return "sqlite://" + databaseURL, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}
