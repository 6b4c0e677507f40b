package db

import (
	"errors"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// NewMigrator returns a migrator over the embedded schema. The caller closes it.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := NewMigratorSource()
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, MigrateURL(databaseURL))
}

func NewMigratorSource() (source.Driver, error) {
	return iofs.New(migrations.FS, ".")
}

// MigrateUp applies pending migrations. Being up to date is not an error.
func MigrateUp(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrateURL rewrites a postgres:// URL to the pgx5:// scheme the migrate
// driver registers.
func MigrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
