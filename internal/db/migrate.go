package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"adfleet/db/migrations"
)

// Migrate brings the schema at addr to migrations.Version and returns the
// version it started from. A dirty schema is refused.
func Migrate(addr string) (uint, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, err
	}
	defer source.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", source, addr)
	if err != nil {
		return 0, err
	}
	defer mg.Close()

	from, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return 0, err
	case dirty:
		return from, fmt.Errorf("schema is dirty at version %d", from)
	case from > migrations.Version:
		return from, fmt.Errorf("schema version %d is newer than %d", from, migrations.Version)
	}

	if err = mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, err
	}
	return from, nil
}
