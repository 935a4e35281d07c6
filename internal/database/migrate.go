package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/langdict/schemas"
)

// Migrate applies every pending migration embedded in the schemas package.
// It returns the schema version after the run.
func Migrate(db *sqlx.DB) (uint, error) {
	driverName := db.DriverName()

	source, err := iofs.New(schemas.Migrations, "migrations/"+driverName)
	if err != nil {
		return 0, fmt.Errorf("iofs.New(%s) > %w", driverName, err)
	}

	var target migratedb.Driver
	switch driverName {
	case "mysql":
		target, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case "sqlite3":
		target, err = migratesqlite3.WithInstance(db.DB, &migratesqlite3.Config{})
	default:
		return 0, fmt.Errorf("unsupported migration driver: %s", driverName)
	}
	if err != nil {
		return 0, fmt.Errorf("%s.WithInstance > %w", driverName, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, target)
	if err != nil {
		return 0, fmt.Errorf("migrate.NewWithInstance > %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("m.Up > %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("m.Version > %w", err)
	}
	return version, nil
}
