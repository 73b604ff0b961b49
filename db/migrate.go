package db

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrator is the part of *migrate.Migrate used here.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Close() (source error, database error)
}

var newMigrator = func(conn *sql.DB) (migrator, error) {
	m, err := newMigrate(conn)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newMigrate(conn *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "load migrations")
	}

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, "init migrations")
	}
	return m, nil
}

// closeMigrate releases the connection held by the migration driver. The
// pool itself stays open.
func closeMigrate(m migrator) {
	_, _ = m.Close()
}

// Migrate applies all up migrations to conn.
func Migrate(conn *sql.DB) error {
	m, err := newMigrator(conn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}

	return nil
}

// Rollback reverts the last steps migrations.
func Rollback(conn *sql.DB, steps int) error {
	m, err := newMigrator(conn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Steps(-steps); err != nil {
		return errors.Wrap(err, "revert migrations")
	}

	return nil
}

// Version returns the applied schema version. A clean database reports
// version 0.
func Version(conn *sql.DB) (uint, bool, error) {
	m, err := newMigrator(conn)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrate(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "schema version")
	}
	return version, dirty, nil
}
