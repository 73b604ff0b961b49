package db

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/dialects/postgresql"

	"github.com/dzeckelev/quickpay/config"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// ConnectArgs returns connection string for database connection.
func ConnectArgs(cfg config.DB) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s"+
		" port=%d sslmode=%s", cfg.Host, cfg.User, cfg.Password,
		cfg.DBName, cfg.Port, sslMode)
}

// Connect opens the connection pool and checks it is reachable.
func Connect(cfg config.DB) (*sql.DB, error) {
	conn, err := sql.Open("postgres", ConnectArgs(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	return conn, nil
}

// NewDB wraps a connection pool.
func NewDB(conn *sql.DB) *reform.DB {
	return reform.NewDB(conn, postgresql.Dialect, nil)
}

// CloseDB closes database.
func CloseDB(db *reform.DB) {
	_ = db.DBInterface().(*sql.DB).Close()
}

// isUniqueViolation reports whether err came from a unique constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
