// Package store keeps decoded task snapshots in a local SQLite database so
// repeated exports of the same task can be compared over time.
package store

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeoutMS = 5000
	defaultMaxOpenConns  = 1
	maxIdleConns         = 1
	connMaxLifetime      = 5 * time.Minute
)

// Options tunes the database connection. Zero values fall back to defaults.
type Options struct {
	MaxOpenConns  int
	BusyTimeoutMS int
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = defaultMaxOpenConns
	}
	if o.BusyTimeoutMS <= 0 {
		o.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	return o
}

// Store wraps the SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open opens the SQLite database at path and applies pending migrations.
func Open(path string, opts Options) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := configureDB(db, opts.withDefaults()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configureDB(db *sqlx.DB, opts Options) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", opts.BusyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("configure sqlite: %w", err)
		}
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
