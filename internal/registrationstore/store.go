// Package registrationstore is the default Registry source: a SQLite-backed
// collaborator that persists DomainRegistrations and loads them into a
// domain.Registry snapshot at startup, the same role the teacher's
// internal/database package plays for HydraDNS's YAML-replacement config.
package registrationstore

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite connection holding the domain_registrations/routes
// tables.
type Store struct {
	conn *sql.DB
}

// Open opens or creates a SQLite database at path and brings its schema
// up to date.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening registration store: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating registration store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migration source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Health checks database connectivity, mirroring the teacher's
// DB.Health used by its own status endpoint.
func (s *Store) Health() error {
	return s.conn.Ping()
}
