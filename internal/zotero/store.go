// Package zotero mutates the desktop application's SQLite store directly,
// bypassing its API while preserving its referential-integrity invariants.
// Every schema assumption lives behind this package's narrow CRUD surface so
// schema drift in the owning application stays contained here.
package zotero

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// Store is the adapter over the foreign zotero.sqlite file. It never holds a
// connection open between operations: point reads and writes open the live
// file briefly, and bulk scans run against an ephemeral snapshot copy to
// stay out of the owning application's way.
type Store struct {
	cfg types.Config
	log zerolog.Logger
}

// Open validates the configuration and checks the store file exists.
// It does not open a connection; that happens per operation.
func Open(cfg types.Config, log zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrStoreUnavailable, cfg.DatabasePath)
	}
	return &Store{cfg: cfg, log: log.With().Str("component", "store").Logger()}, nil
}

// DatabasePath returns the live store file path.
func (s *Store) DatabasePath() string { return s.cfg.DatabasePath }

// StorageDir returns the attachment payload directory, or "".
func (s *Store) StorageDir() string { return s.cfg.StorageDir }

// openLive opens the live store file for a point read or write. The caller
// must close the handle promptly; the owning application may be holding
// this file lock-protected.
func (s *Store) openLive() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	return db, nil
}

// withSnapshot copies the store file to a private temp file, runs fn
// against the copy, and removes the copy unconditionally, error paths
// included. Bulk scans go through here to avoid lock contention.
func (s *Store) withSnapshot(fn func(db *sql.DB) error) error {
	tmp, err := os.CreateTemp("", "shelfmark-snapshot-*.sqlite")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	src, err := os.Open(s.cfg.DatabasePath)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	_, err = io.Copy(tmp, src)
	src.Close()
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("copy snapshot: %w", err)
	}

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	return fn(db)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// mapErr translates driver failures into the package's error taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY"):
		return fmt.Errorf("%w: %v", types.ErrStoreLocked, err)
	case strings.Contains(msg, "UNIQUE constraint"):
		return fmt.Errorf("%w: %v", types.ErrConstraintViolation, err)
	default:
		return err
	}
}

// itemIDByKey resolves an item key to its store-local row ID.
func (s *Store) itemIDByKey(q querier, key string) (int64, error) {
	var id int64
	err := q.QueryRow(
		"SELECT itemID FROM items WHERE key = ? AND libraryID = ?",
		key, s.cfg.LibraryID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", types.ErrItemNotFound, key)
	}
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}
