package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"codemap/internal/engine/parser"
)

const (
	driverName      = "sqlite"
	storeMaxRetries = 5
)

// DefStore mirrors the in-memory definition table to sqlite so other tooling
// can query the last indexed state without loading the project.
type DefStore struct {
	path    string
	project string
	db      *sql.DB
	mu      sync.Mutex
}

// OpenStore opens (creating if needed) the definition mirror at path.
func OpenStore(path, project string) (*DefStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}
	project = strings.TrimSpace(project)
	if project == "" {
		project = "default"
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := ensureStoreSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &DefStore{path: cleanPath, project: project, db: db}, nil
}

func ensureStoreSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS definitions (
  project    TEXT NOT NULL,
  generation TEXT NOT NULL,
  name       TEXT NOT NULL,
  scope      TEXT NOT NULL,
  file       TEXT NOT NULL,
  line       INTEGER NOT NULL,
  col        INTEGER NOT NULL,
  updated_utc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_definitions_lookup
  ON definitions (project, name);
`
	_, err := db.Exec(schema)
	return err
}

// ReplaceAll swaps the stored definition set for this project with the
// contents of a finished index snapshot. The swap is transactional so
// readers never observe a half-written generation.
func (s *DefStore) ReplaceAll(ix *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.withRetry("replace definitions", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM definitions WHERE project = ?`, s.project); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
INSERT INTO definitions (project, generation, name, scope, file, line, col, updated_utc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for name, locs := range ix.Defs {
			for _, loc := range locs {
				if _, err := stmt.Exec(s.project, ix.Generation, name, loc.Scope, loc.File, loc.Line, loc.Column, now); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	})
}

// Lookup returns the stored locations of every definition with the given
// name, ordered by file then line.
func (s *DefStore) Lookup(name string) ([]parser.DefLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("lookup definitions", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT scope, file, line, col FROM definitions
WHERE project = ? AND name = ?
ORDER BY file ASC, line ASC`, s.project, name)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []parser.DefLocation
	for rows.Next() {
		var loc parser.DefLocation
		if err := rows.Scan(&loc.Scope, &loc.File, &loc.Line, &loc.Column); err != nil {
			return nil, fmt.Errorf("scan definition row: %w", err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definition rows: %w", err)
	}
	return locs, nil
}

func (s *DefStore) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= storeMaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == storeMaxRetries {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *DefStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *DefStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
