// Package persistence caches extracted header symbols in SQLite so repeated
// startups skip re-scanning unchanged files.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/sslsense/analysis"
)

// SymbolStore persists per-file extraction results keyed by path and mtime.
// A stored row is valid only while the file's mtime matches; any change
// invalidates it on the next Load.
type SymbolStore struct {
	db *sql.DB
}

// OpenSymbolStore opens or creates the database at dbPath.
func OpenSymbolStore(dbPath string) (*SymbolStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SymbolStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SymbolStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS file_symbols (
		path TEXT PRIMARY KEY,
		mtime INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the cached symbols for path when the stored mtime matches.
func (s *SymbolStore) Load(path string, mtime int64) ([]analysis.Symbol, bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	var storedMtime int64
	var payload string
	row := s.db.QueryRow(`SELECT mtime, payload FROM file_symbols WHERE path = ?`, path)
	if err := row.Scan(&storedMtime, &payload); err != nil {
		return nil, false
	}
	if storedMtime != mtime {
		return nil, false
	}
	var symbols []analysis.Symbol
	if err := json.Unmarshal([]byte(payload), &symbols); err != nil {
		return nil, false
	}
	return symbols, true
}

// Save upserts the extraction result for path at mtime.
func (s *SymbolStore) Save(path string, mtime int64, symbols []analysis.Symbol) error {
	if s == nil || s.db == nil {
		return errors.New("symbol store closed")
	}
	payload, err := json.Marshal(symbols)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
	INSERT INTO file_symbols (path, mtime, payload) VALUES (?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET mtime=excluded.mtime, payload=excluded.payload`,
		path, mtime, string(payload))
	return err
}

// Close releases the underlying database handle.
func (s *SymbolStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
