package userdict

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS words (
	word      TEXT PRIMARY KEY,
	frequency INTEGER NOT NULL
)`

// SQLiteStore keeps entries in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. The special path
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &StoreError{Op: "open", Err: err}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	// SQLite works best with a single writer; a single connection also
	// keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, &StoreError{Op: "init schema", Err: err}
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns all entries sorted by word.
func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, frequency FROM words ORDER BY word`)
	if err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Word, &e.Frequency); err != nil {
			return nil, &StoreError{Op: "load", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "load", Err: err}
	}
	return entries, nil
}

// Save applies upserts and deletes in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, upserts []Entry, deletes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	for _, e := range upserts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO words (word, frequency) VALUES (?, ?)
			ON CONFLICT(word) DO UPDATE SET frequency = excluded.frequency`,
			e.Word, e.Frequency)
		if err != nil {
			return &StoreError{Op: "save", Err: fmt.Errorf("upsert %q: %w", e.Word, err)}
		}
	}
	for _, w := range deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM words WHERE word = ?`, w); err != nil {
			return &StoreError{Op: "save", Err: fmt.Errorf("delete %q: %w", w, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return &StoreError{Op: "close", Err: err}
	}
	return nil
}
