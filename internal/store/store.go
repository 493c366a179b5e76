package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no entry exists for a name
var ErrNotFound = errors.New("entry not found")

// Store persists raw audio file bytes keyed by file name using SQLite
type Store struct {
	db *sql.DB
}

// Entry is the persisted form of one imported file
type Entry struct {
	Name    string
	Data    []byte
	AddedAt time.Time
}

// Open opens (or creates) the library database at dbPath
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases consistent across calls
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS tracks (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			data BLOB NOT NULL,
			added_at INTEGER NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const upsertQuery = `
	INSERT INTO tracks (name, data, added_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET data = excluded.data
`

// Put stores data under name. An existing entry with the same name is
// overwritten in place and keeps its position in the store order.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	if _, err := s.db.ExecContext(ctx, upsertQuery, name, data, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store %q: %w", name, err)
	}

	return nil
}

// PutAll stores a batch of entries in one transaction, in slice order.
// Either every entry is written or none is.
func (s *Store) PutAll(ctx context.Context, entries []Entry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, e := range entries {
		data := e.Data
		if data == nil {
			data = []byte{}
		}
		if _, err := stmt.ExecContext(ctx, e.Name, data, now); err != nil {
			return fmt.Errorf("failed to store %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Get returns the entry stored under name
func (s *Store) Get(ctx context.Context, name string) (*Entry, error) {
	query := `SELECT name, data, added_at FROM tracks WHERE name = ?`

	var e Entry
	var addedUnix int64
	err := s.db.QueryRowContext(ctx, query, name).Scan(&e.Name, &e.Data, &addedUnix)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	e.AddedAt = time.Unix(addedUnix, 0)

	return &e, nil
}

// GetAll returns every entry in the order names were first stored
func (s *Store) GetAll(ctx context.Context) ([]Entry, error) {
	query := `SELECT name, data, added_at FROM tracks ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var addedUnix int64
		if err := rows.Scan(&e.Name, &e.Data, &addedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.AddedAt = time.Unix(addedUnix, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// Keys returns the stored names in store order
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tracks ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}

	return keys, nil
}

// Delete removes the entry stored under name
func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	return nil
}

// Clear removes every entry
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tracks`); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Count returns the number of stored entries
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}
