package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite stores records in the entities table created by package db.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a backend over an opened database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Insert stores a new record.
func (s *SQLite) Insert(ctx context.Context, kind, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO entities (kind, id, data) VALUES (?, ?, ?)",
		kind, id, string(data),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrExists
		}
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

// Get loads a record.
func (s *SQLite) Get(ctx context.Context, kind, id string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM entities WHERE kind = ? AND id = ?", kind, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entity: %w", err)
	}
	return []byte(data), nil
}

// List returns all records of kind in insertion order.
func (s *SQLite) List(ctx context.Context, kind string) (out [][]byte, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM entities WHERE kind = ? ORDER BY seq", kind,
	)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		out = append(out, []byte(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return out, nil
}

// Update runs fn inside an immediate transaction, so the read and the write
// happen under the database write lock.
func (s *SQLite) Update(ctx context.Context, kind, id string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback()
	}()

	var data string
	err = tx.QueryRowContext(ctx,
		"SELECT data FROM entities WHERE kind = ? AND id = ?", kind, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying entity: %w", err)
	}

	next, err := fn([]byte(data))
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE entities SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE kind = ? AND id = ?",
		string(next), kind, id,
	); err != nil {
		return fmt.Errorf("updating entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Delete removes a record.
func (s *SQLite) Delete(ctx context.Context, kind, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM entities WHERE kind = ? AND id = ?", kind, id)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
