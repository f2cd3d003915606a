// Package store provides the generic entity store: typed records keyed by id,
// grouped by kind, with a per-kind index of all records.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record exists for a kind and id.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when inserting a record whose id is taken.
	ErrExists = errors.New("record already exists")
)

// UpdateFunc receives the current encoded record and returns its replacement.
// Returning nil data leaves the record untouched and skips the write.
type UpdateFunc func(data []byte) ([]byte, error)

// A Backend persists encoded records. Every method is atomic for a single
// record; no operation spans records.
type Backend interface {
	Insert(ctx context.Context, kind, id string, data []byte) error
	Get(ctx context.Context, kind, id string) ([]byte, error)
	// List returns every record of kind in insertion order.
	List(ctx context.Context, kind string) ([][]byte, error)
	// Update performs a read-modify-write that no concurrent Update on the
	// same record can interleave with.
	Update(ctx context.Context, kind, id string, fn UpdateFunc) error
	Delete(ctx context.Context, kind, id string) error
	Close() error
}
