package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection is a typed view of one record kind, encoded as JSON.
type Collection[T any] struct {
	backend Backend
	kind    string
}

// NewCollection creates a collection over kind.
func NewCollection[T any](backend Backend, kind string) *Collection[T] {
	return &Collection[T]{backend: backend, kind: kind}
}

// Kind returns the record kind this collection stores.
func (c *Collection[T]) Kind() string {
	return c.kind
}

// Create stores v under id. It fails with ErrExists if id is taken.
func (c *Collection[T]) Create(ctx context.Context, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.kind, err)
	}
	if err := c.backend.Insert(ctx, c.kind, id, data); err != nil {
		return fmt.Errorf("inserting %s %s: %w", c.kind, id, err)
	}
	return nil
}

// Get loads the record stored under id.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.backend.Get(ctx, c.kind, id)
	if err != nil {
		return nil, fmt.Errorf("loading %s %s: %w", c.kind, id, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", c.kind, id, err)
	}
	return &v, nil
}

// Exists reports whether a record is stored under id.
func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.backend.Get(ctx, c.kind, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", c.kind, id, err)
	}
	return true, nil
}

// List returns every record of the collection in insertion order.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	raw, err := c.backend.List(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.kind, err)
	}
	out := make([]*T, 0, len(raw))
	for _, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.kind, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// Mutate applies fn to the record under id as one atomic read-modify-write.
// fn reports whether it changed the record; unchanged records are not
// written back. Mutate returns the record as it stands afterwards.
func (c *Collection[T]) Mutate(ctx context.Context, id string, fn func(v *T) (bool, error)) (*T, bool, error) {
	var (
		result  T
		changed bool
	)
	err := c.backend.Update(ctx, c.kind, id, func(data []byte) ([]byte, error) {
		// The backend may retry fn on contention, so start from a clean value.
		result = *new(T)
		changed = false
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", c.kind, id, err)
		}
		ok, err := fn(&result)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		changed = true
		out, err := json.Marshal(&result)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s: %w", c.kind, id, err)
		}
		return out, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("updating %s %s: %w", c.kind, id, err)
	}
	return &result, changed, nil
}

// Delete removes the record under id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, c.kind, id); err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.kind, id, err)
	}
	return nil
}
