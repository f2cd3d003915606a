// Package cursor implements the (createdAt, id) position a poll stream has
// consumed up to.
package cursor

import (
	"strings"
	"time"

	"github.com/evcraddock/domaindeck/internal/apperr"
)

// Cursor marks the last consumed item of a stream. An empty ID means only
// the timestamp is known, and any item created strictly after At is new.
type Cursor struct {
	At time.Time
	ID string
}

// At returns a timestamp-only cursor.
func At(t time.Time) Cursor {
	return Cursor{At: t.UTC()}
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("invalid \"since\" timestamp format")
}

// Parse builds a cursor from the since and sinceId query values.
func Parse(since, sinceID string) (Cursor, error) {
	if strings.TrimSpace(since) == "" {
		return Cursor{}, apperr.Validation("a \"since\" timestamp is required")
	}
	t, err := ParseTime(since)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{At: t, ID: strings.TrimSpace(sinceID)}, nil
}

// IsZero reports whether c has never been set.
func (c Cursor) IsZero() bool {
	return c.At.IsZero()
}

// Admits reports whether an item created at at with the given id lies past c.
func (c Cursor) Admits(at time.Time, id string) bool {
	if at.After(c.At) {
		return true
	}
	return c.ID != "" && at.Equal(c.At) && id > c.ID
}

// Advance returns the later of c and (at, id).
func (c Cursor) Advance(at time.Time, id string) Cursor {
	if c.IsZero() || c.Admits(at, id) {
		return Cursor{At: at.UTC(), ID: id}
	}
	return c
}

// Since formats the timestamp half for the since query parameter.
func (c Cursor) Since() string {
	return c.At.UTC().Format(time.RFC3339Nano)
}

func (c Cursor) String() string {
	if c.ID == "" {
		return c.Since()
	}
	return c.Since() + "/" + c.ID
}

// Less orders items by createdAt, breaking ties by id.
func Less(at1 time.Time, id1 string, at2 time.Time, id2 string) bool {
	if !at1.Equal(at2) {
		return at1.Before(at2)
	}
	return id1 < id2
}
