package storetest

import (
	"path/filepath"
	"testing"

	"github.com/evcraddock/domaindeck/internal/db"
	"github.com/evcraddock/domaindeck/internal/store"
)

// NewSQLite opens a SQLite backend in a temp directory, closed on cleanup.
func NewSQLite(t *testing.T) store.Backend {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	b := store.NewSQLite(d)
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return b
}
