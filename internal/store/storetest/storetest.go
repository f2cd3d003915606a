// Package storetest holds a conformance suite every store.Backend must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/evcraddock/domaindeck/internal/store"
)

type record struct {
	ID    string   `json:"id"`
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

// Run exercises b against the store.Backend contract.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()

	t.Run("CreateAndGet", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		ctx := context.Background()

		if err := c.Create(ctx, "w1", &record{ID: "w1", Count: 3}); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := c.Get(ctx, "w1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != "w1" || got.Count != 3 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		ctx := context.Background()

		if err := c.Create(ctx, "w1", &record{ID: "w1"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		err := c.Create(ctx, "w1", &record{ID: "w1"})
		if !errors.Is(err, store.ErrExists) {
			t.Errorf("err = %v, want ErrExists", err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		_, err := c.Get(context.Background(), "nope")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		ok, err := c.Exists(context.Background(), "nope")
		if err != nil || ok {
			t.Errorf("exists = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("ListInsertionOrderPerKind", func(t *testing.T) {
		b := newBackend(t)
		widgets := store.NewCollection[record](b, "widget")
		gadgets := store.NewCollection[record](b, "gadget")
		ctx := context.Background()

		for _, id := range []string{"b", "a", "c"} {
			if err := widgets.Create(ctx, id, &record{ID: id}); err != nil {
				t.Fatalf("create %s: %v", id, err)
			}
		}
		if err := gadgets.Create(ctx, "g", &record{ID: "g"}); err != nil {
			t.Fatalf("create gadget: %v", err)
		}

		list, err := widgets.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var ids []string
		for _, r := range list {
			ids = append(ids, r.ID)
		}
		if fmt.Sprint(ids) != "[b a c]" {
			t.Errorf("ids = %v, want [b a c]", ids)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		list, err := c.List(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("got %d records, want 0", len(list))
		}
	})

	t.Run("MutateUnchangedSkipsWrite", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		ctx := context.Background()
		if err := c.Create(ctx, "w1", &record{ID: "w1", Count: 1}); err != nil {
			t.Fatalf("create: %v", err)
		}

		_, changed, err := c.Mutate(ctx, "w1", func(r *record) (bool, error) {
			r.Count = 99
			return false, nil
		})
		if err != nil {
			t.Fatalf("mutate: %v", err)
		}
		if changed {
			t.Error("expected changed = false")
		}

		stored, err := c.Get(ctx, "w1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if stored.Count != 1 {
			t.Errorf("stored count = %d, want 1", stored.Count)
		}
	})

	t.Run("MutateMissing", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		_, _, err := c.Mutate(context.Background(), "nope", func(r *record) (bool, error) {
			return true, nil
		})
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("MutateConcurrentIdempotentAppend", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		ctx := context.Background()
		if err := c.Create(ctx, "w1", &record{ID: "w1"}); err != nil {
			t.Fatalf("create: %v", err)
		}

		tags := []string{"u1", "u2", "u3", "u1", "u2", "u3", "u1", "u2"}
		var wg sync.WaitGroup
		for _, tag := range tags {
			wg.Add(1)
			go func(tag string) {
				defer wg.Done()
				_, _, err := c.Mutate(ctx, "w1", func(r *record) (bool, error) {
					for _, have := range r.Tags {
						if have == tag {
							return false, nil
						}
					}
					r.Tags = append(r.Tags, tag)
					r.Count++
					return true, nil
				})
				if err != nil {
					t.Errorf("mutate %s: %v", tag, err)
				}
			}(tag)
		}
		wg.Wait()

		got, err := c.Get(ctx, "w1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(got.Tags) != 3 || got.Count != 3 {
			t.Errorf("tags = %v count = %d, want 3 distinct tags", got.Tags, got.Count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := store.NewCollection[record](newBackend(t), "widget")
		ctx := context.Background()
		if err := c.Create(ctx, "w1", &record{ID: "w1"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := c.Delete(ctx, "w1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := c.Delete(ctx, "w1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
		list, err := c.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("got %d records after delete, want 0", len(list))
		}
	})
}
