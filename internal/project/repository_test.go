package project

import (
	"context"
	"testing"
	"time"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/clock"
	"github.com/evcraddock/domaindeck/internal/store/storetest"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(storetest.NewSQLite(t), clock.NewMonotonic())
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndGet(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	p, err := r.Create(ctx, Input{Name: ptr(" acme.com "), Status: ptr("active")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "acme.com" || p.Status != "active" {
		t.Errorf("got %+v", p)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Errorf("timestamps not set: %+v", p)
	}

	got, err := r.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "acme.com" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestCreateRequiresName(t *testing.T) {
	r := testRepo(t)
	if _, err := r.Create(context.Background(), Input{Name: ptr("  ")}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
	if _, err := r.Create(context.Background(), Input{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	for _, in := range []Input{
		{Name: ptr("zeta.io"), Status: ptr("active")},
		{Name: ptr("Alpha.dev"), Status: ptr("archived")},
		{Name: ptr("beta.net"), Status: ptr("active")},
	} {
		if _, err := r.Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := r.List(ctx, "all")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, p := range all {
		names = append(names, p.Name)
	}
	want := []string{"Alpha.dev", "beta.net", "zeta.io"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names = %v, want %v", names, want)
			break
		}
	}

	active, err := r.List(ctx, "active")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("got %d active projects, want 2", len(active))
	}
}

func TestUpdate(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	p, err := r.Create(ctx, Input{Name: ptr("acme.com")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := r.Update(ctx, p.ID, Input{DomainExpires: &exp, DomainCost: ptr(12.5), HostingCost: ptr(7.5)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "acme.com" {
		t.Error("name should be unchanged")
	}
	if got.DomainExpires == nil || !got.DomainExpires.Equal(exp) {
		t.Errorf("expiry = %v", got.DomainExpires)
	}
	if !got.UpdatedAt.After(p.UpdatedAt) {
		t.Error("updatedAt should advance")
	}
	if got.TotalCost() != 20 {
		t.Errorf("total cost = %v, want 20", got.TotalCost())
	}

	if _, err := r.Update(ctx, "nope", Input{Name: ptr("x")}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestDelete(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	p, err := r.Create(ctx, Input{Name: ptr("acme.com")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.Get(ctx, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Project{}
	if p.DaysUntilExpiry(now) != nil {
		t.Error("no expiry should give nil")
	}
	exp := now.Add(10 * 24 * time.Hour)
	p.DomainExpires = &exp
	if d := p.DaysUntilExpiry(now); d == nil || *d != 10 {
		t.Errorf("days = %v, want 10", d)
	}
}
