package project

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/clock"
	"github.com/evcraddock/domaindeck/internal/store"
)

// Kind is the entity store kind for projects.
const Kind = "project"

// Repository provides CRUD operations for projects.
type Repository struct {
	projects *store.Collection[Project]
	clock    clock.Clock
}

// NewRepository creates a project repository.
func NewRepository(backend store.Backend, clk clock.Clock) *Repository {
	return &Repository{projects: store.NewCollection[Project](backend, Kind), clock: clk}
}

// Create stores a new project. A name is required.
func (r *Repository) Create(ctx context.Context, in Input) (*Project, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("project name is required")
	}
	now := r.clock.Now()
	p := &Project{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.apply(p)
	p.Name = strings.TrimSpace(p.Name)

	if err := r.projects.Create(ctx, p.ID, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return p, nil
}

// Get returns a project by ID.
func (r *Repository) Get(ctx context.Context, id string) (*Project, error) {
	p, err := r.projects.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	return p, err
}

// List returns projects sorted by name, optionally filtered by status
// ("" or "all" keeps every project).
func (r *Repository) List(ctx context.Context, status string) ([]*Project, error) {
	all, err := r.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if status == "" || status == "all" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Update applies in to the project with the given ID.
func (r *Repository) Update(ctx context.Context, id string, in Input) (*Project, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("project name cannot be empty")
	}
	now := r.clock.Now()
	p, _, err := r.projects.Mutate(ctx, id, func(p *Project) (bool, error) {
		in.apply(p)
		p.UpdatedAt = now
		return true, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	return p, err
}

// Delete removes a project by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.projects.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("project not found")
	}
	return err
}
