package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/store"
	"github.com/evcraddock/domaindeck/internal/validate"
)

// Kind is the entity store kind for users.
const Kind = "user"

// Repository provides CRUD operations for users.
type Repository struct {
	users    *store.Collection[User]
	hashCost int
}

// Option configures a Repository.
type Option func(*Repository)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(r *Repository) { r.hashCost = cost }
}

// NewRepository creates a user repository.
func NewRepository(backend store.Backend, opts ...Option) *Repository {
	r := &Repository{
		users:    store.NewCollection[User](backend, Kind),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a new user with a hashed password.
func (r *Repository) Create(ctx context.Context, in NewUser) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	existing, err := r.FindByEmail(ctx, in.Email)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("user already exists: %s", in.Email)
	}

	hash, err := r.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         Role(in.Role),
		PasswordHash: hash,
	}
	if err := r.users.Create(ctx, u.ID, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Get returns a user by ID.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	u, err := r.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// List returns all users in creation order.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	return r.users.List(ctx)
}

// Index returns all users keyed by ID.
func (r *Repository) Index(ctx context.Context) (map[string]*User, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*User, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx, nil
}

// FindByEmail returns the user with the given email, compared case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

// Update applies p to the user with the given ID.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (*User, error) {
	if p.Email != nil {
		e := normalizeEmail(*p.Email)
		p.Email = &e
	}
	if err := validate.Struct(&p); err != nil {
		return nil, err
	}
	if p.Email != nil {
		other, err := r.FindByEmail(ctx, *p.Email)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, apperr.Validation("user already exists: %s", *p.Email)
		}
	}

	var hash string
	if p.Password != nil {
		if *p.Password == "" {
			return nil, apperr.Validation("password cannot be empty")
		}
		h, err := r.hash(*p.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	u, _, err := r.users.Mutate(ctx, id, func(u *User) (bool, error) {
		if p.Name != nil {
			u.Name = strings.TrimSpace(*p.Name)
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Role != nil {
			u.Role = Role(*p.Role)
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		return true, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.users.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}

// Touch records at as the user's last-seen time.
func (r *Repository) Touch(ctx context.Context, id string, at time.Time) (*User, error) {
	at = at.UTC()
	u, _, err := r.users.Mutate(ctx, id, func(u *User) (bool, error) {
		u.LastSeen = &at
		return true, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	return u, err
}

// Authenticate returns the user whose email and password match.
func (r *Repository) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	u, err := r.FindByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Auth("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Auth("invalid credentials")
	}
	return u, nil
}

// EnsureAdmin creates a superadmin when no users exist yet. It reports
// whether a user was created.
func (r *Repository) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	if _, err := r.Create(ctx, NewUser{
		Name:     name,
		Email:    email,
		Role:     string(RoleSuperadmin),
		Password: password,
	}); err != nil {
		return false, fmt.Errorf("seeding admin: %w", err)
	}
	return true, nil
}

func (r *Repository) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), r.hashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
