package user

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/domaindeck/internal/apperr"
	"github.com/evcraddock/domaindeck/internal/store/storetest"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(storetest.NewSQLite(t), WithHashCost(bcrypt.MinCost))
}

func mustCreate(t *testing.T, r *Repository, name, email string, role Role) *User {
	t.Helper()
	u, err := r.Create(context.Background(), NewUser{
		Name: name, Email: email, Role: string(role), Password: "secret",
	})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestCreateAndGet(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	u := mustCreate(t, r, " Bob ", "Bob@Example.com", RoleCollaborator)
	if u.ID == "" {
		t.Fatal("expected an id")
	}
	if u.Name != "Bob" || u.Email != "bob@example.com" {
		t.Errorf("got name %q email %q", u.Name, u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret" {
		t.Errorf("password should be hashed, got %q", u.PasswordHash)
	}
	if u.LastSeen != nil {
		t.Error("new user should have no lastSeen")
	}

	got, err := r.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != u.Email || got.Role != RoleCollaborator {
		t.Errorf("got %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   NewUser
	}{
		{"missing name", NewUser{Email: "a@example.com", Role: "collaborator", Password: "pw"}},
		{"bad email", NewUser{Name: "A", Email: "nope", Role: "collaborator", Password: "pw"}},
		{"bad role", NewUser{Name: "A", Email: "a@example.com", Role: "owner", Password: "pw"}},
		{"missing password", NewUser{Name: "A", Email: "a@example.com", Role: "collaborator"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(ctx, tt.in)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	r := testRepo(t)
	mustCreate(t, r, "Bob", "bob@example.com", RoleCollaborator)

	_, err := r.Create(context.Background(), NewUser{
		Name: "Bobby", Email: "BOB@example.com", Role: "collaborator", Password: "pw",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestGetMissing(t *testing.T) {
	r := testRepo(t)
	_, err := r.Get(context.Background(), "nope")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestListAndIndex(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	a := mustCreate(t, r, "A", "a@example.com", RoleSuperadmin)
	b := mustCreate(t, r, "B", "b@example.com", RoleCollaborator)

	users, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].ID != a.ID || users[1].ID != b.ID {
		t.Errorf("list order wrong: %+v", users)
	}

	idx, err := r.Index(ctx)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if idx[b.ID] == nil || idx[b.ID].Name != "B" {
		t.Errorf("index missing b: %+v", idx)
	}
}

func TestUpdate(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	u := mustCreate(t, r, "Bob", "bob@example.com", RoleCollaborator)

	name := "Robert"
	role := "superadmin"
	pw := "new-secret"
	got, err := r.Update(ctx, u.ID, Patch{Name: &name, Role: &role, Password: &pw})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Robert" || got.Role != RoleSuperadmin {
		t.Errorf("got %+v", got)
	}
	if got.Email != "bob@example.com" {
		t.Error("email should be unchanged")
	}

	if _, err := r.Authenticate(ctx, "bob@example.com", "new-secret"); err != nil {
		t.Errorf("new password should authenticate: %v", err)
	}
	if _, err := r.Authenticate(ctx, "bob@example.com", "secret"); !apperr.Is(err, apperr.KindAuth) {
		t.Errorf("old password err = %v, want auth error", err)
	}
}

func TestUpdateEmailTaken(t *testing.T) {
	r := testRepo(t)
	mustCreate(t, r, "A", "a@example.com", RoleCollaborator)
	b := mustCreate(t, r, "B", "b@example.com", RoleCollaborator)

	email := "a@example.com"
	_, err := r.Update(context.Background(), b.ID, Patch{Email: &email})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUpdateMissing(t *testing.T) {
	r := testRepo(t)
	name := "x"
	_, err := r.Update(context.Background(), "nope", Patch{Name: &name})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestDelete(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	u := mustCreate(t, r, "Bob", "bob@example.com", RoleCollaborator)

	if err := r.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, u.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestTouch(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	u := mustCreate(t, r, "Bob", "bob@example.com", RoleCollaborator)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := r.Touch(ctx, u.ID, at)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if got.LastSeen == nil || !got.LastSeen.Equal(at) {
		t.Errorf("lastSeen = %v, want %v", got.LastSeen, at)
	}

	if _, err := r.Touch(ctx, "nope", at); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("touch missing err = %v, want not found", err)
	}
}

func TestAuthenticate(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	u := mustCreate(t, r, "Bob", "bob@example.com", RoleCollaborator)

	got, err := r.Authenticate(ctx, "BOB@example.com", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("got user %s, want %s", got.ID, u.ID)
	}

	if _, err := r.Authenticate(ctx, "nobody@example.com", "secret"); !apperr.Is(err, apperr.KindAuth) {
		t.Errorf("unknown email err = %v, want auth error", err)
	}
	if _, err := r.Authenticate(ctx, "", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty credentials err = %v, want validation error", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	created, err := r.EnsureAdmin(ctx, "Admin", "admin@example.com", "pw")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if !created {
		t.Fatal("expected admin to be created")
	}
	admin, err := r.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if admin.Role != RoleSuperadmin {
		t.Errorf("role = %q, want superadmin", admin.Role)
	}

	created, err = r.EnsureAdmin(ctx, "Admin", "other@example.com", "pw")
	if err != nil {
		t.Fatalf("second ensure admin: %v", err)
	}
	if created {
		t.Error("admin should not be seeded twice")
	}
}

func TestProfileOmitsPassword(t *testing.T) {
	u := &User{ID: "u1", Name: "Bob", Email: "bob@example.com", Role: RoleCollaborator, PasswordHash: "hash"}
	data, err := json.Marshal(u.Profile())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "hash") || strings.Contains(string(data), "password") {
		t.Errorf("profile leaked password: %s", data)
	}
	if !strings.Contains(string(data), `"lastSeen":null`) {
		t.Errorf("profile should carry lastSeen: %s", data)
	}
}
