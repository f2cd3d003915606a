package cli

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/domaindeck/internal/client"
	"github.com/evcraddock/domaindeck/internal/config"
	"github.com/evcraddock/domaindeck/internal/store/storetest"
	"github.com/evcraddock/domaindeck/internal/user"
	"github.com/evcraddock/domaindeck/internal/web"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pw"
)

type testServer struct {
	url   string
	admin *user.Profile
	bob   *user.Profile
}

// newTestServer runs a real API server over a temp SQLite store with an
// admin and one collaborator, and points the CLI at it with a fresh HOME.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		Store:             config.StoreSQLite,
		AdminEmail:        adminEmail,
		AdminPassword:     adminPassword,
		AdminName:         "Admin",
		HeartbeatInterval: time.Minute,
	}
	srv := web.NewServer(storetest.NewSQLite(t), cfg, slogt.New(t), web.WithHashCost(bcrypt.MinCost))
	ctx := context.Background()
	if err := srv.EnsureAdmin(ctx); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)

	admin, err := client.New(hs.URL, "").Login(ctx, adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}
	bob, err := client.New(hs.URL, admin.ID).CreateUser(ctx, user.NewUser{
		Name: "Bob", Email: "bob@example.com", Role: string(user.RoleCollaborator), Password: "bob-pw",
	})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("DD_SERVER_URL", hs.URL)
	t.Setenv("DD_USER_ID", "")
	return &testServer{url: hs.URL, admin: admin, bob: bob}
}
