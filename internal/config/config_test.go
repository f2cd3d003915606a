package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DD_ADDR", "DD_DEV_MODE", "DD_STORE", "DD_DB_PATH", "DD_ADMIN_EMAIL", "DD_HEARTBEAT_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.DevMode {
		t.Error("DevMode should default to false")
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty", cfg.DBPath)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 30s", cfg.HeartbeatInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DD_ADDR", ":9090")
	t.Setenv("DD_DEV_MODE", "true")
	t.Setenv("DD_STORE", "redis")
	t.Setenv("DD_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("DD_HEARTBEAT_INTERVAL", "5m")

	cfg := FromEnv()
	if cfg.Addr != ":9090" || !cfg.DevMode || cfg.Store != StoreRedis {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.RedisURL != "redis://cache:6379/2" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.HeartbeatInterval != 5*time.Minute {
		t.Errorf("HeartbeatInterval = %v, want 5m", cfg.HeartbeatInterval)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("DD_HEARTBEAT_INTERVAL", "soon")
	if got := FromEnv().HeartbeatInterval; got != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want fallback 30s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite", Config{Store: StoreSQLite}, false},
		{"postgres", Config{Store: StorePostgres}, false},
		{"unknown store", Config{Store: "mongo"}, true},
		{"admin without password", Config{Store: StoreSQLite, AdminEmail: "a@example.com"}, true},
		{"admin with password", Config{Store: StoreSQLite, AdminEmail: "a@example.com", AdminPassword: "pw"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
