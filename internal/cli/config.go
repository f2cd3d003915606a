package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8080"

// CLIConfig is what dd remembers between runs in ~/.config/dd/config.yaml.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	UserID    string `yaml:"user_id,omitempty"`
	UserName  string `yaml:"user_name,omitempty"`
}

func configPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(dir, ".config", "dd", "config.yaml"), nil
}

// loadConfig reads the stored config. A missing file is an empty config.
func loadConfig() (CLIConfig, error) {
	var cfg CLIConfig
	path, err := configPath()
	if err != nil {
		return cfg, err
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// saveConfig replaces the stored config. The file may hold a user ID, so it
// is readable only by its owner.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// setting resolves one value: the environment wins over the stored config.
func setting(env string, stored func(CLIConfig) string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if cfg, err := loadConfig(); err == nil {
		return stored(cfg)
	}
	return ""
}

// getServerURL returns the API base URL from DD_SERVER_URL, the config, or
// the local default.
func getServerURL() string {
	if v := setting("DD_SERVER_URL", func(c CLIConfig) string { return c.ServerURL }); v != "" {
		return v
	}
	return defaultServerURL
}

// getUserID returns the identity sent as X-User-Id, from DD_USER_ID or the
// config.
func getUserID() string {
	return setting("DD_USER_ID", func(c CLIConfig) string { return c.UserID })
}
