package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evcraddock/domaindeck/internal/config"
	"github.com/evcraddock/domaindeck/internal/db"
	"github.com/evcraddock/domaindeck/internal/logging"
	"github.com/evcraddock/domaindeck/internal/postgres"
	"github.com/evcraddock/domaindeck/internal/redis"
	"github.com/evcraddock/domaindeck/internal/store"
	"github.com/evcraddock/domaindeck/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		storeKind string
		envFile   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP/JSON API server.

Configuration comes from DD_* environment variables, optionally loaded
from a .env file first. Flags override the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := serveConfig(envFile, addr, storeKind)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default: $DD_ADDR or :8080)")
	cmd.Flags().StringVar(&storeKind, "store", "", "entity store: sqlite, redis or postgres (default: $DD_STORE or sqlite)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	return cmd
}

// serveConfig loads envFile if it exists, reads the environment and applies
// flag overrides.
func serveConfig(envFile, addr, storeKind string) (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := config.FromEnv()
	if addr != "" {
		cfg.Addr = addr
	}
	if storeKind != "" {
		cfg.Store = storeKind
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Setup(cfg.DevMode)

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend(logger, backend)

	srv := web.NewServer(backend, cfg, logger)
	if err := srv.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// openBackend opens the entity store selected by cfg.Store.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.Store {
	case config.StoreRedis:
		return redis.Connect(ctx, cfg.RedisURL)
	case config.StorePostgres:
		return postgres.Connect(ctx, cfg.PostgresDSN)
	default:
		path := cfg.DBPath
		if path == "" {
			var err error
			path, err = db.DefaultPath()
			if err != nil {
				return nil, err
			}
		}
		database, err := db.Open(path)
		if err != nil {
			return nil, err
		}
		return store.NewSQLite(database), nil
	}
}

// closeBackend closes the store, logging any error.
func closeBackend(logger *slog.Logger, backend store.Backend) {
	if err := backend.Close(); err != nil {
		logger.Warn("closing store", "error", err)
	}
}
