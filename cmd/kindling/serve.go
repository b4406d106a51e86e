// Serve command: runs the HTTP API over the configured backend.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kindling/internal/api"
	"github.com/mesh-intelligence/kindling/internal/engine"
	"github.com/mesh-intelligence/kindling/internal/jsonstore"
	"github.com/mesh-intelligence/kindling/internal/relstore"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

var (
	flagAddr    string
	flagBackend string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kindling API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&flagBackend, "backend", "", "storage backend: file, sqlite, or postgres")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	configDir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	dataDir, err := resolveDataDir(v.GetString(cfgKeyDataDir))
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := buildConfig(v, dataDir)
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := flagAddr
	if addr == "" {
		addr = v.GetString(cfgKeyAddr)
	}

	server := api.New(api.Config{
		Addr:   addr,
		Engine: engine.New(store, logger),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	if err := server.StartContext(ctx); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openStore constructs the storage backend named in the configuration.
func openStore(cfg types.Config, logger *slog.Logger) (types.Store, error) {
	switch cfg.Backend {
	case types.BackendFile:
		return jsonstore.New(cfg.DataDir, logger)
	case types.BackendSQLite, types.BackendPostgres:
		return relstore.Open(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", types.ErrConfiguration, cfg.Backend)
	}
}
