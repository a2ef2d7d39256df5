package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/adapter"
	"github.com/querydesk/querydesk/internal/cli/config"
	"github.com/querydesk/querydesk/internal/gate"
	"github.com/querydesk/querydesk/internal/schema"
	"github.com/querydesk/querydesk/internal/session"
	"github.com/querydesk/querydesk/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	DB      adapter.Adapter
	Store   state.Store
	Gate    *gate.Gate
	Session *session.Session
	Schema  *schema.Cache
}

// NewCommandContext creates a CommandContext with a connected adapter, an
// opened state store, and a workspace session wired through the gate.
// Returns the context and a cleanup function that must be called (typically
// via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	db, err := adapter.New(cfg.Target.AdapterConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Connect(cmd.Context(), cfg.Target.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to target: %w", err)
	}

	store := state.NewSQLiteStore()
	if err := cfg.EnsureStateDir(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := store.Open(cfg.StatePath); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	g := gate.New(cfg.GatePolicy(), db, logger)
	sess := session.New(g, store, logger)
	cache := schema.NewCache(db, logger)

	cleanup := func() {
		_ = store.Close()
		_ = db.Close()
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		DB:      db,
		Store:   store,
		Gate:    g,
		Session: sess,
		Schema:  cache,
	}, cleanup, nil
}

// NewCommandContextWithoutDB creates a CommandContext without connecting to
// the target database. Useful for commands that only touch the state store.
func NewCommandContextWithoutDB(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store := state.NewSQLiteStore()
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, nil, err
	}
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	cleanup := func() { _ = store.Close() }

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Store:  store,
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	statePath := getEnvOrDefault("QUERYDESK_STATE_PATH", config.DefaultStateFile)
	templatesDir := getEnvOrDefault("QUERYDESK_TEMPLATES_DIR", config.DefaultTemplatesDir)
	environment := getEnvOrDefault("QUERYDESK_ENVIRONMENT", config.DefaultEnv)
	verbose := os.Getenv("QUERYDESK_VERBOSE") == "true"
	outputFormat := os.Getenv("QUERYDESK_OUTPUT")

	return &config.Config{
		StatePath:    statePath,
		TemplatesDir: templatesDir,
		Environment:  environment,
		Verbose:      verbose,
		OutputFormat: outputFormat,
		ReadOnly:     os.Getenv("QUERYDESK_READ_ONLY") == "true",
		Target:       &config.TargetConfig{Type: "duckdb"},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
