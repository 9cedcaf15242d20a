// Package cli wires the process: config, logger, pool and the cobra commands that use them.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxviazov/pr-insights-service/internal/config"
	"github.com/maxviazov/pr-insights-service/internal/logger"
	"github.com/maxviazov/pr-insights-service/internal/repository"
)

// NewRootCmd builds the command tree. Subcommands share the --config flag.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "server",
		Short:         "Pull request insights API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file (empty: env only)")

	root.AddCommand(newServeCmd(&configPath), newMigrateCmd(&configPath))
	return root
}

// Execute runs the root command with ctx, which should be cancelled on SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// app is what every command needs before doing its own work.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *repository.Repository
}

func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.Logger.Env == "" {
		cfg.Logger.Env = cfg.App.Env
	}
	if cfg.Logger.ServiceName == "" {
		cfg.Logger.ServiceName = cfg.App.Name
	}
	if cfg.Logger.ServiceVersion == "" {
		cfg.Logger.ServiceVersion = cfg.App.Version
	}
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := repository.New(ctx, cfg, &l)
	if err != nil {
		l.Error().Err(err).Msg("postgres connection failed")
		return nil, err
	}
	return &app{cfg: cfg, logger: l, db: db}, nil
}

func (a *app) Close() { a.db.Close() }
