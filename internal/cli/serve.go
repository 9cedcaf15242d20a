package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/maxviazov/pr-insights-service/internal/handler"
	"github.com/maxviazov/pr-insights-service/internal/migrations"
	"github.com/maxviazov/pr-insights-service/internal/repository/postgres"
	"github.com/maxviazov/pr-insights-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate {
				if err := migrateUp(ctx, a); err != nil {
					return err
				}
			}
			return serve(ctx, a)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func migrateUp(ctx context.Context, a *app) error {
	m, err := migrations.New(a.db.Pool(), &a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up(ctx)
}

func serve(ctx context.Context, a *app) error {
	if a.cfg.App.Env == "prod" || a.cfg.App.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}

	pool := a.db.Pool()
	prSvc := service.NewPullRequestService(postgres.NewPullRequestRepository(pool), a.logger)
	router := handler.NewRouter(postgres.NewPinger(pool), prSvc, handler.Options{
		RequestTimeout: a.cfg.HTTP.RequestTimeout,
		Logger:         a.logger,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.HTTP.Host, strconv.Itoa(a.cfg.HTTP.Port)),
		Handler:           handler.WithCORS(router, a.cfg.HTTP.CORSAllowedOrigins),
		ReadTimeout:       a.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: a.cfg.HTTP.ReadTimeout,
		WriteTimeout:      a.cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.logger.Info().Msg("server stopped")
	return nil
}
