package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/database"
	"github.com/deppfellow/learnhub/internal/handler"
	"github.com/deppfellow/learnhub/internal/httpapi"
	"github.com/deppfellow/learnhub/internal/repository"
	"github.com/deppfellow/learnhub/internal/router"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests and jobs get to drain.
const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving (also database.auto_migrate)")

	return cmd
}

// serve builds the server, registers the job handlers and blocks until ctx
// is cancelled or the listener fails.
func serve(ctx context.Context, migrate bool) error {
	cfg, log, loggerService, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	if migrate || cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		return err
	}

	srv.Job.InitHandlers(cfg, log, repos.Courses())
	if err := srv.Job.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start background jobs")
		return err
	}

	var h http.Handler
	switch cfg.Server.Router {
	case config.RouterChi:
		h = httpapi.NewRouter(srv, services)
	default:
		h = router.NewRouter(srv, handler.NewHandlers(srv, services))
	}
	srv.SetupHTTPServer(h)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, srv, log)
}

// lifecycle is the part of *server.Server that run drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is cancelled or the listener fails, then shuts down.
// A listener failure (port in use, bad address) is returned after shutdown
// so the process exits non-zero.
func run(ctx context.Context, srv lifecycle, log *zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var startErr error
	select {
	case startErr = <-serveErr:
		if startErr != nil {
			log.Error().Err(startErr).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	if startErr != nil {
		return fmt.Errorf("server failed: %w", startErr)
	}

	log.Info().Msg("server exited properly")
	return nil
}
