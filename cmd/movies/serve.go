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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/user/top-movies/internal/catalog"
	"github.com/user/top-movies/internal/config"
	"github.com/user/top-movies/internal/movies"
	"github.com/user/top-movies/internal/store"
	"github.com/user/top-movies/internal/web"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx.cfg)
		},
	}
}

func newCatalogClient(cfg *config.Config) (*catalog.TMDBClient, error) {
	return catalog.NewTMDBClient(&catalog.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		APIToken:  cfg.Catalog.APIToken,
		Language:  cfg.Catalog.Language,
		Timeout:   cfg.Catalog.Timeout,
		RateLimit: cfg.Catalog.RateLimit,
	})
}

func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := store.Open(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("Database connection established")

	client, err := newCatalogClient(cfg)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	service := movies.NewService(db, client, cfg.Catalog.ImageBaseURL)
	httpServer, err := web.NewServer(service, db, web.Options{
		SecretKey:    cfg.App.SecretKey,
		ImageBaseURL: cfg.Catalog.ImageBaseURL,
	})
	if err != nil {
		db.Close()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info().Msg("Top movies started successfully")

	var runErr error
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("HTTP server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	log.Info().Msg("Starting graceful shutdown...")

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	} else {
		log.Info().Msg("Database connection closed")
	}

	if shutdownCtx.Err() == context.DeadlineExceeded {
		log.Warn().Msg("Shutdown timeout exceeded")
	} else {
		log.Info().Msg("Graceful shutdown completed")
	}
	return runErr
}
