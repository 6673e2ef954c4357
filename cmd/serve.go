package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pocketvibe/pocketvibe/internal/cache"
	"github.com/pocketvibe/pocketvibe/internal/db"
	"github.com/pocketvibe/pocketvibe/internal/embeddings"
	"github.com/pocketvibe/pocketvibe/internal/events"
	"github.com/pocketvibe/pocketvibe/internal/log"
	"github.com/pocketvibe/pocketvibe/internal/server"
	"github.com/pocketvibe/pocketvibe/internal/showcase"
	"github.com/pocketvibe/pocketvibe/internal/sites"
	"github.com/pocketvibe/pocketvibe/internal/tasks"
	"github.com/pocketvibe/pocketvibe/internal/telemetry"
	"github.com/pocketvibe/pocketvibe/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pocketvibe web server",
	Long: `Starts the HTTP server that serves the builder shell, the generated
sites, and the JSON API. Generation itself runs in the worker process;
start one with ` + "`pocketvibe worker`" + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := log.WithComponent("serve")

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}

		database, err := db.Open(cfg.SitePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tel, err := telemetry.NewProvider(ctx, telemetry.Config{
			Enabled:        cfg.Telemetry.Enabled,
			ServiceName:    "pocketvibe",
			ServiceVersion: Version,
			Endpoint:       cfg.Telemetry.Endpoint,
			SamplingRate:   cfg.Telemetry.SamplingRate,
		})
		if err != nil {
			return fmt.Errorf("starting telemetry: %w", err)
		}

		redisClient := newRedisClient(cfg)
		defer redisClient.Close()

		respCache := cache.NewRedisCache(redisClient, logger)

		taskClient := tasks.NewClient(cfg.Redis, cfg.Generation.Timeout)
		defer taskClient.Close()

		hub := events.NewHub(redisClient, respCache, logger)
		go hub.Run(ctx)

		// Semantic gallery search is optional; without an embedding
		// provider the search endpoint reports unavailable.
		var index *showcase.Index
		embedder, err := embeddings.NewEmbedder(cfg.Embedding)
		if err != nil {
			logger.Warn().Err(err).Msg("embeddings unavailable, gallery search disabled")
		} else if embedder != nil {
			index, err = showcase.NewIndex(embedder, cfg.DataDir, logger)
			if err != nil {
				return fmt.Errorf("opening showcase index: %w", err)
			}
			indexer := showcase.NewIndexer(index, sites.NewStore(database), 0, logger)
			go indexer.Run(ctx)
		}

		baseCSS, err := web.BaseCSS()
		if err != nil {
			return fmt.Errorf("reading base stylesheet: %w", err)
		}

		srv := server.New(cfg, server.Deps{
			DB:      database,
			Tasks:   taskClient,
			Cache:   respCache,
			Hub:     hub,
			Index:   index,
			BaseCSS: baseCSS,
		}, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("telemetry shutdown")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
