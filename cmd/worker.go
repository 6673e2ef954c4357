package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pocketvibe/pocketvibe/internal/cssgen"
	"github.com/pocketvibe/pocketvibe/internal/db"
	"github.com/pocketvibe/pocketvibe/internal/events"
	"github.com/pocketvibe/pocketvibe/internal/generator"
	"github.com/pocketvibe/pocketvibe/internal/log"
	"github.com/pocketvibe/pocketvibe/internal/push"
	"github.com/pocketvibe/pocketvibe/internal/sites"
	"github.com/pocketvibe/pocketvibe/internal/tasks"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background generation worker",
	Long: `Starts the worker that picks up queued site and CSS generation jobs,
calls the configured LLM, stores the result, and notifies subscribers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if workerConcurrency > 0 {
			cfg.Worker.Concurrency = workerConcurrency
		}
		logger := log.WithComponent("worker")

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}

		database, err := db.Open(cfg.SitePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		provider, err := newLLMProvider(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		engine := generator.NewEngine(provider, cfg.Model, cfg.Generation, logger)

		sender, err := push.NewSender(cfg.Push, push.NewStore(database), logger)
		if err != nil {
			logger.Warn().Err(err).Msg("push notifications disabled")
			sender = nil
		}

		redisClient := newRedisClient(cfg)
		defer redisClient.Close()
		publisher := events.NewPublisher(redisClient)

		h := tasks.NewHandlers(engine, sites.NewStore(database), cssgen.NewStore(database),
			sender, publisher, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info().
			Int("concurrency", cfg.Worker.Concurrency).
			Str("provider", provider.Name()).
			Str("model", cfg.Model).
			Msg("worker starting")
		return tasks.RunWorker(ctx, cfg, h, logger)
	},
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "override worker concurrency")
	rootCmd.AddCommand(workerCmd)
}
