package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/config"
)

// RunWorker starts the asynq server and blocks until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config, h *Handlers, logger zerolog.Logger) error {
	srv := asynq.NewServer(redisOpt(cfg.Redis), asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      &logAdapter{logger.With().Str("component", "asynq").Logger()},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSiteGenerate, h.HandleSiteGenerate)
	mux.HandleFunc(TypeCSSGenerate, h.HandleCSSGenerate)

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("starting worker: %w", err)
	}

	logger.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker started")
	<-ctx.Done()

	logger.Info().Msg("shutting down worker")
	srv.Shutdown()
	return nil
}

// logAdapter bridges asynq's logger interface onto zerolog.
type logAdapter struct {
	log zerolog.Logger
}

func (a *logAdapter) Debug(args ...interface{}) { a.log.Debug().Msg(fmt.Sprint(args...)) }
func (a *logAdapter) Info(args ...interface{})  { a.log.Info().Msg(fmt.Sprint(args...)) }
func (a *logAdapter) Warn(args ...interface{})  { a.log.Warn().Msg(fmt.Sprint(args...)) }
func (a *logAdapter) Error(args ...interface{}) { a.log.Error().Msg(fmt.Sprint(args...)) }
func (a *logAdapter) Fatal(args ...interface{}) { a.log.Fatal().Msg(fmt.Sprint(args...)) }
