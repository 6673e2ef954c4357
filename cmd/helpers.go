package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/llm"
	"github.com/pocketvibe/pocketvibe/internal/log"
)

// loadConfig loads and validates the config and configures the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pocketvibe init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Configure(log.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	return cfg, nil
}

// newRedisClient opens a plain redis connection for pub/sub and caching.
// The asynq queue manages its own connections from the same settings.
func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newLLMProvider creates the configured provider, wrapped with the
// request-per-minute limiter when one is set.
func newLLMProvider(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Generation.RPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.Generation.RPM)
	}
	return provider, nil
}
