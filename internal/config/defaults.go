package config

import "time"

// defaultModels maps each provider to its default site-generation model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-4o",
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOpenRouter: "openai/gpt-4o",
	ProviderOllama:     "llama3",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":8000",
		BaseURL:  "http://localhost:8000",
		DataDir:  "data",
		Provider: ProviderOpenAI,
		Model:    "gpt-4o",
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Generation: GenerationConfig{
			MaxTokens:   8192,
			Temperature: 0.7,
			Timeout:     15 * time.Minute,
			RPM:         30,
		},
		Worker: WorkerConfig{
			Concurrency: 4,
		},
		RateLimit: RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
		},
		Embedding: EmbeddingConfig{
			Provider: ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Cache: CacheConfig{
			SiteTTL:    365 * 24 * time.Hour,
			StatusTTL:  30 * time.Second,
			GalleryTTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			Endpoint:     "localhost:4318",
			SamplingRate: 0.1,
		},
	}
}

// DefaultModel returns the default model for the given provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderOpenAI]
}
