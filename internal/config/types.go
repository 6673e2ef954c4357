package config

import "time"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level pocketvibe configuration, corresponding to pocketvibe.yml.
type Config struct {
	Listen     string           `yaml:"listen" koanf:"listen"`
	BaseURL    string           `yaml:"base_url" koanf:"base_url"`
	DataDir    string           `yaml:"data_dir" koanf:"data_dir"`
	Redis      RedisConfig      `yaml:"redis" koanf:"redis"`
	Provider   ProviderType     `yaml:"provider" koanf:"provider"`
	Model      string           `yaml:"model" koanf:"model"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Worker     WorkerConfig     `yaml:"worker" koanf:"worker"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" koanf:"rate_limit"`
	Push       PushConfig       `yaml:"push" koanf:"push"`
	Embedding  EmbeddingConfig  `yaml:"embedding" koanf:"embedding"`
	Cache      CacheConfig      `yaml:"cache" koanf:"cache"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" koanf:"telemetry"`
}

// RedisConfig holds connection settings for the task queue, pub/sub and cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" koanf:"addr"`
	Password string `yaml:"password" koanf:"password"`
	DB       int    `yaml:"db" koanf:"db"`
}

// GenerationConfig controls the LLM generation behaviour.
type GenerationConfig struct {
	MaxTokens   int           `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature float64       `yaml:"temperature" koanf:"temperature"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`
	RPM         int           `yaml:"rpm" koanf:"rpm"` // LLM requests per minute
}

// WorkerConfig controls the background task worker.
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency" koanf:"concurrency"`
}

// RateLimitConfig throttles inbound generation requests per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests" koanf:"requests"`
	Window   time.Duration `yaml:"window" koanf:"window"`
}

// PushConfig holds the VAPID keypair used for Web Push.
type PushConfig struct {
	VAPIDPublicKey  string `yaml:"vapid_public_key" koanf:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key" koanf:"vapid_private_key"`
	Mailto          string `yaml:"mailto" koanf:"mailto"`
}

// EmbeddingConfig controls the optional gallery semantic search.
type EmbeddingConfig struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
}

// CacheConfig holds the response cache TTLs.
type CacheConfig struct {
	SiteTTL    time.Duration `yaml:"site_ttl" koanf:"site_ttl"`
	StatusTTL  time.Duration `yaml:"status_ttl" koanf:"status_ttl"`
	GalleryTTL time.Duration `yaml:"gallery_ttl" koanf:"gallery_ttl"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	File  string `yaml:"file" koanf:"file"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" koanf:"enabled"`
	Endpoint     string  `yaml:"endpoint" koanf:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate" koanf:"sampling_rate"`
}
