// Package tasks defines the background generation jobs and their queue plumbing.
package tasks

import (
	"github.com/hibiken/asynq"

	"github.com/pocketvibe/pocketvibe/internal/config"
)

// Task type names. The worker's mux dispatches on these.
const (
	TypeSiteGenerate = "site:generate"
	TypeCSSGenerate  = "css:generate"
)

// SiteGeneratePayload is the payload of a site:generate task.
type SiteGeneratePayload struct {
	SiteID string `json:"site_id"`
	Prompt string `json:"prompt"`
}

// CSSGeneratePayload is the payload of a css:generate task.
type CSSGeneratePayload struct {
	CSSID   string `json:"css_id"`
	Prompt  string `json:"prompt"`
	BaseCSS string `json:"base_css"`
}

// redisOpt converts the configured Redis settings for asynq.
func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
