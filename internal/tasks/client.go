package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pocketvibe/pocketvibe/internal/config"
)

// Client enqueues generation tasks. Tasks never retry: the client-side poll
// loop is the recovery mechanism, so a failed generation surfaces as a failed
// status rather than a silent re-run.
type Client struct {
	inner   *asynq.Client
	timeout time.Duration
}

// NewClient creates a queue client on the configured Redis.
func NewClient(redisCfg config.RedisConfig, timeout time.Duration) *Client {
	return &Client{
		inner:   asynq.NewClient(redisOpt(redisCfg)),
		timeout: timeout,
	}
}

// EnqueueSiteGenerate queues a site generation job.
func (c *Client) EnqueueSiteGenerate(ctx context.Context, siteID, prompt string) error {
	payload, err := json.Marshal(SiteGeneratePayload{SiteID: siteID, Prompt: prompt})
	if err != nil {
		return fmt.Errorf("marshaling site task payload: %w", err)
	}

	task := asynq.NewTask(TypeSiteGenerate, payload)
	if _, err := c.inner.EnqueueContext(ctx, task, c.options()...); err != nil {
		return fmt.Errorf("enqueueing site generation: %w", err)
	}
	return nil
}

// EnqueueCSSGenerate queues a stylesheet restyle job.
func (c *Client) EnqueueCSSGenerate(ctx context.Context, cssID, prompt, baseCSS string) error {
	payload, err := json.Marshal(CSSGeneratePayload{CSSID: cssID, Prompt: prompt, BaseCSS: baseCSS})
	if err != nil {
		return fmt.Errorf("marshaling CSS task payload: %w", err)
	}

	task := asynq.NewTask(TypeCSSGenerate, payload)
	if _, err := c.inner.EnqueueContext(ctx, task, c.options()...); err != nil {
		return fmt.Errorf("enqueueing CSS generation: %w", err)
	}
	return nil
}

func (c *Client) options() []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(c.timeout),
	}
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
