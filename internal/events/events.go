// Package events carries site status transitions from the worker to the API
// process over Redis pub/sub, and fans them out to WebSocket subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel for status events.
const Channel = "pocketvibe:events"

// Event is a single site status transition.
type Event struct {
	SiteID string `json:"site_id"`
	Status string `json:"status"`
}

// Publisher emits status events from the worker process.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher on an existing Redis client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish emits an event. Callers treat failures as non-fatal: polling still
// works when pub/sub is down.
func (p *Publisher) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel, raw).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}
