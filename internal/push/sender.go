package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/metrics"
)

// Notification titles sent by the worker on generation outcomes.
const (
	TitleComplete = "Site Generation Complete! 🎉"
	TitleTimeout  = "Site Generation Timeout ⏰"
	TitleFailed   = "Site Generation Failed ❌"
)

// Notification is the JSON payload delivered to the service worker.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Sender delivers Web Push notifications signed with the VAPID keypair.
// Deliveries are paced so a burst of finished generations cannot flood the
// push services.
type Sender struct {
	cfg     config.PushConfig
	store   *Store
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewSender creates a Sender. Returns an error when the VAPID keys are unset.
func NewSender(cfg config.PushConfig, store *Store, logger zerolog.Logger) (*Sender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID keys are not configured, run 'pocketvibe vapid' to generate them")
	}
	return &Sender{
		cfg:     cfg,
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:  logger.With().Str("component", "push").Logger(),
	}, nil
}

// Enabled reports whether Web Push is configured.
func (s *Sender) Enabled() bool { return s != nil }

// Send delivers a notification to a subscription. A 404 or 410 from the push
// service deactivates the subscription so it is skipped in the future.
func (s *Sender) Send(ctx context.Context, sub *Subscription, n Notification) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for push rate limit: %w", err)
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.Mailto,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             3600,
	})
	if err != nil {
		metrics.RecordPushDelivery("failed")
		return fmt.Errorf("sending push notification: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		metrics.RecordPushDelivery("expired")
		s.logger.Info().Str("endpoint", sub.Endpoint).Int("status", resp.StatusCode).
			Msg("subscription expired, deactivating")
		if err := s.store.Deactivate(ctx, sub.ID); err != nil {
			s.logger.Error().Err(err).Str("id", sub.ID).Msg("failed to deactivate subscription")
		}
		return nil
	case resp.StatusCode >= 400:
		metrics.RecordPushDelivery("failed")
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	metrics.RecordPushDelivery("sent")
	s.logger.Debug().Str("endpoint", sub.Endpoint).Str("title", n.Title).Msg("push notification sent")
	return nil
}

// NotifyOutcome sends the notification matching a generation outcome to the
// site's linked subscription, if it has an active one. Failures are logged,
// never propagated: a dead push endpoint must not fail the generation.
func (s *Sender) NotifyOutcome(ctx context.Context, subscriptionID string, n Notification) {
	if s == nil || subscriptionID == "" {
		return
	}

	sub, err := s.store.GetActive(ctx, subscriptionID)
	if err != nil {
		s.logger.Debug().Err(err).Str("id", subscriptionID).Msg("no active subscription to notify")
		return
	}

	if err := s.Send(ctx, sub, n); err != nil {
		s.logger.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("push delivery failed")
	}
}
