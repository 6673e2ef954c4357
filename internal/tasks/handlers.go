package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/cssgen"
	"github.com/pocketvibe/pocketvibe/internal/events"
	"github.com/pocketvibe/pocketvibe/internal/generator"
	"github.com/pocketvibe/pocketvibe/internal/metrics"
	"github.com/pocketvibe/pocketvibe/internal/push"
	"github.com/pocketvibe/pocketvibe/internal/sites"
)

// Handlers holds the dependencies the worker needs to process tasks.
type Handlers struct {
	engine    *generator.Engine
	siteStore *sites.Store
	cssStore  *cssgen.Store
	sender    *push.Sender // nil when Web Push is unconfigured
	publisher *events.Publisher
	logger    zerolog.Logger
}

// NewHandlers assembles the worker-side task handlers.
func NewHandlers(engine *generator.Engine, siteStore *sites.Store, cssStore *cssgen.Store,
	sender *push.Sender, publisher *events.Publisher, logger zerolog.Logger) *Handlers {
	return &Handlers{
		engine:    engine,
		siteStore: siteStore,
		cssStore:  cssStore,
		sender:    sender,
		publisher: publisher,
		logger:    logger.With().Str("component", "tasks").Logger(),
	}
}

// HandleSiteGenerate runs a site generation end to end: generate, persist,
// announce the transition, and notify the subscriber if there is one.
func (h *Handlers) HandleSiteGenerate(ctx context.Context, t *asynq.Task) error {
	var p SiteGeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshaling site task payload: %w", err)
	}

	start := time.Now()
	log := h.logger.With().Str("site_id", p.SiteID).Logger()
	log.Info().Msg("starting site generation")

	html, err := h.engine.GenerateSite(ctx, p.SiteID, p.Prompt)
	if err != nil {
		status := sites.StatusError
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			status = sites.StatusTimeout
		}
		log.Error().Err(err).Str("status", string(status)).Msg("site generation failed")
		h.finishSite(p.SiteID, status)
		metrics.RecordGeneration("site", string(status), time.Since(start))
		return err
	}

	// Persistence uses a fresh context: a task timeout firing between
	// generation and save must not lose a finished site.
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.siteStore.UpdateGenerated(saveCtx, p.SiteID, html); err != nil {
		log.Error().Err(err).Msg("failed to save generated site")
		h.finishSite(p.SiteID, sites.StatusError)
		metrics.RecordGeneration("site", string(sites.StatusError), time.Since(start))
		return err
	}

	h.finishSite(p.SiteID, sites.StatusSuccess)
	metrics.RecordGeneration("site", string(sites.StatusSuccess), time.Since(start))
	log.Info().Dur("elapsed", time.Since(start)).Msg("site generation complete")
	return nil
}

// finishSite records a terminal status, publishes the transition and sends
// the matching push notification. Success rows are not overwritten by a late
// error; UpdateGenerated already set the status in the success path, so only
// failures need SetStatus here.
func (h *Handlers) finishSite(siteID string, status sites.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if status != sites.StatusSuccess {
		if err := h.siteStore.SetStatus(ctx, siteID, status); err != nil {
			h.logger.Error().Err(err).Str("site_id", siteID).Msg("failed to record terminal status")
		}
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, events.Event{SiteID: siteID, Status: string(status)}); err != nil {
			h.logger.Warn().Err(err).Str("site_id", siteID).Msg("failed to publish status event")
		}
	}

	site, err := h.siteStore.Get(ctx, siteID)
	if err != nil || site.SubscriptionID == "" {
		return
	}

	var n push.Notification
	switch status {
	case sites.StatusSuccess:
		appName := site.AppName
		if appName == "" {
			appName = sites.DefaultAppName
		}
		n = push.Notification{
			Title: push.TitleComplete,
			Body:  appName + " is ready to view",
			URL:   "/site/" + siteID,
		}
	case sites.StatusTimeout:
		n = push.Notification{
			Title: push.TitleTimeout,
			Body:  "Your site generation took too long. Please try again.",
		}
	default:
		n = push.Notification{
			Title: push.TitleFailed,
			Body:  "There was an error generating your site. Please try again.",
		}
	}

	h.sender.NotifyOutcome(ctx, site.SubscriptionID, n)
}

// HandleCSSGenerate runs a stylesheet restyle job.
func (h *Handlers) HandleCSSGenerate(ctx context.Context, t *asynq.Task) error {
	var p CSSGeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshaling CSS task payload: %w", err)
	}

	start := time.Now()
	log := h.logger.With().Str("css_id", p.CSSID).Logger()
	log.Info().Msg("starting CSS generation")

	css, err := h.engine.GenerateCSS(ctx, p.Prompt, p.BaseCSS)
	if err != nil {
		log.Error().Err(err).Msg("CSS generation failed")
		saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if ferr := h.cssStore.Fail(saveCtx, p.CSSID, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("failed to record CSS error")
		}
		metrics.RecordGeneration("css", "error", time.Since(start))
		return err
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.cssStore.Complete(saveCtx, p.CSSID, css); err != nil {
		log.Error().Err(err).Msg("failed to save generated CSS")
		metrics.RecordGeneration("css", "error", time.Since(start))
		return err
	}

	metrics.RecordGeneration("css", "success", time.Since(start))
	log.Info().Dur("elapsed", time.Since(start)).Msg("CSS generation complete")
	return nil
}
