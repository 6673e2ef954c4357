package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/cache"
	"github.com/pocketvibe/pocketvibe/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The site builder page lives on the same origin; cross-origin browsers
	// only receive public status values, so the check stays permissive like
	// the rest of the API's CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub subscribes to the Redis event channel in the API process and forwards
// each site's transitions to its WebSocket watchers.
type Hub struct {
	client    *redis.Client
	respCache cache.Cache
	logger    zerolog.Logger

	mu       sync.RWMutex
	watchers map[string]map[*websocket.Conn]struct{} // siteID -> connections
}

// NewHub creates a Hub on an existing Redis client.
func NewHub(client *redis.Client, respCache cache.Cache, logger zerolog.Logger) *Hub {
	return &Hub{
		client:    client,
		respCache: respCache,
		logger:    logger.With().Str("component", "events").Logger(),
		watchers:  make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Run consumes the Redis channel until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	sub := h.client.Subscribe(ctx, Channel)
	defer sub.Close()

	h.logger.Info().Str("channel", Channel).Msg("event hub listening")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				h.logger.Warn().Err(err).Str("payload", msg.Payload).Msg("dropping malformed event")
				continue
			}
			h.dispatch(e)
		}
	}
}

// dispatch forwards an event to the site's watchers and drops stale cache
// entries once the status is final.
func (h *Hub) dispatch(e Event) {
	if isTerminal(e.Status) {
		cache.InvalidateSite(h.respCache, e.SiteID)
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.watchers[e.SiteID]))
	for conn := range h.watchers[e.SiteID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.logger.Debug().Err(err).Str("site_id", e.SiteID).Msg("dropping dead websocket")
			h.remove(e.SiteID, conn)
			conn.Close()
		}
	}
}

func isTerminal(status string) bool {
	switch status {
	case "success", "error", "timeout":
		return true
	}
	return false
}

func (h *Hub) add(siteID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[siteID] == nil {
		h.watchers[siteID] = make(map[*websocket.Conn]struct{})
	}
	h.watchers[siteID][conn] = struct{}{}
	metrics.WSSubscriberConnected()
}

func (h *Hub) remove(siteID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if watchers, ok := h.watchers[siteID]; ok {
		if _, present := watchers[conn]; present {
			delete(watchers, conn)
			metrics.WSSubscriberDisconnected()
		}
		if len(watchers) == 0 {
			delete(h.watchers, siteID)
		}
	}
}

// RegisterRoutes mounts the WebSocket endpoint.
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get("/api/site-events/{siteID}", h.handleWatch)
}

// handleWatch upgrades the connection and streams status events for one site
// until the client goes away.
func (h *Hub) handleWatch(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.add(siteID, conn)
	h.logger.Debug().Str("site_id", siteID).Msg("websocket subscriber connected")

	// Reads are only used to detect disconnects.
	go func() {
		defer func() {
			h.remove(siteID, conn)
			conn.Close()
			h.logger.Debug().Str("site_id", siteID).Msg("websocket subscriber disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
