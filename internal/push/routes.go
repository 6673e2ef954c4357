package push

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RegisterRoutes mounts the subscription endpoints and the VAPID key exposure.
func RegisterRoutes(r chi.Router, store *Store, vapidPublicKey string, logger zerolog.Logger) {
	r.Post("/subscribe", handleSubscribe(store, logger))
	r.Post("/unsubscribe", handleUnsubscribe(store, logger))
	r.Get("/api/push/public-key", handlePublicKey(vapidPublicKey))
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			Auth   string `json:"auth"`
			P256dh string `json:"p256dh"`
		} `json:"keys"`
	} `json:"subscription"`
}

func handleSubscribe(store *Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Subscription.Endpoint == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No subscription data provided"})
			return
		}
		if req.Subscription.Keys.Auth == "" || req.Subscription.Keys.P256dh == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid subscription keys"})
			return
		}

		_, err := store.Upsert(r.Context(), req.Subscription.Endpoint,
			req.Subscription.Keys.Auth, req.Subscription.Keys.P256dh, r.UserAgent())
		if err != nil {
			logger.Error().Err(err).Msg("failed to store push subscription")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to store subscription"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleUnsubscribe(store *Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Subscription.Endpoint == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No endpoint provided"})
			return
		}

		if err := store.DeactivateByEndpoint(r.Context(), req.Subscription.Endpoint); err != nil {
			logger.Debug().Err(err).Msg("unsubscribe for unknown endpoint")
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handlePublicKey(vapidPublicKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if vapidPublicKey == "" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Push notifications are not configured"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"public_key": vapidPublicKey})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
