package cssgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Enqueuer hands restyle jobs to the task queue.
type Enqueuer interface {
	EnqueueCSSGenerate(ctx context.Context, cssID, prompt, baseCSS string) error
}

// RegisterRoutes mounts the restyle endpoints. baseCSS is the stylesheet
// snapshot every restyle starts from.
func RegisterRoutes(r chi.Router, store *Store, enq Enqueuer, baseCSS string, logger zerolog.Logger) {
	r.Post("/generate-css", handleGenerate(store, enq, baseCSS, logger))
	r.Get("/css-status/{cssID}", handleStatus(store))
}

func handleGenerate(store *Store, enq Enqueuer, baseCSS string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No prompt provided"})
			return
		}

		cssID := uuid.NewString()
		if err := store.Create(r.Context(), cssID, req.Prompt); err != nil {
			logger.Error().Err(err).Msg("failed to create CSS generation record")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to start CSS generation"})
			return
		}

		if err := enq.EnqueueCSSGenerate(r.Context(), cssID, req.Prompt, baseCSS); err != nil {
			logger.Error().Err(err).Str("css_id", cssID).Msg("failed to enqueue CSS generation")
			store.Fail(r.Context(), cssID, "failed to enqueue generation task")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to start CSS generation"})
			return
		}

		logger.Info().Str("css_id", cssID).Msg("CSS generation started")
		writeJSON(w, http.StatusOK, map[string]string{
			"css_id": cssID,
			"status": StatusProcessing,
		})
	}
}

func handleStatus(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cssID := chi.URLParam(r, "cssID")

		g, err := store.Get(r.Context(), cssID)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "CSS generation not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
			return
		}

		resp := map[string]any{"status": g.Status}
		if g.Status == StatusCompleted {
			resp["css_content"] = g.CSSContent
		} else {
			resp["css_content"] = nil
		}
		if g.Status == StatusError {
			resp["error"] = g.Error
		} else {
			resp["error"] = nil
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
