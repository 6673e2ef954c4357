package showcase

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RegisterRoutes mounts the gallery search endpoint. index may be nil when no
// embedding provider is configured; the endpoint then reports 503.
func RegisterRoutes(r chi.Router, index *Index, logger zerolog.Logger) {
	r.Get("/api/global-sites/search", handleSearch(index, logger))
}

func handleSearch(index *Index, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if index == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "error",
				"message": "search unavailable",
			})
			return
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": "Missing query parameter q",
			})
			return
		}

		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
				limit = n
			}
		}

		results, err := index.Search(r.Context(), query, limit)
		if err != nil {
			logger.Error().Err(err).Str("query", query).Msg("showcase search failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status":  "error",
				"message": "Search failed",
			})
			return
		}
		if results == nil {
			results = []Result{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"sites":  results,
			"total":  len(results),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
