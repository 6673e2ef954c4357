package sites

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/cache"
	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/generator"
)

// Enqueuer hands generation jobs to the task queue.
type Enqueuer interface {
	EnqueueSiteGenerate(ctx context.Context, siteID, prompt string) error
}

// SubscriptionUpserter records a push subscription and returns its ID.
type SubscriptionUpserter interface {
	Upsert(ctx context.Context, endpoint, auth, p256dh, userAgent string) (string, error)
}

// RegisterRoutes mounts the site generation and serving endpoints.
func RegisterRoutes(r chi.Router, store *Store, enq Enqueuer, subs SubscriptionUpserter, respCache cache.Cache, ttl config.CacheConfig, logger zerolog.Logger) {
	r.Post("/api/generate-site", handleGenerateSite(store, enq, subs, logger))
	r.With(cache.Response(respCache, ttl.StatusTTL)).
		Get("/api/site-status/{siteID}", handleSiteStatus(store))
	r.With(cache.Response(respCache, ttl.GalleryTTL)).
		Get("/api/global-sites", handleGlobalSites(store))
	r.Post("/api/update-app-icon", handleUpdateAppIcon(store, respCache, logger))
	r.Post("/appify", handleAppify(store, logger))

	r.Route("/site/{siteID}", func(r chi.Router) {
		r.Use(cache.Response(respCache, ttl.SiteTTL))
		r.Get("/", handleViewSite(store))
		r.Get("/manifest.json", handleSiteManifest(store))
		r.Get("/sw.js", handleServiceWorker())
	})
}

type subscriptionPayload struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		Auth   string `json:"auth"`
		P256dh string `json:"p256dh"`
	} `json:"keys"`
}

type generateSiteRequest struct {
	Prompt       string               `json:"prompt"`
	SiteID       string               `json:"site_id"`
	Subscription *subscriptionPayload `json:"subscription,omitempty"`
}

func handleGenerateSite(store *Store, enq Enqueuer, subs SubscriptionUpserter, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateSiteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" || req.SiteID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No prompt or site_id provided"})
			return
		}

		if !ValidSiteID(req.SiteID) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid site_id format"})
			return
		}

		exists, err := store.Exists(r.Context(), req.SiteID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to initialize site generation"})
			return
		}
		if exists {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Site ID already exists"})
			return
		}

		// Subscription handling is best effort: a push failure must not block
		// the generation itself.
		var subscriptionID string
		if req.Subscription != nil && req.Subscription.Endpoint != "" {
			id, err := subs.Upsert(r.Context(), req.Subscription.Endpoint,
				req.Subscription.Keys.Auth, req.Subscription.Keys.P256dh, r.UserAgent())
			if err != nil {
				logger.Error().Err(err).Str("site_id", req.SiteID).Msg("failed to store push subscription")
			} else {
				subscriptionID = id
			}
		}

		site := Site{
			ID:             req.SiteID,
			Prompt:         req.Prompt,
			Status:         StatusProcessing,
			SubscriptionID: subscriptionID,
		}
		if err := store.Create(r.Context(), site); err != nil {
			logger.Error().Err(err).Str("site_id", req.SiteID).Msg("failed to create site record")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to initialize site generation"})
			return
		}

		if err := enq.EnqueueSiteGenerate(r.Context(), req.SiteID, req.Prompt); err != nil {
			logger.Error().Err(err).Str("site_id", req.SiteID).Msg("failed to enqueue generation task")
			store.SetStatus(r.Context(), req.SiteID, StatusError)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to start site generation"})
			return
		}

		logger.Info().Str("site_id", req.SiteID).Msg("site generation started")
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  string(StatusProcessing),
			"site_id": req.SiteID,
			"message": "Site generation started",
		})
	}
}

func handleSiteStatus(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")

		site, err := store.Get(r.Context(), siteID)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"status":  string(StatusNotFound),
				"message": "Site not found",
			})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Database error"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  string(site.Status),
			"site_id": siteID,
		})
	}
}

func handleViewSite(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")

		site, err := store.Get(r.Context(), siteID)
		if errors.Is(err, ErrNotFound) || (err == nil && site.Content == "") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(notFoundPage))
			return
		}
		if err != nil {
			http.Error(w, "Error loading site", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(site.Content))
	}
}

func handleSiteManifest(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")

		site, err := store.Get(r.Context(), siteID)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Site not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Error generating manifest", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, BuildManifest(site))
	}
}

func handleServiceWorker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(ServiceWorkerJS(siteID)))
	}
}

type updateAppIconRequest struct {
	AppName  string `json:"app_name"`
	ImageURL string `json:"image_url"`
	SiteID   string `json:"site_id"`
}

func handleUpdateAppIcon(store *Store, respCache cache.Cache, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateAppIconRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "No JSON data provided"})
			return
		}

		if req.AppName == "" || req.SiteID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": "Missing required parameters: app_name and site_id are required",
			})
			return
		}

		appName := strings.TrimSpace(req.AppName)
		if !ValidAppName(appName) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": "App name can only contain letters, numbers, and hyphens",
			})
			return
		}

		site, err := store.Get(r.Context(), req.SiteID)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "Site not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Database error"})
			return
		}

		base := Slugify(appName)
		taken, err := store.ListIDsWithPrefix(r.Context(), base)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Database error"})
			return
		}
		slug := UniqueSlug(base, taken)

		iconURL := req.ImageURL
		if iconURL == "" {
			iconURL = DefaultIconPath
		}

		published := Site{
			ID:      slug,
			Prompt:  site.Prompt,
			Content: RewriteAppLinks(site.Content, slug, iconURL),
			Status:  StatusSuccess,
			AppName: appName,
			IconURL: iconURL,
		}
		if err := store.Create(r.Context(), published); err != nil {
			logger.Error().Err(err).Str("slug", slug).Msg("failed to publish renamed site")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to publish site"})
			return
		}

		cache.InvalidateGallery(respCache)
		logger.Info().Str("site_id", req.SiteID).Str("app_url", slug).Msg("site republished under app name")

		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "success",
			"message":  "App icon updated successfully",
			"app_url":  slug,
			"app_name": appName,
			"icon_url": iconURL,
		})
	}
}

func handleAppify(store *Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No URL provided"})
			return
		}

		siteID := uuid.NewString()[:8]
		site := Site{
			ID:      siteID,
			Content: generator.WrapURL(siteID, req.URL),
			Status:  StatusSuccess,
		}
		if err := store.Create(r.Context(), site); err != nil {
			logger.Error().Err(err).Str("site_id", siteID).Msg("failed to store appified site")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to appify website"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"site_id": siteID,
			"url":     "/site/" + siteID,
		})
	}
}

type gallerySite struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	AppName   string    `json:"app_name"`
	CreatedAt time.Time `json:"created_at"`
	IconURL   string    `json:"icon_url"`
}

func handleGlobalSites(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		published, err := store.ListPublished(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Database error"})
			return
		}

		list := make([]gallerySite, 0, len(published))
		for _, s := range published {
			entry := gallerySite{
				ID:        s.ID,
				URL:       "/site/" + s.ID,
				AppName:   s.AppName,
				CreatedAt: s.CreatedAt,
				IconURL:   s.IconURL,
			}
			if entry.AppName == "" {
				entry.AppName = DefaultAppName
			}
			if entry.IconURL == "" {
				entry.IconURL = DefaultIconPath
			}
			list = append(list, entry)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"sites":  list,
			"total":  len(list),
		})
	}
}

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Site Not Found</title>
    <style>
        body { font-family: -apple-system, sans-serif; background: #121212; color: #eee;
               display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
        main { text-align: center; }
        a { color: #8ab4f8; }
    </style>
</head>
<body>
    <main>
        <h1>Site not found</h1>
        <p>This site doesn't exist or is still being generated.</p>
        <p><a href="/">Build your own with PocketVibe</a></p>
    </main>
</body>
</html>
`

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
