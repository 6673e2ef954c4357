package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pocketvibe/pocketvibe/internal/metrics"
)

const responsePrefix = "resp:"

// cachedResponse is the serialized form of a cached HTTP response.
type cachedResponse struct {
	Status      int         `json:"status"`
	Header      http.Header `json:"header"`
	Body        []byte      `json:"body"`
	StoredAtUTC time.Time   `json:"stored_at"`
}

// recorder captures a handler's response so it can be cached.
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Response wraps a handler so successful GET responses are served from the
// cache for ttl. Only 200 responses are stored; everything else passes through.
func Response(c Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || ttl <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := responsePrefix + r.URL.Path
			if raw, ok := c.Get(key); ok {
				var cached cachedResponse
				if err := json.Unmarshal(raw, &cached); err == nil {
					metrics.RecordCacheHit()
					for k, vals := range cached.Header {
						for _, v := range vals {
							w.Header().Add(k, v)
						}
					}
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(cached.Status)
					w.Write(cached.Body)
					return
				}
			}
			metrics.RecordCacheMiss()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				stored := cachedResponse{
					Status:      rec.status,
					Header:      cacheableHeaders(w.Header()),
					Body:        rec.buf.Bytes(),
					StoredAtUTC: time.Now().UTC(),
				}
				if raw, err := json.Marshal(stored); err == nil {
					c.Set(key, raw, ttl)
				}
			}
		})
	}
}

// InvalidateSite drops every cached response belonging to a site: the site
// page, its manifest and service worker, its status, and the gallery listing.
func InvalidateSite(c Cache, siteID string) {
	c.DeletePrefix(responsePrefix + "/site/" + siteID)
	c.Delete(responsePrefix + "/api/site-status/" + siteID)
	c.Delete(responsePrefix + "/api/global-sites")
}

// InvalidateGallery drops the cached gallery listing. Used when a new site is
// published outside the generation flow.
func InvalidateGallery(c Cache) {
	c.Delete(responsePrefix + "/api/global-sites")
}

// cacheableHeaders copies the headers worth replaying from cache.
func cacheableHeaders(h http.Header) http.Header {
	out := http.Header{}
	for _, k := range []string{"Content-Type", "Service-Worker-Allowed"} {
		if v := h.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}
