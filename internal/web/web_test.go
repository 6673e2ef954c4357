package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter() chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r)
	return r
}

func get(t *testing.T, r chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServeIndex(t *testing.T) {
	w := get(t, newTestRouter(), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "PocketVibe") {
		t.Error("index does not mention PocketVibe")
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestServiceWorkerScope(t *testing.T) {
	w := get(t, newTestRouter(), "/service-worker.js")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Service-Worker-Allowed"); got != "/" {
		t.Errorf("Service-Worker-Allowed = %q, want /", got)
	}
}

func TestCacheControl(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/static/icons/pocketvibe.png", "public, max-age=31536000, immutable"},
		{"/static/style.css", "public, max-age=86400"},
		{"/static/app.js", "no-cache"},
		{"/manifest.json", "no-cache"},
		{"/", "no-cache"},
	}
	r := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, r, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if got := w.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMissingAsset(t *testing.T) {
	if w := get(t, newTestRouter(), "/static/nope.js"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBaseCSS(t *testing.T) {
	css, err := BaseCSS()
	if err != nil {
		t.Fatalf("BaseCSS: %v", err)
	}
	if !strings.Contains(css, "#121212") {
		t.Error("base stylesheet missing the dark background")
	}
}
