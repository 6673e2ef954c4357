package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/db"
)

type fakeEnqueuer struct {
	siteJobs []string
	cssJobs  []string
}

func (f *fakeEnqueuer) EnqueueSiteGenerate(_ context.Context, siteID, _ string) error {
	f.siteJobs = append(f.siteJobs, siteID)
	return nil
}

func (f *fakeEnqueuer) EnqueueCSSGenerate(_ context.Context, cssID, _, _ string) error {
	f.cssJobs = append(f.cssJobs, cssID)
	return nil
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *fakeEnqueuer) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.RateLimit.Requests = 0
	if mutate != nil {
		mutate(cfg)
	}

	enq := &fakeEnqueuer{}
	srv := New(cfg, Deps{DB: database, Tasks: enq, BaseCSS: "body { color: red; }"}, zerolog.Nop())
	return srv, enq
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestShellServed(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "PocketVibe") {
		t.Error("shell page missing")
	}
}

func TestGenerateSiteWiring(t *testing.T) {
	srv, enq := newTestServer(t, nil)

	body := strings.NewReader(`{"prompt":"a tiny app","site_id":"pv_0badf00d"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate-site", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(enq.siteJobs) != 1 || enq.siteJobs[0] != "pv_0badf00d" {
		t.Errorf("enqueued = %v", enq.siteJobs)
	}
}

func TestGenerationRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Requests: 2, Window: time.Minute}
	})

	var last int
	for i := 0; i < 3; i++ {
		body := strings.NewReader(fmt.Sprintf(`{"prompt":"app","site_id":"pv_0000000%d"}`, i))
		req := httptest.NewRequest(http.MethodPost, "/api/generate-site", body)
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.2.3:5000"

		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestRateLimitLeavesReadsAlone(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Requests: 1, Window: time.Minute}
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/global-sites", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, w.Code)
		}
	}
}

func TestPushPublicKeyUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Push.VAPIDPublicKey = ""
	})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/push/public-key", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
