package push

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestUpsertCreatesAndUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Upsert(ctx, "https://push.example/ep1", "auth1", "p256dh1", "ua")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Same endpoint keeps the same ID and refreshes the keys.
	id2, err := store.Upsert(ctx, "https://push.example/ep1", "auth2", "p256dh2", "ua2")
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert minted a new ID: %s != %s", id1, id2)
	}

	sub, err := store.GetActive(ctx, id1)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if sub.Auth != "auth2" || sub.P256dh != "p256dh2" {
		t.Errorf("keys not refreshed: %+v", sub)
	}
}

func TestUpsertReactivates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Upsert(ctx, "https://push.example/ep", "a", "p", "ua")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Deactivate(ctx, id); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := store.GetActive(ctx, id); err == nil {
		t.Fatal("expected inactive subscription to be invisible")
	}

	if _, err := store.Upsert(ctx, "https://push.example/ep", "a", "p", "ua"); err != nil {
		t.Fatalf("Upsert after deactivate: %v", err)
	}
	if _, err := store.GetActive(ctx, id); err != nil {
		t.Errorf("expected resubscription to reactivate: %v", err)
	}
}

func TestUpsertRejectsMissingKeys(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Upsert(context.Background(), "https://push.example/ep", "", "p", "ua"); err == nil {
		t.Error("expected error for missing auth key")
	}
}

func TestSubscribeRoute(t *testing.T) {
	store := newTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, "test-public-key", zerolog.Nop())

	body := map[string]any{
		"subscription": map[string]any{
			"endpoint": "https://push.example/route-ep",
			"keys":     map[string]string{"auth": "a", "p256dh": "p"},
		},
	}
	raw, _ := json.Marshal(body)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewReader(raw)))
	if w.Code != http.StatusOK {
		t.Fatalf("subscribe status = %d, body %s", w.Code, w.Body.String())
	}

	// Unsubscribe flips it inactive.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/unsubscribe", bytes.NewReader(raw)))
	if w.Code != http.StatusOK {
		t.Fatalf("unsubscribe status = %d", w.Code)
	}
}

func TestSubscribeRouteRejectsBadPayload(t *testing.T) {
	store := newTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, "pk", zerolog.Nop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewReader([]byte(`{}`))))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPublicKeyRoute(t *testing.T) {
	store := newTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, "BFakePublicKey", zerolog.Nop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/push/public-key", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["public_key"] != "BFakePublicKey" {
		t.Errorf("public_key = %q", resp["public_key"])
	}
}

// browserKeys builds a valid client keypair so the payload encryption in the
// webpush library succeeds against a local test endpoint.
func browserKeys(t *testing.T) (auth, p256dh string) {
	t.Helper()

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating client key: %v", err)
	}
	authBytes := make([]byte, 16)
	rand.Read(authBytes)

	return base64.RawURLEncoding.EncodeToString(authBytes),
		base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes())
}

func newTestSender(t *testing.T, store *Store) *Sender {
	t.Helper()

	// Any valid VAPID pair works against a local endpoint.
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating VAPID key: %v", err)
	}

	sender, err := NewSender(config.PushConfig{
		VAPIDPublicKey:  base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		VAPIDPrivateKey: base64.RawURLEncoding.EncodeToString(priv.Bytes()),
		Mailto:          "mailto:test@example.com",
	}, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	return sender
}

func TestSendDeactivatesGoneSubscription(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	auth, p256dh := browserKeys(t)
	id, err := store.Upsert(ctx, srv.URL, auth, p256dh, "ua")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	sender := newTestSender(t, store)
	sub, err := store.GetActive(ctx, id)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}

	if err := sender.Send(ctx, sub, Notification{Title: TitleComplete, Body: "ready"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, err := store.GetActive(ctx, id); err == nil {
		t.Error("expected 410 to deactivate the subscription")
	}
}

func TestSendDeliversPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var gotBody int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = n
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	auth, p256dh := browserKeys(t)
	id, err := store.Upsert(ctx, srv.URL, auth, p256dh, "ua")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	sub, err := store.GetActive(ctx, id)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}

	sender := newTestSender(t, store)
	if err := sender.Send(ctx, sub, Notification{Title: TitleComplete, Body: "ready", URL: "/site/pv_12345678"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotBody == 0 {
		t.Error("push endpoint received no encrypted payload")
	}
}
