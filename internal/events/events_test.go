package events

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/cache"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublishRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()
	// Wait for the subscription before publishing.
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	pub := NewPublisher(client)
	if err := pub.Publish(ctx, Event{SiteID: "pv_12345678", Status: "success"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			t.Fatalf("unmarshaling: %v", err)
		}
		if e.SiteID != "pv_12345678" || e.Status != "success" {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestHubForwardsToWatchers(t *testing.T) {
	client := newTestRedis(t)
	respCache := cache.NewMemoryCache(0)
	hub := NewHub(client, respCache, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := chi.NewRouter()
	hub.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/site-events/pv_deadbeef"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Give the hub subscription and the watcher registration a moment.
	time.Sleep(100 * time.Millisecond)

	pub := NewPublisher(client)
	if err := pub.Publish(ctx, Event{SiteID: "pv_deadbeef", Status: "success"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading websocket message: %v", err)
	}

	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		t.Fatalf("unmarshaling: %v", err)
	}
	if e.Status != "success" {
		t.Errorf("status = %q", e.Status)
	}
}

func TestHubInvalidatesCacheOnTerminalStatus(t *testing.T) {
	client := newTestRedis(t)
	respCache := cache.NewMemoryCache(0)
	hub := NewHub(client, respCache, zerolog.Nop())

	respCache.Set("resp:/api/site-status/pv_00c0ffee", []byte("stale"), time.Minute)

	hub.dispatch(Event{SiteID: "pv_00c0ffee", Status: "success"})

	if _, ok := respCache.Get("resp:/api/site-status/pv_00c0ffee"); ok {
		t.Error("terminal event did not invalidate cached status")
	}
}

func TestHubIgnoresNonTerminalForCache(t *testing.T) {
	client := newTestRedis(t)
	respCache := cache.NewMemoryCache(0)
	hub := NewHub(client, respCache, zerolog.Nop())

	respCache.Set("resp:/api/site-status/pv_00c0ffee", []byte("fresh"), time.Minute)

	hub.dispatch(Event{SiteID: "pv_00c0ffee", Status: "processing"})

	if _, ok := respCache.Get("resp:/api/site-status/pv_00c0ffee"); !ok {
		t.Error("non-terminal event should leave cache intact")
	}
}
