// Package waitlist records signups for upcoming features.
package waitlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/db"
)

// Entry is a single waitlist signup.
type Entry struct {
	ID        string
	Contact   string
	Type      string // email or npub
	CreatedAt time.Time
}

// Store persists waitlist entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Add inserts a signup.
func (s *Store) Add(ctx context.Context, contact, contactType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO waitlist_entries (id, contact, type) VALUES (?, ?, ?)",
		uuid.NewString(), contact, contactType)
	if err != nil {
		return fmt.Errorf("inserting waitlist entry: %w", err)
	}
	return nil
}

// Count returns the number of signups.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM waitlist_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting waitlist entries: %w", err)
	}
	return n, nil
}

// ValidateContact checks a contact/type pair. Email needs an '@', npub the
// npub prefix.
func ValidateContact(contact, contactType string) error {
	switch contactType {
	case "email":
		if !strings.Contains(contact, "@") {
			return fmt.Errorf("invalid email format")
		}
	case "npub":
		if !strings.HasPrefix(contact, "npub") {
			return fmt.Errorf("invalid npub format")
		}
	default:
		return fmt.Errorf("invalid contact type")
	}
	return nil
}

// RegisterRoutes mounts the signup endpoint.
func RegisterRoutes(r chi.Router, store *Store, logger zerolog.Logger) {
	r.Post("/api/waitlist", handleJoin(store, logger))
}

func handleJoin(store *Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contact string `json:"contact"`
			Type    string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Contact == "" || req.Type == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Missing required fields"})
			return
		}

		if err := ValidateContact(req.Contact, req.Type); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": capitalize(err.Error())})
			return
		}

		if err := store.Add(r.Context(), req.Contact, req.Type); err != nil {
			logger.Error().Err(err).Msg("failed to store waitlist entry")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to join waitlist"})
			return
		}

		logger.Info().Str("type", req.Type).Msg("new waitlist signup")
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
