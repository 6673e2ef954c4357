// Package contact stores messages from the contact form.
package contact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/db"
	"github.com/pocketvibe/pocketvibe/internal/waitlist"
)

// Message is a stored contact form submission.
type Message struct {
	ID        string
	Contact   string
	Type      string
	Message   string
	CreatedAt time.Time
}

// Store persists contact messages. Free text passes through a strict HTML
// sanitizer before storage.
type Store struct {
	db        *db.DB
	sanitizer *bluemonday.Policy
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{
		db:        database,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Add inserts a message. Contact and contactType may be empty for anonymous
// submissions.
func (s *Store) Add(ctx context.Context, contact, contactType, message string) error {
	clean := s.sanitizer.Sanitize(message)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contact_messages (id, contact, type, message) VALUES (?, ?, ?, ?)",
		uuid.NewString(), nullable(contact), nullable(contactType), clean)
	if err != nil {
		return fmt.Errorf("inserting contact message: %w", err)
	}
	return nil
}

// Get retrieves a message by ID.
func (s *Store) Get(ctx context.Context, id string) (*Message, error) {
	var (
		m              Message
		contact, ctype sql.NullString
		createdAt      string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, contact, type, message, created_at
		FROM contact_messages WHERE id = ?`, id).
		Scan(&m.ID, &contact, &ctype, &m.Message, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("querying contact message %s: %w", id, err)
	}

	m.Contact = contact.String
	m.Type = ctype.String
	m.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return &m, nil
}

// List returns all messages, newest first.
func (s *Store) List(ctx context.Context) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contact, type, message, created_at
		FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying contact messages: %w", err)
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		var (
			m              Message
			contact, ctype sql.NullString
			createdAt      string
		)
		if err := rows.Scan(&m.ID, &contact, &ctype, &m.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		m.Contact = contact.String
		m.Type = ctype.String
		m.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		result = append(result, m)
	}
	return result, rows.Err()
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// RegisterRoutes mounts the contact form endpoint.
func RegisterRoutes(r chi.Router, store *Store, logger zerolog.Logger) {
	r.Post("/api/contact", handleSubmit(store, logger))
}

func handleSubmit(store *Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contact string `json:"contact"`
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Message is required"})
			return
		}

		contact := strings.TrimSpace(req.Contact)
		contactType := req.Type
		if contact != "" {
			if contactType == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Contact type is required when contact is provided"})
				return
			}
			if err := waitlist.ValidateContact(contact, contactType); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": capitalize(err.Error())})
				return
			}
		} else {
			contact, contactType = "", ""
		}

		if err := store.Add(r.Context(), contact, contactType, req.Message); err != nil {
			logger.Error().Err(err).Msg("failed to store contact message")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to submit message"})
			return
		}

		logger.Info().Str("type", contactType).Msg("new contact message")
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
