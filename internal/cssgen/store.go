// Package cssgen implements the stylesheet restyle feature.
package cssgen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketvibe/pocketvibe/internal/db"
)

// ErrNotFound is returned when a generation record does not exist.
var ErrNotFound = errors.New("CSS generation not found")

// Status values for CSS generations. The terminal value is "completed", not
// "success": clients of the original API depend on it.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Generation is a single CSS restyle job.
type Generation struct {
	ID         string
	Prompt     string
	Status     string
	CSSContent string
	Error      string
	CreatedAt  time.Time
}

// Store persists CSS generations.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create records a new generation with status processing.
func (s *Store) Create(ctx context.Context, id, prompt string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO css_generations (id, prompt, status) VALUES (?, ?, ?)",
		id, prompt, StatusProcessing)
	if err != nil {
		return fmt.Errorf("inserting CSS generation: %w", err)
	}
	return nil
}

// Get retrieves a generation by ID.
func (s *Store) Get(ctx context.Context, id string) (*Generation, error) {
	var (
		g                  Generation
		cssContent, errMsg sql.NullString
		createdAt          string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, prompt, status, css_content, error, created_at
		FROM css_generations WHERE id = ?`, id).
		Scan(&g.ID, &g.Prompt, &g.Status, &cssContent, &errMsg, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying CSS generation %s: %w", id, err)
	}

	g.CSSContent = cssContent.String
	g.Error = errMsg.String
	g.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return &g, nil
}

// Complete stores the generated stylesheet and marks the job completed.
func (s *Store) Complete(ctx context.Context, id, css string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE css_generations SET status = ?, css_content = ? WHERE id = ?",
		StatusCompleted, css, id)
	if err != nil {
		return fmt.Errorf("completing CSS generation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fail marks the job failed with an error message.
func (s *Store) Fail(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE css_generations SET status = ?, error = ? WHERE id = ?",
		StatusError, message, id)
	if err != nil {
		return fmt.Errorf("failing CSS generation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
