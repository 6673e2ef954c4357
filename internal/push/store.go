// Package push manages Web Push subscriptions and notification delivery.
package push

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pocketvibe/pocketvibe/internal/db"
)

// ErrNotFound is returned when a subscription does not exist.
var ErrNotFound = errors.New("subscription not found")

// Subscription is a stored Web Push subscription.
type Subscription struct {
	ID        string
	Endpoint  string
	Auth      string
	P256dh    string
	UserAgent string
	IsActive  bool
	CreatedAt time.Time
	LastUsed  time.Time
}

// Store persists push subscriptions.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert stores a subscription keyed by endpoint and returns its ID. An
// existing endpoint gets fresh keys, is reactivated, and its last_used bumped.
func (s *Store) Upsert(ctx context.Context, endpoint, auth, p256dh, userAgent string) (string, error) {
	if endpoint == "" || auth == "" || p256dh == "" {
		return "", fmt.Errorf("endpoint, auth and p256dh are required")
	}

	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM push_subscriptions WHERE endpoint = ?", endpoint).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO push_subscriptions (id, endpoint, auth, p256dh, user_agent)
			VALUES (?, ?, ?, ?, ?)`,
			id, endpoint, auth, p256dh, userAgent)
		if err != nil {
			return "", fmt.Errorf("inserting subscription: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("querying subscription: %w", err)
	default:
		_, err = s.db.ExecContext(ctx, `
			UPDATE push_subscriptions
			SET auth = ?, p256dh = ?, user_agent = ?, is_active = 'active', last_used = datetime('now')
			WHERE id = ?`,
			auth, p256dh, userAgent, id)
		if err != nil {
			return "", fmt.Errorf("updating subscription: %w", err)
		}
	}
	return id, nil
}

// GetActive returns the subscription with the given ID if it is active.
func (s *Store) GetActive(ctx context.Context, id string) (*Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, endpoint, auth, p256dh, user_agent, is_active, created_at, last_used
		FROM push_subscriptions WHERE id = ? AND is_active = 'active'`, id)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying subscription %s: %w", id, err)
	}
	return sub, nil
}

// Deactivate marks a subscription inactive by ID.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE push_subscriptions SET is_active = 'inactive' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivating subscription %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateByEndpoint marks a subscription inactive by endpoint.
func (s *Store) DeactivateByEndpoint(ctx context.Context, endpoint string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE push_subscriptions SET is_active = 'inactive' WHERE endpoint = ?", endpoint)
	if err != nil {
		return fmt.Errorf("deactivating subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(sc scanner) (*Subscription, error) {
	var (
		sub                 Subscription
		userAgent           sql.NullString
		isActive            string
		createdAt, lastUsed string
	)

	err := sc.Scan(&sub.ID, &sub.Endpoint, &sub.Auth, &sub.P256dh,
		&userAgent, &isActive, &createdAt, &lastUsed)
	if err != nil {
		return nil, err
	}

	sub.UserAgent = userAgent.String
	sub.IsActive = isActive == "active"
	sub.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	sub.LastUsed, _ = time.Parse(time.DateTime, lastUsed)
	return &sub, nil
}
