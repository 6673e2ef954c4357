package sites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketvibe/pocketvibe/internal/db"
)

// ErrNotFound is returned when a site does not exist.
var ErrNotFound = errors.New("site not found")

// Store provides CRUD operations for sites.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new site record.
func (s *Store) Create(ctx context.Context, site Site) error {
	if site.Status == "" {
		site.Status = StatusProcessing
	}
	if !site.Status.IsValid() {
		return fmt.Errorf("invalid status %q", site.Status)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (id, prompt, content, status, app_name, icon_url, subscription_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		site.ID, site.Prompt, site.Content, string(site.Status),
		nullable(site.AppName), nullable(site.IconURL), nullable(site.SubscriptionID),
	)
	if err != nil {
		return fmt.Errorf("inserting site: %w", err)
	}
	return nil
}

// Get retrieves a single site.
func (s *Store) Get(ctx context.Context, id string) (*Site, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, prompt, content, status, app_name, icon_url, subscription_id, created_at, updated_at
		FROM sites WHERE id = ?`, id)

	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying site %s: %w", id, err)
	}
	return site, nil
}

// Exists reports whether a site with the given ID exists.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM sites WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking site %s: %w", id, err)
	}
	return true, nil
}

// UpdateGenerated stores generated content and marks the site successful.
// Sites that already reached success keep their content (no downgrade).
func (s *Store) UpdateGenerated(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sites SET content = ?, status = ?, updated_at = datetime('now')
		WHERE id = ? AND status != ?`,
		content, string(StatusSuccess), id, string(StatusSuccess),
	)
	if err != nil {
		return fmt.Errorf("updating site %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or already successful; distinguish for the caller.
		exists, err := s.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// SetStatus transitions a site to the given status.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid status %q", status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sites SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("setting status for site %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIcon sets the app name and icon URL on an existing site.
func (s *Store) UpdateIcon(ctx context.Context, id, appName, iconURL string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sites SET app_name = ?, icon_url = ?, updated_at = datetime('now') WHERE id = ?`,
		appName, iconURL, id,
	)
	if err != nil {
		return fmt.Errorf("updating icon for site %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublished returns all successful sites, newest first.
func (s *Store) ListPublished(ctx context.Context) ([]Site, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, content, status, app_name, icon_url, subscription_id, created_at, updated_at
		FROM sites WHERE status = ? ORDER BY created_at DESC`,
		string(StatusSuccess),
	)
	if err != nil {
		return nil, fmt.Errorf("querying published sites: %w", err)
	}
	defer rows.Close()

	var result []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		result = append(result, *site)
	}
	return result, rows.Err()
}

// CountByStatus returns the number of sites per status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM sites GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting sites: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

// ListIDsWithPrefix returns all site IDs starting with the given prefix.
// Used for slug uniqueness probing when publishing under a friendly name.
func (s *Store) ListIDsWithPrefix(ctx context.Context, prefix string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM sites WHERE id LIKE ?", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("querying IDs with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning ID: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSite(sc scanner) (*Site, error) {
	var (
		site                    Site
		status                  string
		appName, iconURL, subID sql.NullString
		createdAt, updatedAt    string
	)

	err := sc.Scan(&site.ID, &site.Prompt, &site.Content, &status,
		&appName, &iconURL, &subID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	site.Status = Status(status)
	site.AppName = appName.String
	site.IconURL = iconURL.String
	site.SubscriptionID = subID.String
	site.CreatedAt = parseTime(createdAt)
	site.UpdatedAt = parseTime(updatedAt)
	return &site, nil
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
