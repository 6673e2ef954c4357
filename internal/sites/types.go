// Package sites implements the generated-site records and their HTTP surface.
package sites

import "time"

// Status is the lifecycle state of a site generation job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusTimeout    Status = "timeout"

	// StatusNotFound is reported by the status endpoint for unknown IDs.
	// It is never stored.
	StatusNotFound Status = "not_found"
)

// IsValid reports whether s is a storable status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusProcessing, StatusSuccess, StatusError, StatusTimeout:
		return true
	}
	return false
}

// IsTerminal reports whether s is a final state. The worker only ever moves
// processing to one of these, and never downgrades success.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusError, StatusTimeout:
		return true
	}
	return false
}

// Site is a generated single-page app.
type Site struct {
	ID             string    `json:"id"`
	Prompt         string    `json:"prompt,omitempty"`
	Content        string    `json:"-"`
	Status         Status    `json:"status"`
	AppName        string    `json:"app_name,omitempty"`
	IconURL        string    `json:"icon_url,omitempty"`
	SubscriptionID string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultAppName is shown when a site was never given a name.
const DefaultAppName = "Super Cool App"

// DefaultIconPath is the bundled fallback icon.
const DefaultIconPath = "/static/icons/pocketvibe.png"
