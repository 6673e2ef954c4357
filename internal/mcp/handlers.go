package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pocketvibe/pocketvibe/internal/sites"
)

// handleGenerateSite records a new site and queues its generation.
func (s *Server) handleGenerateSite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}
	if strings.TrimSpace(prompt) == "" {
		return mcp.NewToolResultError("prompt must not be empty"), nil
	}

	siteID := request.GetString("site_id", "")
	if siteID == "" {
		siteID = sites.NewID()
	} else if !sites.ValidSiteID(siteID) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid site_id %q: must be pv_ followed by 8 hex characters", siteID)), nil
	}

	exists, err := s.store.Exists(ctx, siteID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("checking site: %v", err)), nil
	}
	if exists {
		return mcp.NewToolResultError(fmt.Sprintf("site %s already exists", siteID)), nil
	}

	if err := s.store.Create(ctx, sites.Site{ID: siteID, Prompt: prompt}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating site: %v", err)), nil
	}
	if err := s.enq.EnqueueSiteGenerate(ctx, siteID, prompt); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("queueing generation: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Site generation started.\nSite ID: %s\nURL: %s\n\nUse site_status to poll until the status is success.",
		siteID, s.siteURL(siteID),
	)), nil
}

// handleSiteStatus reports the lifecycle state of a site.
func (s *Server) handleSiteStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID, err := request.RequireString("site_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: site_id"), nil
	}

	site, err := s.store.Get(ctx, siteID)
	if err != nil {
		if errors.Is(err, sites.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("site %s not found", siteID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("fetching site: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Site: %s\nStatus: %s\n", site.ID, site.Status)
	if site.Status == sites.StatusSuccess {
		fmt.Fprintf(&sb, "URL: %s\n", s.siteURL(site.ID))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListSites lists published sites, newest first.
func (s *Server) handleListSites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	published, err := s.store.ListPublished(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sites: %v", err)), nil
	}
	if len(published) == 0 {
		return mcp.NewToolResultText("No published sites yet."), nil
	}
	if len(published) > limit {
		published = published[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d site(s):\n", len(published))
	for _, site := range published {
		name := site.AppName
		if name == "" {
			name = sites.DefaultAppName
		}
		fmt.Fprintf(&sb, "\n%s\n  ID: %s\n  URL: %s\n", name, site.ID, s.siteURL(site.ID))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetSiteHTML returns the generated HTML for a site.
func (s *Server) handleGetSiteHTML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID, err := request.RequireString("site_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: site_id"), nil
	}

	site, err := s.store.Get(ctx, siteID)
	if err != nil {
		if errors.Is(err, sites.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("site %s not found", siteID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("fetching site: %v", err)), nil
	}
	if site.Content == "" {
		return mcp.NewToolResultError(fmt.Sprintf("site %s has no content yet (status: %s)", siteID, site.Status)), nil
	}

	return mcp.NewToolResultText(site.Content), nil
}

func (s *Server) siteURL(siteID string) string {
	return strings.TrimRight(s.baseURL, "/") + "/site/" + siteID
}
