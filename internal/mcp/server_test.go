package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pocketvibe/pocketvibe/internal/db"
	"github.com/pocketvibe/pocketvibe/internal/sites"
)

type fakeEnqueuer struct {
	jobs []string
}

func (f *fakeEnqueuer) EnqueueSiteGenerate(_ context.Context, siteID, _ string) error {
	f.jobs = append(f.jobs, siteID)
	return nil
}

func newTestMCP(t *testing.T) (*Server, *sites.Store, *fakeEnqueuer) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := sites.NewStore(database)
	enq := &fakeEnqueuer{}
	return NewServer(store, enq, "https://pocketvibe.app"), store, enq
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is not text: %T", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"generate_site", generateSiteTool, "generate_site"},
		{"site_status", siteStatusTool, "site_status"},
		{"list_sites", listSitesTool, "list_sites"},
		{"get_site_html", getSiteHTMLTool, "get_site_html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleGenerateSite(t *testing.T) {
	srv, store, enq := newTestMCP(t)
	ctx := context.Background()

	t.Run("with explicit id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"prompt":  "a pomodoro timer",
			"site_id": "pv_deadbeef",
		}

		result, err := srv.handleGenerateSite(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textContent(t, result), "https://pocketvibe.app/site/pv_deadbeef") {
			t.Error("result missing site URL")
		}
		if len(enq.jobs) != 1 || enq.jobs[0] != "pv_deadbeef" {
			t.Errorf("enqueued = %v", enq.jobs)
		}

		site, err := store.Get(ctx, "pv_deadbeef")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if site.Status != sites.StatusProcessing {
			t.Errorf("status = %s, want processing", site.Status)
		}
	})

	t.Run("mints id when omitted", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"prompt": "a drum machine"}

		result, err := srv.handleGenerateSite(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textContent(t, result), "Site ID: pv_") {
			t.Error("result missing minted site ID")
		}
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"prompt":  "anything",
			"site_id": "not-a-site",
		}

		result, _ := srv.handleGenerateSite(ctx, req)
		if !result.IsError {
			t.Error("expected error for malformed site_id")
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"prompt":  "again",
			"site_id": "pv_deadbeef",
		}

		result, _ := srv.handleGenerateSite(ctx, req)
		if !result.IsError {
			t.Error("expected error for duplicate site_id")
		}
	})

	t.Run("missing prompt", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, _ := srv.handleGenerateSite(ctx, req)
		if !result.IsError {
			t.Error("expected error for missing prompt")
		}
	})
}

func TestHandleSiteStatus(t *testing.T) {
	srv, store, _ := newTestMCP(t)
	ctx := context.Background()

	store.Create(ctx, sites.Site{ID: "pv_11223344", Prompt: "a quiz"})

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"site_id": "pv_11223344"}

	result, err := srv.handleSiteStatus(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(textContent(t, result), "Status: processing") {
		t.Errorf("result = %q", textContent(t, result))
	}

	t.Run("unknown site", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"site_id": "pv_00000000"}

		result, _ := srv.handleSiteStatus(ctx, req)
		if !result.IsError {
			t.Error("expected error for unknown site")
		}
	})
}

func TestHandleListSites(t *testing.T) {
	srv, store, _ := newTestMCP(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		result, _ := srv.handleListSites(ctx, mcp.CallToolRequest{})
		if !strings.Contains(textContent(t, result), "No published sites") {
			t.Errorf("result = %q", textContent(t, result))
		}
	})

	store.Create(ctx, sites.Site{ID: "pv_aaaa1111", Prompt: "a blog", AppName: "My Blog"})
	store.UpdateGenerated(ctx, "pv_aaaa1111", "<html></html>")

	t.Run("published", func(t *testing.T) {
		result, _ := srv.handleListSites(ctx, mcp.CallToolRequest{})
		text := textContent(t, result)
		if !strings.Contains(text, "My Blog") || !strings.Contains(text, "/site/pv_aaaa1111") {
			t.Errorf("result = %q", text)
		}
	})
}

func TestHandleGetSiteHTML(t *testing.T) {
	srv, store, _ := newTestMCP(t)
	ctx := context.Background()

	store.Create(ctx, sites.Site{ID: "pv_bbbb2222", Prompt: "a page"})

	t.Run("no content yet", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"site_id": "pv_bbbb2222"}

		result, _ := srv.handleGetSiteHTML(ctx, req)
		if !result.IsError {
			t.Error("expected error while still processing")
		}
	})

	store.UpdateGenerated(ctx, "pv_bbbb2222", "<html><body>hi</body></html>")

	t.Run("published", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"site_id": "pv_bbbb2222"}

		result, err := srv.handleGetSiteHTML(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if textContent(t, result) != "<html><body>hi</body></html>" {
			t.Errorf("content = %q", textContent(t, result))
		}
	})
}
