package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/llm"
)

type fakeProvider struct {
	response string
	err      error
	lastReq  llm.CompletionRequest
}

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.response, InputTokens: 10, OutputTokens: 100}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "html fence",
			input: "```html\n<html></html>\n```",
			want:  "<html></html>",
		},
		{
			name:  "bare fence",
			input: "```\nbody { color: red; }\n```",
			want:  "body { color: red; }",
		},
		{
			name:  "no fence",
			input: "<html></html>",
			want:  "<html></html>",
		},
		{
			name:  "multiline content",
			input: "```css\n.a {}\n.b {}\n```",
			want:  ".a {}\n.b {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjectPWAIntoDocument(t *testing.T) {
	html := "<html><head><title>x</title></head><body></body></html>"
	out := InjectPWA(html, "pv_deadbeef")

	if !strings.Contains(out, `href="/site/pv_deadbeef/manifest.json"`) {
		t.Error("missing manifest link")
	}
	if !strings.Contains(out, `content="#121212"`) {
		t.Error("missing theme color")
	}
	if !strings.Contains(out, "/site/pv_deadbeef/sw.js") {
		t.Error("missing service worker registration")
	}
	if !strings.Contains(out, "<title>x</title>") {
		t.Error("original head content lost")
	}
	if strings.Count(out, "</head>") != 1 {
		t.Error("head closed more than once")
	}
}

func TestInjectPWAWrapsFragment(t *testing.T) {
	out := InjectPWA("<h1>hello</h1>", "pv_cafebabe")

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("fragment not wrapped in a document")
	}
	if !strings.Contains(out, "<h1>hello</h1>") {
		t.Error("fragment content lost")
	}
	if !strings.Contains(out, "/site/pv_cafebabe/manifest.json") {
		t.Error("missing manifest link")
	}
}

func TestGenerateSiteStripsAndInjects(t *testing.T) {
	provider := &fakeProvider{response: "```html\n<html><head></head><body>app</body></html>\n```"}
	engine := NewEngine(provider, "test-model", config.GenerationConfig{MaxTokens: 4096, Temperature: 0.7}, zerolog.Nop())

	out, err := engine.GenerateSite(context.Background(), "pv_12345678", "a todo list")
	if err != nil {
		t.Fatalf("GenerateSite: %v", err)
	}

	if strings.Contains(out, "```") {
		t.Error("code fence not stripped")
	}
	if !strings.Contains(out, "/site/pv_12345678/manifest.json") {
		t.Error("PWA support not injected")
	}
	if !strings.Contains(provider.lastReq.Messages[0].Content, "a todo list") {
		t.Error("user idea missing from prompt")
	}
	if provider.lastReq.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", provider.lastReq.MaxTokens)
	}
}

func TestGenerateCSS(t *testing.T) {
	provider := &fakeProvider{response: "```css\nbody { color: blue; }\n```"}
	engine := NewEngine(provider, "test-model", config.GenerationConfig{}, zerolog.Nop())

	out, err := engine.GenerateCSS(context.Background(), "make it blue", "body { color: red; }")
	if err != nil {
		t.Fatalf("GenerateCSS: %v", err)
	}

	if out != "body { color: blue; }" {
		t.Errorf("GenerateCSS = %q", out)
	}
	if !strings.Contains(provider.lastReq.Messages[0].Content, "body { color: red; }") {
		t.Error("base stylesheet missing from prompt")
	}
}

func TestWrapURL(t *testing.T) {
	out := WrapURL("abcd1234", "https://example.com")

	if !strings.Contains(out, `<iframe src="https://example.com"`) {
		t.Error("missing iframe")
	}
	if !strings.Contains(out, "/site/abcd1234/manifest.json") {
		t.Error("missing manifest link")
	}
	if !strings.Contains(out, "/site/abcd1234/sw.js") {
		t.Error("missing service worker registration")
	}
}
