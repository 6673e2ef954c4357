// Package generator turns prompts into deployable single-page apps.
package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/config"
	"github.com/pocketvibe/pocketvibe/internal/llm"
	"github.com/pocketvibe/pocketvibe/internal/metrics"
)

// Engine drives site and stylesheet generation through an LLM provider.
type Engine struct {
	provider llm.Provider
	cfg      config.GenerationConfig
	model    string
	logger   zerolog.Logger
}

// NewEngine creates a generation engine.
func NewEngine(provider llm.Provider, model string, cfg config.GenerationConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		provider: provider,
		cfg:      cfg,
		model:    model,
		logger:   logger.With().Str("component", "generator").Logger(),
	}
}

// GenerateSite produces a complete HTML document for the given idea, with PWA
// support injected for the site's URL.
func (e *Engine) GenerateSite(ctx context.Context, siteID, prompt string) (string, error) {
	e.logger.Info().Str("site_id", siteID).Int("prompt_len", len(prompt)).Msg("generating site")

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSitePrompt(prompt)},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating site content: %w", err)
	}

	metrics.RecordLLMUsage(resp.InputTokens, resp.OutputTokens)
	e.logger.Info().Str("site_id", siteID).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("site content generated")

	html := StripCodeFence(resp.Content)
	return InjectPWA(html, siteID), nil
}

// GenerateCSS restyles a base stylesheet according to the prompt.
func (e *Engine) GenerateCSS(ctx context.Context, prompt, baseCSS string) (string, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildCSSPrompt(prompt, baseCSS)},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating CSS: %w", err)
	}

	metrics.RecordLLMUsage(resp.InputTokens, resp.OutputTokens)
	return StripCodeFence(resp.Content), nil
}

func buildSitePrompt(idea string) string {
	return sitePromptPreamble + "\n\nHere is the idea your friend needs you to make a reality: \n" + idea
}

func buildCSSPrompt(idea, baseCSS string) string {
	return cssPromptPreamble +
		"\nHere is the idea your friend needs you to make a reality: " + idea +
		"\nAnd here is the code that needs to be modified: " + baseCSS
}

const sitePromptPreamble = `I need you to act as an LEGENDARY webapp builder.
Friends are coming to you for your expertise and knowledge.
You are generous with your gifts, helping all who need you.
You only need reply with complete web code to help your friend's dreams come true.
You need not explain yourself as you are the foremost expert on code.
You simply reply with code. Nothing else. Efficiently helping your friends.
Here are some basic requests from your friends:
- Create a complete, valid HTML document with embedded CSS and JavaScript based on the provided description
- Prioritize CSS-based visuals for design
- Use CSS gradients, shapes, and patterns for visual interest
- Create abstract geometric backgrounds and card layouts with CSS, where appropriate
- Build hero sections and visual hierarchy using CSS styling
- Only use photos when specifically needed for content (portfolio, gallery, product images)
- For icons and simple graphics, use your advanced, embedded base64 SVG data skills or Unicode symbols
- Follow mobile-first responsive design with proper breakpoints
- Design for mobile (320px+) first (avoiding horizontal scrolling)
- Add tablet styles using @media (min-width: 768px)
- Add desktop styles using @media (min-width: 1024px)
- Use relative units (rem, em, %, vw, vh) and fluid layouts
- Ensure content scales smoothly between breakpoints
- Use modern CSS features (flexbox, grid, custom properties) with cross-browser compatibility
- Make layouts flexible and adaptive across all screen sizes while prioritizing mobile experience
You know all of this and more.
Providing HTML, CSS, and JS code only helps your friends deploy faster, build more and get excited!
You are helping the world grow into a beautiful, positive place with each friend you help.
So many people only have mobile devices and you are helping them build without knowing any code.`

const cssPromptPreamble = `I need you to act as an LEGENDARY webapp desiner.
There is code someone wrote that needs to be elevated.
Friends are coming to you for your expertise and knowledge.
You are generous with your gifts, helping all who need you.
You only need reply with complete CSS code to help your friend's dreams come true.
You need not explain yourself as you are the foremost expert on code.
You simply reply with code. Nothing else. Efficiently helping your friends.

Here are some basic requests from your friends:
- Create valid, production-ready CSS
- Use mobile-first responsive design (min-width media queries)
- Employ semantic class naming (BEM methodology preferred)
- Utilize modern CSS (flexbox, grid, custom properties)
- Include appropriate browser fallbacks
- Optimize for performance (efficient selectors, minimal specificity)

Of course, you enjoy helping your friends build and want to make the best version possible.`

var codeFenceRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\n(.+?)\\n```")

// StripCodeFence removes a leading Markdown code fence from model output.
// Text without a fence is returned unchanged.
func StripCodeFence(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// InjectPWA adds manifest, meta tags and service worker registration to a
// generated document. Fragments without a head are wrapped in a full document.
func InjectPWA(html, siteID string) string {
	elements := pwaElements(siteID)
	if idx := strings.Index(strings.ToLower(html), "</head>"); idx >= 0 {
		return html[:idx] + elements + html[idx:]
	}
	return "<!DOCTYPE html><html><head>" + elements + "</head>" + html + "</html>"
}

func pwaElements(siteID string) string {
	return fmt.Sprintf(`
    <link rel="manifest" href="/site/%s/manifest.json">
    <meta name="theme-color" content="#121212"/>
    <meta name="description" content="Made with PocketVibe"/>
    <meta name="mobile-web-app-capable" content="yes">
    <link rel="apple-touch-icon" href="/static/icons/pocketvibe.png" type="image/png">

    <script>
      if ('serviceWorker' in navigator) {
        window.addEventListener('load', () => {
          navigator.serviceWorker.register('/site/%s/sw.js')
            .then(reg => console.log('Service worker registered'))
            .catch(err => console.log('Service worker registration failed', err));
        });
      }
    </script>
`, siteID, siteID)
}

// WrapURL builds a PWA shell that frames an external website so it can be
// installed like a native app.
func WrapURL(siteID, targetURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Appified Website</title>
    <link rel="manifest" href="/site/%s/manifest.json">
    <meta name="theme-color" content="#121212"/>
    <meta name="description" content="Appified website using PocketVibe"/>
    <meta name="mobile-web-app-capable" content="yes">
    <link rel="apple-touch-icon" href="/static/icons/pocketvibe.png" type="image/png">
    <style>
        body, html {
            margin: 0;
            padding: 0;
            width: 100%%;
            height: 100%%;
            overflow: hidden;
        }
        iframe {
            width: 100%%;
            height: 100%%;
            border: none;
        }
    </style>
    <script>
        if ('serviceWorker' in navigator) {
            window.addEventListener('load', () => {
                navigator.serviceWorker.register('/site/%s/sw.js')
                    .then(reg => console.log('Service worker registered'))
                    .catch(err => console.log('Service worker registration failed', err));
            });
        }
    </script>
</head>
<body>
    <iframe src="%s" allow="fullscreen" allowfullscreen></iframe>
</body>
</html>
`, siteID, siteID, targetURL)
}
