package sites

import (
	"fmt"
	"regexp"
)

var (
	manifestLinkRe = regexp.MustCompile(`<link\s+rel="manifest"\s+href="[^"]*">`)
	iconLinkRe     = regexp.MustCompile(`<link\s+rel="icon"\s+href="[^"]*"[^>]*>`)
	appleTouchRe   = regexp.MustCompile(`<link\s+rel="apple-touch-icon"\s+href="[^"]*"[^>]*>`)
)

// RewriteAppLinks repoints the manifest, favicon and apple-touch-icon links in
// stored HTML at a republished site's slug and chosen icon.
func RewriteAppLinks(html, slug, iconURL string) string {
	html = manifestLinkRe.ReplaceAllString(html,
		fmt.Sprintf(`<link rel="manifest" href="/site/%s/manifest.json">`, slug))
	html = iconLinkRe.ReplaceAllString(html,
		fmt.Sprintf(`<link rel="icon" href="%s" type="image/png">`, iconURL))
	html = appleTouchRe.ReplaceAllString(html,
		fmt.Sprintf(`<link rel="apple-touch-icon" href="%s" type="image/png">`, iconURL))
	return html
}
