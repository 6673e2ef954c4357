package sites

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// siteIDPattern matches client-minted site IDs: pv_ followed by 8 hex chars.
var siteIDPattern = regexp.MustCompile(`^pv_[a-f0-9]{8}$`)

// ValidSiteID reports whether id is a well-formed client-generated site ID.
func ValidSiteID(id string) bool {
	return siteIDPattern.MatchString(id)
}

// NewID mints a fresh site ID for callers that do not bring their own,
// such as the MCP tools.
func NewID() string {
	var b [4]byte
	rand.Read(b[:])
	return "pv_" + hex.EncodeToString(b[:])
}

var dashRun = regexp.MustCompile(`-+`)

// Slugify converts an app name into a URL-safe slug: lowercase, spaces and
// punctuation collapsed to single dashes. Returns "" if nothing survives.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	lastWasDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			b.WriteRune('-')
			lastWasDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	slug = dashRun.ReplaceAllString(slug, "-")

	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	return slug
}

// ValidAppName reports whether name slugifies to letters, digits and hyphens
// with nothing dropped besides spaces. Mirrors the publish validation: names
// with other punctuation are rejected rather than silently mangled.
func ValidAppName(name string) bool {
	candidate := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	if candidate == "" {
		return false
	}
	stripped := strings.ReplaceAll(candidate, "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// UniqueSlug picks a slug not present in taken, probing base, base1, base2...
func UniqueSlug(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
