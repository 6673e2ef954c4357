// Package web serves the embedded PWA shell and its static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/chi/v5"
)

//go:embed static
var staticFS embed.FS

// cachePolicies maps asset glob patterns to Cache-Control values. First match
// wins. Icons never change once shipped; the shell must pick up new deploys.
var cachePolicies = []struct {
	pattern string
	value   string
}{
	{"icons/**", "public, max-age=31536000, immutable"},
	{"*.css", "public, max-age=86400"},
	{"*.js", "no-cache"},
	{"*.html", "no-cache"},
	{"*.json", "no-cache"},
}

func cacheControl(path string) string {
	for _, p := range cachePolicies {
		if ok, _ := doublestar.Match(p.pattern, path); ok {
			return p.value
		}
	}
	return "no-cache"
}

// BaseCSS returns the shell stylesheet, the starting point for CSS restyles.
func BaseCSS() (string, error) {
	raw, err := staticFS.ReadFile("static/style.css")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// RegisterRoutes mounts the shell at the root. The manifest and the shell's
// service worker stay at the paths browsers expect for installability.
func RegisterRoutes(r chi.Router) {
	assets, _ := fs.Sub(staticFS, "static")

	r.Get("/", serveAsset(assets, "index.html"))
	r.Get("/manifest.json", serveAsset(assets, "manifest.json"))
	r.Get("/service-worker.js", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Service-Worker-Allowed", "/")
		serveAsset(assets, "service-worker.js")(w, req)
	})

	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		path := strings.TrimPrefix(req.URL.Path, "/static/")
		serveAsset(assets, path)(w, req)
	})
}

func serveAsset(assets fs.FS, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := assets.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		w.Header().Set("Cache-Control", cacheControl(path))
		if rs, ok := f.(readSeeker); ok {
			http.ServeContent(w, r, path, time.Time{}, rs)
			return
		}
		http.NotFound(w, r)
	}
}

type readSeeker interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}
