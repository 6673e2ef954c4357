package sites

import "fmt"

// Manifest is the per-site web app manifest served at /site/{id}/manifest.json.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

// ManifestIcon is a single icon entry in a web app manifest.
type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// BuildManifest assembles the manifest for a site, falling back to the default
// app name and bundled icon. short_name is capped at 14 characters per the
// installability guidelines.
func BuildManifest(site *Site) Manifest {
	name := site.AppName
	if name == "" {
		name = DefaultAppName
	}
	shortName := name
	if len(shortName) > 14 {
		shortName = shortName[:14]
	}

	icon := site.IconURL
	if icon == "" {
		icon = DefaultIconPath
	}

	return Manifest{
		Name:            name,
		ShortName:       shortName,
		Description:     "Created with PocketVibe",
		StartURL:        "/site/" + site.ID,
		Display:         "standalone",
		BackgroundColor: "#121212",
		ThemeColor:      "#121212",
		Icons: []ManifestIcon{
			{Src: icon, Sizes: "512x512", Type: "image/png"},
		},
	}
}

// ServiceWorkerJS renders the per-site service worker. Cache-first for the
// site URL so an installed app keeps working offline.
func ServiceWorkerJS(siteID string) string {
	return fmt.Sprintf(serviceWorkerTemplate, siteID, siteID)
}

const serviceWorkerTemplate = `const CACHE_NAME = 'pocketvibe-site-%s-v1';
const SITE_URL = '/site/%s';

self.addEventListener('install', event => {
    event.waitUntil(
        caches.open(CACHE_NAME).then(cache => {
            return fetch(SITE_URL).then(response => {
                if (!response || response.status !== 200) {
                    throw new Error('Failed to cache site content');
                }
                return cache.put(SITE_URL, response);
            });
        })
    );
    self.skipWaiting();
});

self.addEventListener('activate', event => {
    event.waitUntil(
        Promise.all([
            caches.keys().then(cacheNames => {
                return Promise.all(
                    cacheNames
                        .filter(cacheName => cacheName !== CACHE_NAME)
                        .map(cacheName => caches.delete(cacheName))
                );
            }),
            clients.claim()
        ])
    );
});

self.addEventListener('fetch', event => {
    if (event.request.method !== 'GET') return;

    if (event.request.mode === 'navigate') {
        event.respondWith(
            fetch(event.request)
                .then(response => {
                    const responseToCache = response.clone();
                    caches.open(CACHE_NAME).then(cache => {
                        cache.put(event.request, responseToCache);
                    });
                    return response;
                })
                .catch(() => caches.match(SITE_URL))
        );
        return;
    }

    event.respondWith(
        caches.match(event.request).then(cachedResponse => {
            if (cachedResponse) {
                return cachedResponse;
            }
            return fetch(event.request)
                .then(response => {
                    if (!response || response.status !== 200) {
                        return response;
                    }
                    const responseToCache = response.clone();
                    caches.open(CACHE_NAME).then(cache => {
                        cache.put(event.request, responseToCache);
                    });
                    return response;
                })
                .catch(() => caches.match(SITE_URL));
        })
    );
});
`
