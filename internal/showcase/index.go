// Package showcase provides semantic search over the published-site gallery.
package showcase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/embeddings"
	"github.com/pocketvibe/pocketvibe/internal/sites"
)

const (
	collectionName  = "showcase"
	persistFilename = "showcase.gob.gz"
)

// Result is a single gallery search hit.
type Result struct {
	SiteID  string  `json:"id"`
	URL     string  `json:"url"`
	AppName string  `json:"app_name"`
	IconURL string  `json:"icon_url"`
	Score   float32 `json:"score"`
}

// Index holds the vector collection over published sites.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	path       string
	logger     zerolog.Logger

	mu      sync.Mutex
	indexed map[string]bool
}

// NewIndex creates an Index persisted under dataDir, loading any previous
// export from disk.
func NewIndex(embedder embeddings.Embedder, dataDir string, logger zerolog.Logger) (*Index, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)
	path := filepath.Join(dataDir, persistFilename)

	idx := &Index{
		db:        db,
		embedFunc: ef,
		path:      path,
		logger:    logger.With().Str("component", "showcase").Logger(),
		indexed:   make(map[string]bool),
	}

	if _, err := os.Stat(path); err == nil {
		if err := db.ImportFromFile(path, ""); err != nil {
			idx.logger.Warn().Err(err).Msg("failed to load showcase index, rebuilding")
		}
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("creating showcase collection: %w", err)
	}
	idx.collection = col

	return idx, nil
}

// has reports whether a site is already in the collection. The in-memory set
// only covers this process; after an import the collection itself is checked.
func (idx *Index) has(ctx context.Context, id string) bool {
	if idx.indexed[id] {
		return true
	}
	if _, err := idx.collection.GetByID(ctx, id); err == nil {
		idx.indexed[id] = true
		return true
	}
	return false
}

// AddSites folds published sites into the collection, skipping ones already
// indexed. Document text is the prompt plus the app name, which is what
// people search for.
func (idx *Index) AddSites(ctx context.Context, published []sites.Site) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var docs []chromem.Document
	for _, s := range published {
		if idx.has(ctx, s.ID) {
			continue
		}
		text := s.Prompt
		if s.AppName != "" {
			text = s.AppName + "\n" + text
		}
		if text == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      s.ID,
			Content: text,
			Metadata: map[string]string{
				"app_name": s.AppName,
				"icon_url": s.IconURL,
			},
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := idx.collection.AddDocuments(ctx, docs, 1); err != nil {
		return 0, fmt.Errorf("adding sites to showcase index: %w", err)
	}
	for _, d := range docs {
		idx.indexed[d.ID] = true
	}
	return len(docs), nil
}

// Search returns the published sites most similar to the query.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	count := idx.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := idx.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying showcase index: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		appName := h.Metadata["app_name"]
		if appName == "" {
			appName = sites.DefaultAppName
		}
		iconURL := h.Metadata["icon_url"]
		if iconURL == "" {
			iconURL = sites.DefaultIconPath
		}
		results[i] = Result{
			SiteID:  h.ID,
			URL:     "/site/" + h.ID,
			AppName: appName,
			IconURL: iconURL,
			Score:   h.Similarity,
		}
	}
	return results, nil
}

// Persist exports the collection to the data dir.
func (idx *Index) Persist() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.db.ExportToFile(idx.path, true, ""); err != nil {
		return fmt.Errorf("exporting showcase index: %w", err)
	}
	return nil
}

// Count returns the number of indexed sites.
func (idx *Index) Count() int {
	return idx.collection.Count()
}
