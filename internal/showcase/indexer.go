package showcase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pocketvibe/pocketvibe/internal/sites"
)

// Indexer periodically folds newly published sites into the search index.
type Indexer struct {
	index    *Index
	store    *sites.Store
	interval time.Duration
	logger   zerolog.Logger
}

// NewIndexer creates an Indexer scanning at the given interval.
func NewIndexer(index *Index, store *sites.Store, interval time.Duration, logger zerolog.Logger) *Indexer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Indexer{
		index:    index,
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "showcase-indexer").Logger(),
	}
}

// Run scans until ctx is cancelled, persisting after each batch of additions.
func (ix *Indexer) Run(ctx context.Context) {
	ix.scan(ctx)

	ticker := time.NewTicker(ix.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ix.scan(ctx)
		}
	}
}

func (ix *Indexer) scan(ctx context.Context) {
	published, err := ix.store.ListPublished(ctx)
	if err != nil {
		ix.logger.Error().Err(err).Msg("failed to list published sites")
		return
	}

	added, err := ix.index.AddSites(ctx, published)
	if err != nil {
		ix.logger.Error().Err(err).Msg("failed to index published sites")
		return
	}
	if added == 0 {
		return
	}

	ix.logger.Info().Int("added", added).Int("total", ix.index.Count()).Msg("showcase index updated")
	if err := ix.index.Persist(); err != nil {
		ix.logger.Error().Err(err).Msg("failed to persist showcase index")
	}
}
