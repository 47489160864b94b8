package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// CatalogWarmer re-fetches the product snapshot on a fixed interval so page
// loads rarely pay the upstream round trip. It is optional and disabled by
// default; the cache stays correct without it.
type CatalogWarmer struct {
	catalog  ports.CatalogCache
	interval time.Duration
	query    ports.ProductsQuery
	log      zerolog.Logger
}

// NewCatalogWarmer creates a warmer issuing the given listing query.
func NewCatalogWarmer(catalog ports.CatalogCache, interval time.Duration, query ports.ProductsQuery, log zerolog.Logger) *CatalogWarmer {
	return &CatalogWarmer{catalog: catalog, interval: interval, query: query, log: log}
}

// Start launches the warming goroutine. It stops when ctx is cancelled.
func (w *CatalogWarmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	go w.run(ctx)
}

func (w *CatalogWarmer) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.catalog.FetchProducts(ctx, w.query); err != nil {
				w.log.Warn().Err(err).Msg("catalog warm-up fetch failed")
			}
		}
	}
}
