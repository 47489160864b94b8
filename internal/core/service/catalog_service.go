package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/api/metrics"
	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// snapshotKey is the durable blob holding {products, lastUpdated}.
const snapshotKey = "products-store"

// DefaultFreshnessWindow is how long a snapshot is served without refetching.
const DefaultFreshnessWindow = 5 * time.Minute

// CatalogService is the time-windowed cache over the upstream product list.
// A fresh, non-empty snapshot is served without a network call; anything
// else triggers a refetch that replaces the snapshot wholesale.
type CatalogService struct {
	mu      sync.Mutex
	gateway ports.ProductGateway
	kv      ports.KV
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger

	products    []domain.Product
	lastUpdated time.Time
	lastError   string
}

var _ ports.CatalogCache = (*CatalogService)(nil)

// CatalogOption customises a CatalogService.
type CatalogOption func(*CatalogService)

// WithClock substitutes the time source. Tests use it to age the cache.
func WithClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

// NewCatalogService builds the cache and hydrates any persisted snapshot.
// ttl <= 0 falls back to DefaultFreshnessWindow.
func NewCatalogService(ctx context.Context, gateway ports.ProductGateway, kv ports.KV, ttl time.Duration, log zerolog.Logger, opts ...CatalogOption) *CatalogService {
	if ttl <= 0 {
		ttl = DefaultFreshnessWindow
	}
	s := &CatalogService{
		gateway: gateway,
		kv:      kv,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

type persistedSnapshot struct {
	Products []domain.Product `json:"products"`
	// LastUpdated is kept as unix milliseconds in the durable blob.
	LastUpdated int64 `json:"lastUpdated"`
}

func (s *CatalogService) load(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, snapshotKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read persisted catalog snapshot")
		return
	}
	if !ok {
		return
	}

	var snap persistedSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt catalog snapshot")
		return
	}
	s.products = snap.Products
	if snap.LastUpdated > 0 {
		s.lastUpdated = time.UnixMilli(snap.LastUpdated)
	}
}

func (s *CatalogService) persist(ctx context.Context) {
	snap := persistedSnapshot{Products: s.products}
	if !s.lastUpdated.IsZero() {
		snap.LastUpdated = s.lastUpdated.UnixMilli()
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode catalog snapshot")
		return
	}
	if err := s.kv.Set(ctx, snapshotKey, string(raw)); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist catalog snapshot")
	}
}

// FetchProducts returns the cached product list when it is non-empty and
// strictly younger than the freshness window. Otherwise it fetches, and on
// success replaces the snapshot wholesale. On failure the product list is
// cleared and the timestamp discarded, so the next call is guaranteed a
// fresh attempt instead of another stale hit.
func (s *CatalogService) FetchProducts(ctx context.Context, q ports.ProductsQuery) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.products) > 0 && !s.lastUpdated.IsZero() && now.Sub(s.lastUpdated) < s.ttl {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return append([]domain.Product(nil), s.products...), nil
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	page, err := s.gateway.Products(ctx, q)
	if err != nil {
		s.products = nil
		s.lastUpdated = time.Time{}
		s.lastError = TranslateCatalogError(err)
		s.persist(ctx)
		s.log.Warn().Err(err).Msg("catalog fetch failed")
		return nil, err
	}

	s.products = page.Products
	s.lastUpdated = now
	s.lastError = ""
	s.persist(ctx)

	return append([]domain.Product(nil), s.products...), nil
}

// Snapshot returns the current cache state, including any recorded error.
func (s *CatalogService) Snapshot() domain.CatalogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CatalogSnapshot{
		Products:    append([]domain.Product(nil), s.products...),
		LastUpdated: s.lastUpdated,
		Error:       s.lastError,
	}
}

// ClearError drops the recorded error without touching the snapshot.
func (s *CatalogService) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

// Reset empties the snapshot and removes the persisted blob.
func (s *CatalogService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.products = nil
	s.lastUpdated = time.Time{}
	s.lastError = ""
	s.mu.Unlock()
	return s.kv.Delete(ctx, snapshotKey)
}

// TranslateCatalogError maps an upstream failure to the user-facing message
// shown on the catalog page. Known categories are detected by status code or
// message substring; anything else passes through unchanged.
func TranslateCatalogError(err error) string {
	msg := err.Error()
	if apiErr, ok := domain.AsAPIError(err); ok {
		switch apiErr.Status {
		case http.StatusNotFound:
			return "Product service is unavailable"
		case http.StatusInternalServerError:
			return "Internal server error"
		}
		msg = apiErr.Message
	}

	switch {
	case strings.Contains(msg, domain.NetworkErrorMessage):
		return "Network error. Check your internet connection"
	case strings.Contains(msg, "404"):
		return "Product service is unavailable"
	case strings.Contains(msg, "500"):
		return "Internal server error"
	default:
		return msg
	}
}
