package ports

import (
	"context"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
)

// ProductsQuery carries the listing parameters accepted by the upstream
// catalog endpoints.
type ProductsQuery struct {
	Limit  int    // page size; 0 means the configured default
	Skip   int    // offset into the full listing
	Search string // optional free-text query (q parameter)
}

// ProductGateway is the upstream product API. Implemented by the request
// pipeline client.
type ProductGateway interface {
	Products(ctx context.Context, q ProductsQuery) (*domain.ProductPage, error)
	ProductByID(ctx context.Context, id int) (*domain.Product, error)
	ProductsByCategory(ctx context.Context, category string, q ProductsQuery) (*domain.ProductPage, error)
	SearchProducts(ctx context.Context, query string, q ProductsQuery) (*domain.ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
}

// CatalogCache serves the product list through a time-windowed snapshot,
// avoiding redundant upstream calls inside the freshness window.
type CatalogCache interface {
	// FetchProducts returns the cached products when the snapshot is fresh
	// and non-empty, otherwise refetches and replaces the snapshot wholesale.
	FetchProducts(ctx context.Context, q ProductsQuery) ([]domain.Product, error)

	// Snapshot returns the current snapshot including any recorded error.
	Snapshot() domain.CatalogSnapshot

	ClearError()
	Reset(ctx context.Context) error
}
