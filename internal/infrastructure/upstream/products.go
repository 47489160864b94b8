package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// defaultLimit matches the upstream's default page size.
const defaultLimit = 12

func listQuery(q ports.ProductsQuery) url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("skip", strconv.Itoa(q.Skip))
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	return values
}

// Products lists the catalog. When q.Search is set the dedicated search
// endpoint is used, matching the upstream's routing.
func (c *Client) Products(ctx context.Context, q ports.ProductsQuery) (*domain.ProductPage, error) {
	path := "/products"
	if q.Search != "" {
		path = "/products/search"
	}
	var page domain.ProductPage
	if err := c.do(ctx, http.MethodGet, path, listQuery(q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProductByID fetches a single product.
func (c *Client) ProductByID(ctx context.Context, id int) (*domain.Product, error) {
	var product domain.Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductsByCategory lists products within one category.
func (c *Client) ProductsByCategory(ctx context.Context, category string, q ports.ProductsQuery) (*domain.ProductPage, error) {
	q.Search = ""
	path := "/products/category/" + url.PathEscape(category)
	var page domain.ProductPage
	if err := c.do(ctx, http.MethodGet, path, listQuery(q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchProducts runs a free-text search over the catalog.
func (c *Client) SearchProducts(ctx context.Context, query string, q ports.ProductsQuery) (*domain.ProductPage, error) {
	q.Search = query
	return c.Products(ctx, q)
}

// Categories returns the list of known category slugs.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
