package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// ProductHandler serves the catalog. The product list goes through the
// time-windowed cache; item, search, and category lookups go straight to the
// upstream.
type ProductHandler struct {
	catalog  ports.CatalogCache
	products ports.ProductGateway
	pageSize int
}

func NewProductHandler(catalog ports.CatalogCache, products ports.ProductGateway, pageSize int) *ProductHandler {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &ProductHandler{catalog: catalog, products: products, pageSize: pageSize}
}

// listParams resolves limit/skip from the query string. A page parameter
// (1-based) takes precedence over skip.
func (h *ProductHandler) listParams(c echo.Context) ports.ProductsQuery {
	q := ports.ProductsQuery{Limit: h.pageSize}

	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	if skip, err := strconv.Atoi(c.QueryParam("skip")); err == nil && skip >= 0 {
		q.Skip = skip
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page >= 1 {
		q.Skip = (page - 1) * q.Limit
	}
	q.Search = c.QueryParam("q")
	return q
}

// List returns the cached product list, refetching when the snapshot is
// stale or empty.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        limit  query  int     false  "Page size"
// @Param        skip   query  int     false  "Offset"
// @Param        page   query  int     false  "1-based page number"
// @Param        q      query  string  false  "Search query"
// @Success      200  {object}  domain.CatalogSnapshot
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	if _, err := h.catalog.FetchProducts(c.Request().Context(), h.listParams(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.catalog.Snapshot())
}

// GetByID returns one product.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id  path  int  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.products.ProductByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Search runs a free-text search, bypassing the cache.
//
// @Summary      Search products
// @Tags         products
// @Produce      json
// @Param        q  query  string  true  "Search query"
// @Success      200  {object}  domain.ProductPage
// @Router       /products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page, err := h.products.SearchProducts(c.Request().Context(), query, h.listParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ByCategory lists products within one category, bypassing the cache.
//
// @Summary      List products by category
// @Tags         products
// @Produce      json
// @Param        category  path  string  true  "Category slug"
// @Success      200  {object}  domain.ProductPage
// @Router       /products/category/{category} [get]
func (h *ProductHandler) ByCategory(c echo.Context) error {
	category := c.Param("category")
	page, err := h.products.ProductsByCategory(c.Request().Context(), category, h.listParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Categories lists the known category slugs.
//
// @Summary      List categories
// @Tags         products
// @Produce      json
// @Success      200  {array}  string
// @Router       /products/categories [get]
func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.products.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}
