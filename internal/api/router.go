package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/Dencheny123/TestWork900/docs"
	"github.com/Dencheny123/TestWork900/internal/api/handler"
	"github.com/Dencheny123/TestWork900/internal/api/middleware"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
	"github.com/Dencheny123/TestWork900/internal/core/state"
)

// RouterConfig carries the wired components the HTTP surface is built from.
type RouterConfig struct {
	State    *state.Container
	Auth     ports.AuthService
	Catalog  ports.CatalogCache
	Products ports.ProductGateway
	Redis    *redis.Client // nil when running on the in-memory store
	PageSize int
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("storefront"))
	e.Use(middleware.Session(cfg.Auth, cfg.Log))
	e.Use(middleware.LoginRedirect())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.State, cfg.Auth)
	productHandler := handler.NewProductHandler(cfg.Catalog, cfg.Products, cfg.PageSize)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.Redis, cfg.Products)

	// --- Entry points ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"service": "storefront", "catalog": "/products"})
	})
	e.GET("/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"action": "POST /auth/login"})
	})

	// --- Session routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/check", authHandler.Check)
	e.GET("/auth/me", authHandler.Me)
	e.GET("/auth/session", authHandler.Session)
	e.DELETE("/auth/error", authHandler.ClearError)

	// --- Catalog routes ---
	e.GET("/products", productHandler.List)
	e.GET("/products/search", productHandler.Search)
	e.GET("/products/categories", productHandler.Categories)
	e.GET("/products/category/:category", productHandler.ByCategory)
	e.GET("/products/:id", productHandler.GetByID)

	// --- Operational endpoints ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
