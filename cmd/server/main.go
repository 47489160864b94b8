// Command server runs the storefront session and catalog service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dencheny123/TestWork900/internal/api"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
	"github.com/Dencheny123/TestWork900/internal/core/service"
	"github.com/Dencheny123/TestWork900/internal/core/state"
	"github.com/Dencheny123/TestWork900/internal/infrastructure/config"
	redisdb "github.com/Dencheny123/TestWork900/internal/infrastructure/db/redis"
	"github.com/Dencheny123/TestWork900/internal/infrastructure/storage"
	"github.com/Dencheny123/TestWork900/internal/infrastructure/upstream"
	"github.com/Dencheny123/TestWork900/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// @title        Storefront API
// @version      1.0
// @description  Session and catalog service for the DummyJSON storefront.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Durable store: Redis, with an in-memory fallback so the demo
	// still runs without one (tokens then live only for the process).
	var (
		kv  ports.KV
		rdb *goredis.Client
	)
	client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, falling back to in-memory store")
		kv = storage.NewMemoryKV()
	} else {
		rdb = client
		kv = redisdb.NewStore(client)
		defer func() { _ = client.Close() }()
	}

	// --- Core wiring ---
	creds := storage.NewCredentialStore(kv)
	if err := creds.Initialize(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to hydrate tokens from durable storage")
	}

	apiClient := upstream.New(
		cfg.Upstream.BaseURL,
		creds,
		cfg.Upstream.TokenTTLMins,
		log,
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		upstream.WithAuthLostHook(func(context.Context) {
			log.Info().Msg("session lost, login required")
		}),
	)

	authService := service.NewSessionService(apiClient, creds, log)
	container := state.NewContainer(ctx, authService, kv, log)
	catalog := service.NewCatalogService(ctx, apiClient, kv, cfg.Catalog.TTL, log)

	warmer := service.NewCatalogWarmer(catalog, cfg.Catalog.WarmInterval, ports.ProductsQuery{Limit: cfg.Catalog.PageSize}, log)
	warmer.Start(ctx)

	e := api.NewRouter(api.RouterConfig{
		State:    container,
		Auth:     authService,
		Catalog:  catalog,
		Products: apiClient,
		Redis:    rdb,
		PageSize: cfg.Catalog.PageSize,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("storefront service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("storefront service stopped")
}
