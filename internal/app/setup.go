// Package app contains the application setup for the products service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopkit/products-api/internal/config"
	"github.com/shopkit/products-api/internal/service"
	"github.com/shopkit/products-api/internal/store"
	"github.com/shopkit/products-api/internal/transport/rest"
	"github.com/shopkit/products-api/pkg/server"
	"github.com/shopkit/products-api/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Metrics        *web.HTTPMetrics
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

func SetupDependencies(logger *slog.Logger) *Dependencies {
	productStore := store.NewMemoryStore()
	pService := service.NewService(productStore)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Dependencies{
		ProductService: pService,
		Store:          productStore,
		Metrics:        web.NewHTTPMetrics(registry),
		Registry:       registry,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP router and routes for the products service.
// Used by handler-level tests to set up the full middleware chain.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	mux.Use(deps.Metrics.Middleware)

	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux, web.APIKeyAuth(cfg.Auth.APIKeys, deps.Logger))

	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	return mux
}

// SetupHttpServer creates and configures an HTTP server for the products service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SeedProducts inserts the sample catalog. Ids are fixed so that the sample
// data is addressable in documentation and smoke tests.
func SeedProducts(ctx context.Context, s store.ProductStore) error {
	now := time.Now().UTC()
	samples := []store.Product{
		{
			ID:          "1",
			Name:        "Laptop",
			Description: "High-performance laptop for developers",
			Price:       1299.99,
			Category:    "Electronics",
			InStock:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "2",
			Name:        "Coffee Mug",
			Description: "Ceramic coffee mug with handle",
			Price:       12.99,
			Category:    "Kitchen",
			InStock:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "3",
			Name:        "Desk Lamp",
			Description: "LED desk lamp with adjustable brightness",
			Price:       34.99,
			Category:    "Home",
			InStock:     false,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, p := range samples {
		if err := s.Insert(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return nil
}
