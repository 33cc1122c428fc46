package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tilsley/skein/apps/internal/convert"
	"github.com/tilsley/skein/apps/internal/convert/handler"
	"github.com/tilsley/skein/apps/internal/convert/source"
	"github.com/tilsley/skein/apps/internal/convert/store"
	githubplatform "github.com/tilsley/skein/apps/server/internal/platform/github"
	"github.com/tilsley/skein/apps/server/internal/platform/logger"
	"github.com/tilsley/skein/apps/server/internal/platform/telemetry"
	"github.com/tilsley/skein/apps/server/internal/platform/validation"
	"github.com/tilsley/skein/schemas"
)

func main() {
	slog := logger.New()

	// --- Observability ---

	// Default the service name before any OTel init.
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		os.Setenv("OTEL_SERVICE_NAME", "skein-server") //nolint:errcheck
	}

	otelEnabled := os.Getenv("OTEL_ENABLED") == "true"
	ctx := context.Background()
	tel, err := telemetry.New(ctx, otelEnabled)
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Platform: GitHub ---

	gh := githubplatform.NewClient(os.Getenv("GITHUB_TOKEN"), os.Getenv("GITHUB_BASEURL"))

	// --- Platform: artifact cache (optional) ---

	var cache convert.ArtifactCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		ttl := 15 * time.Minute
		if v := os.Getenv("CACHE_TTL"); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				slog.Error("invalid CACHE_TTL", "value", v, "error", err)
				os.Exit(1)
			}
			ttl = parsed
		}
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		cache = store.NewRedisArtifactCache(rdb, ttl)
		slog.Info("artifact cache enabled", "addr", addr, "ttl", ttl)
	}

	// --- Acquisition strategy ---

	policy := convert.DefaultPolicy()
	var newSource func() convert.Source
	switch strategy := os.Getenv("SOURCE_STRATEGY"); strategy {
	case "", "api":
		apiSource := source.NewGitHub(gh, policy)
		newSource = func() convert.Source { return apiSource }
	case "snapshot":
		// A snapshot owns a temp dir per conversion, so build one per request.
		newSource = func() convert.Source { return source.NewSnapshot(gh, policy) }
	default:
		slog.Error("unknown SOURCE_STRATEGY", "value", strategy)
		os.Exit(1)
	}

	// --- Service + HTTP ---

	svc := convert.NewService(cache, slog)

	router := gin.New()

	validator, err := validation.New(schemas.OpenAPISpec)
	if err != nil {
		slog.Error("openapi validation middleware init failed", "error", err)
		os.Exit(1)
	}

	router.Use(gin.Recovery(), otelgin.Middleware("skein-server"), validator)
	handler.RegisterRoutes(router, svc, newSource, slog)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("starting skein", "port", port)
	if err := router.Run(":" + port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
