package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"rainbowrise/internal/adapter/memstore"
	"rainbowrise/internal/adapter/repo"
	"rainbowrise/internal/assistant"
	"rainbowrise/internal/domain"
	"rainbowrise/internal/http/handlers"
	"rainbowrise/internal/http/httpapi"
	"rainbowrise/internal/imagegen"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/infra/geoip"
	"rainbowrise/internal/ledger"
	"rainbowrise/internal/ratelimit"
	"rainbowrise/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  domain.Store
		checks []handlers.HealthCheck
		mem    *memstore.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		store = repo.NewStore(runner)
		checks = append(checks, handlers.HealthCheck{Name: "postgres", Ping: runner.Ping})
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
		mem = memstore.New()
		store = mem.Repositories()
	}

	ledgerSvc := ledger.NewService(store.Ledger, logger)

	if mem != nil && cfg.SeedDemoData {
		record := func(ctx context.Context, in domain.NewDonation) error {
			_, err := ledgerSvc.RecordDonation(ctx, in)
			return err
		}
		if err := memstore.SeedDemo(ctx, store, record, time.Now()); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
		logger.Info().Msg("demo data seeded")
	}

	limiter := newAILimiter(ctx, cfg, logger, &checks)

	objects, staticDir := newObjectStore(ctx, cfg, logger)
	checks = append(checks, handlers.HealthCheck{Name: "storage", Ping: objects.Ping})

	assistantClient := assistant.NewClient(assistant.Options{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.OpenRouterBaseURL,
		Referer: cfg.OpenRouterReferer,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("assistant fallback")
		},
	})
	if !assistantClient.Configured() {
		logger.Warn().Msg("OPENROUTER_API_KEY not set, assistant will return canned replies")
	}
	imageClient := imagegen.NewClient(imagegen.Options{
		APIKey:  cfg.ImageAPIKey,
		Model:   cfg.ImageModel,
		BaseURL: cfg.ImageBaseURL,
		Store:   objects,
	})
	if !imageClient.Configured() {
		logger.Warn().Msg("IMAGE_API_KEY not set, image generation disabled")
	}

	app := &handlers.App{
		Store:      store,
		Ledger:     ledgerSvc,
		Assistant:  assistantClient,
		Images:     imageClient,
		Checks:     checks,
		Logger:     logger,
		TrustProxy: cfg.TrustProxy,
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		app.Geo = resolver
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:      logger,
		JWTSecret:   cfg.JWTSecret,
		AILimiter:   limiter,
		CORSOrigins: cfg.CORSAllowedOrigins,
		TrustProxy:  cfg.TrustProxy,
		StaticDir:   staticDir,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newAILimiter prefers the shared Redis counter and falls back to a
// process-local window map.
func newAILimiter(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, checks *[]handlers.HealthCheck) ratelimit.Limiter {
	client, err := infra.NewRedisClient(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-process rate limiter")
	}
	if client != nil {
		*checks = append(*checks, handlers.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		return ratelimit.NewRedisLimiter(client, ratelimit.AIKeyPrefix, cfg.AssistantFreeMsgs, cfg.AssistantWindow)
	}
	mem := ratelimit.NewMemoryLimiter(cfg.AssistantFreeMsgs, cfg.AssistantWindow)
	go mem.RunSweeper(ctx, cfg.AssistantWindow)
	return mem
}

func newObjectStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (storage.ObjectStore, string) {
	if cfg.StorageDriver == infra.StorageDriverMinio {
		s, err := storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure minio storage")
		}
		return s, ""
	}
	path := cfg.StoragePath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s, err := storage.NewFileStore(path, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure file storage")
	}
	return s, path
}
