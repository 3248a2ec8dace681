// ABOUTME: Main entry point for the Highlights API server
// ABOUTME: Wires together storage, brokers, the highlight workspace and the HTTP server

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"highlights-app-api/api"
	"highlights-app-api/api/handlers"
	"highlights-app-api/api/middleware"
	"highlights-app-api/core/highlight"
	"highlights-app-api/core/interfaces"
	"highlights-app-api/core/library"
	"highlights-app-api/core/reader"
	"highlights-app-api/core/workers"
	memorybroker "highlights-app-api/infrastructure/broker/memory"
	redisbroker "highlights-app-api/infrastructure/broker/redis"
	"highlights-app-api/infrastructure/cache/memory"
	rediscache "highlights-app-api/infrastructure/cache/redis"
	sqlitecache "highlights-app-api/infrastructure/cache/sqlite"
	stdhttp "highlights-app-api/infrastructure/http/standard"
	logruslogger "highlights-app-api/infrastructure/logger/logrus"
	memorystore "highlights-app-api/infrastructure/storage/memory"
	sqlitestore "highlights-app-api/infrastructure/storage/sqlite"
	"highlights-app-api/pkg/config"
	"highlights-app-api/pkg/featureflags"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logruslogger.New(logruslogger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting Highlights API", map[string]interface{}{
		"port":         cfg.Server.Port,
		"storage_type": cfg.Storage.Type,
		"broker_type":  cfg.Broker.Type,
		"cache_type":   cfg.Cache.Type,
	})

	var closers []io.Closer

	// One Redis connection serves both the cache and the broker
	var redisClient *redis.Client
	if cfg.Cache.Type == "redis" || cfg.Broker.Type == "redis" {
		redisClient, err = rediscache.Connect(cfg.Cache.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		closers = append(closers, redisClient)
		logger.Info("Connected to Redis", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
		})
	}

	// Create cache
	var cache interfaces.Cache
	switch cfg.Cache.Type {
	case "redis":
		cache = rediscache.NewRedisCacheWithClient(redisClient, cfg.Cache.Redis.KeyPrefix)
	case "sqlite":
		sqliteCache, err := sqlitecache.NewSQLiteCache(cfg.Cache.SQLitePath, logger)
		if err != nil {
			logger.Error("Failed to open SQLite cache, falling back to memory", map[string]interface{}{
				"path":  cfg.Cache.SQLitePath,
				"error": err.Error(),
			})
			cache = newMemoryCache(cfg)
		} else {
			cache = sqliteCache
			closers = append(closers, sqliteCache)
		}
	default:
		cache = newMemoryCache(cfg)
	}

	// Create article store
	var store interfaces.ArticleStore
	switch cfg.Storage.Type {
	case "sqlite":
		sqliteStore, err := sqlitestore.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open article store: %v", err)
		}
		store = sqliteStore
		closers = append(closers, sqliteStore)
	default:
		store = memorystore.NewStore()
	}

	// Create change broker
	var broker interfaces.ChangeBroker
	switch cfg.Broker.Type {
	case "redis":
		broker = redisbroker.NewBroker(redisClient, cfg.Cache.Redis.KeyPrefix, logger)
	default:
		broker = memorybroker.NewBroker()
	}

	flags := featureflags.NewEnvManagerWithDefaults("FEATURE_", featureflags.Defaults)

	httpClient := stdhttp.NewStandardHTTPClient(cfg.Reader.FetchTimeout,
		stdhttp.WithTransport(&middleware.LoggingRoundTripper{
			Transport: http.DefaultTransport,
			Logger:    logger,
		}),
	)

	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
		Store:      store,
		Broker:     broker,
	}

	// Create services
	readerService := reader.NewService(deps, reader.Options{
		FetchTimeout: cfg.Reader.FetchTimeout,
		CacheTTL:     cfg.Reader.CacheTTL,
		CacheEnabled: flags.IsEnabled(context.Background(), featureflags.ReaderCacheEnabled),
	})

	persistWorker := workers.NewPersistWorker(store, broker, logger, workers.WorkerConfig{
		MaxWorkers: cfg.Persist.Workers,
		QueueSize:  cfg.Persist.QueueSize,
	})
	if err := persistWorker.Start(); err != nil {
		log.Fatalf("Failed to start persist worker: %v", err)
	}

	workspace := highlight.NewWorkspace(deps, persistWorker)
	evictCtx, stopEviction := context.WithCancel(context.Background())
	go workspace.RunEviction(evictCtx, time.Minute, cfg.Persist.EditorIdleTimeout)
	libraryService := library.NewService(deps, readerService, workspace)

	// Create API with middleware
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
		Logger:         logger,
		RateLimiter:    limiter,
		Flags:          flags,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create and register handlers
	handlers.NewArticleHandler(libraryService, flags).RegisterRoutes(humaAPI)
	handlers.NewHighlightHandler(libraryService).RegisterRoutes(humaAPI)
	handlers.NewEventsHandler(libraryService, logger).RegisterRoutes(humaAPI)
	handlers.NewReaderHandler(readerService).RegisterRoutes(humaAPI)

	// WriteTimeout stays off so event streams are not cut
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stopEviction()

	// Pending highlight writes drain before the store closes
	if err := persistWorker.Stop(); err != nil {
		logger.Error("Persist worker did not stop cleanly", map[string]interface{}{
			"error": err.Error(),
		})
	}
	workspace.CloseAll()
	limiter.Stop()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("Failed to close resource", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Server stopped", nil)
}

func newMemoryCache(cfg *config.Config) *memory.MemoryCache {
	expiration := time.Duration(cfg.Cache.Memory.DefaultExpiration) * time.Second
	return memory.NewMemoryCache(expiration, 10*time.Minute)
}

func init() {
	fmt.Println(`
    __  ___       __    ___       __    __          ___    ____  ____
   / / / (_)___ _/ /_  / (_)___ _/ /_  / /______   /   |  / __ \/  _/
  / /_/ / / __ '/ __ \/ / / __ '/ __ \/ __/ ___/  / /| | / /_/ // /
 / __  / / /_/ / / / / / / /_/ / / / / /_(__  )  / ___ |/ ____// /
/_/ /_/_/\__, /_/ /_/_/_/\__, /_/ /_/\__/____/  /_/  |_/_/   /___/
        /____/          /____/
	`)
}
