// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as storage, change notification, caching, HTTP communication, and logging.
//
// The infrastructure package is organized by technical concern:
//
// - storage/memory: In-memory article store
// - storage/sqlite: SQLite article store
// - storage/storetest: Shared conformance tests for article stores
// - broker/memory: In-process change broker
// - broker/redis: Redis pub/sub change broker
// - cache/memory: In-memory cache on patrickmn/go-cache
// - cache/redis: Redis-based cache implementation
// - cache/sqlite: SQLite-backed cache
// - http/standard: Standard library HTTP client with retry logic
// - logger/logrus: Structured logger on logrus with rotating file output
//
// # Article Stores
//
//	store, err := sqlite.NewStore("highlights.db")
//	err = store.Create(ctx, article)
//	err = store.UpdateContent(ctx, userID, id, content, records)
//
// # Change Brokers
//
//	broker := redis.NewBroker(client, "highlights:", logger)
//	changes, unsubscribe, err := broker.Subscribe(ctx, userID)
//	defer unsubscribe()
//
// # HTTP Client
//
// The HTTP client retries transient failures with exponential backoff:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second)
//	resp, err := client.Get(ctx, "https://example.com")
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger, err := logrus.New(logrus.Options{Level: "info", Format: "json"})
//	logger.Info("Highlight created", map[string]interface{}{
//	    "article_id": "a1",
//	})
//
package infrastructure
