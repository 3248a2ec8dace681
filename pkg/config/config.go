// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for server, storage, broker, cache, logging and workers

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Storage contains article store configuration
	Storage StorageConfig

	// Broker contains change notification configuration
	Broker BrokerConfig

	// Cache contains cache configuration
	Cache CacheConfig

	// Log contains logging configuration
	Log LogConfig

	// Persist contains background write configuration
	Persist PersistConfig

	// Reader contains article extraction configuration
	Reader ReaderConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RateLimit is the sustained number of requests per second per client
	RateLimit float64

	// RateBurst is the number of requests a client may burst
	RateBurst int

	// AllowedOrigins lists CORS origins; "*" allows all
	AllowedOrigins []string
}

// StorageConfig holds article store configuration
type StorageConfig struct {
	// Type specifies the store backend (memory/sqlite)
	Type string

	// SQLitePath is the database file used by the sqlite store
	SQLitePath string
}

// BrokerConfig holds change broker configuration
type BrokerConfig struct {
	// Type specifies the broker backend (memory/redis)
	Type string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (redis/memory/sqlite)
	Type string

	// Redis contains Redis-specific configuration, shared with the redis broker
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig

	// SQLitePath is the database file used by the sqlite cache
	SQLitePath string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix namespaces every key and channel
	KeyPrefix string
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// DefaultExpiration is the default TTL for cache entries in seconds
	DefaultExpiration int
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level is a logrus level name
	Level string

	// Format is "json" or "text"
	Format string

	// File, when set, receives a rotated copy of the log
	File string
}

// PersistConfig holds persist worker configuration
type PersistConfig struct {
	Workers   int
	QueueSize int

	// EditorIdleTimeout is how long an open article stays in memory unused
	EditorIdleTimeout time.Duration
}

// ReaderConfig holds article extraction configuration
type ReaderConfig struct {
	// FetchTimeout bounds a single page fetch
	FetchTimeout time.Duration

	// CacheTTL is how long extractions are cached
	CacheTTL time.Duration
}

// LoadFromEnv loads configuration from environment variables. Variables from
// the .env file named by ENV_PATH (default ".env") are loaded first when it
// exists; real environment variables win.
func LoadFromEnv() (*Config, error) {
	envPath := getEnvOrDefault("ENV_PATH", ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8000"),
			RateLimit:      getEnvAsFloatOrDefault("RATE_LIMIT", 10),
			RateBurst:      getEnvAsIntOrDefault("RATE_BURST", 20),
			AllowedOrigins: getEnvAsListOrDefault("ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Type:       getEnvOrDefault("STORAGE_TYPE", "memory"),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "highlights.db"),
		},
		Broker: BrokerConfig{
			Type: getEnvOrDefault("BROKER_TYPE", "memory"),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:   getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:        getEnvAsIntOrDefault("REDIS_DB", 0),
				KeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", "highlights:"),
			},
			Memory: MemoryConfig{
				DefaultExpiration: getEnvAsIntOrDefault("MEMORY_CACHE_EXPIRATION", 3600),
			},
			SQLitePath: getEnvOrDefault("CACHE_SQLITE_PATH", "cache.db"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
			File:   getEnvOrDefault("LOG_FILE", ""),
		},
		Persist: PersistConfig{
			Workers:           getEnvAsIntOrDefault("PERSIST_WORKERS", 4),
			QueueSize:         getEnvAsIntOrDefault("PERSIST_QUEUE_SIZE", 100),
			EditorIdleTimeout: time.Duration(getEnvAsIntOrDefault("EDITOR_IDLE_TIMEOUT", 600)) * time.Second,
		},
		Reader: ReaderConfig{
			FetchTimeout: time.Duration(getEnvAsIntOrDefault("FETCH_TIMEOUT", 30)) * time.Second,
			CacheTTL:     time.Duration(getEnvAsIntOrDefault("READER_CACHE_TTL", 3600)) * time.Second,
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma separated variable, dropping blank items
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return errors.New("rate limit and burst must be positive")
	}

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty when using sqlite storage")
		}
	default:
		return errors.New("storage type must be 'memory' or 'sqlite'")
	}

	if c.Broker.Type != "memory" && c.Broker.Type != "redis" {
		return errors.New("broker type must be 'memory' or 'redis'")
	}

	switch c.Cache.Type {
	case "memory", "redis":
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return errors.New("cache sqlite path cannot be empty when using sqlite cache")
		}
	default:
		return errors.New("cache type must be 'redis', 'memory' or 'sqlite'")
	}

	if (c.Cache.Type == "redis" || c.Broker.Type == "redis") && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.New("log format must be 'json' or 'text'")
	}

	if c.Persist.Workers < 1 || c.Persist.QueueSize < 1 {
		return errors.New("persist workers and queue size must be at least 1")
	}

	if c.Persist.EditorIdleTimeout < time.Minute {
		return errors.New("editor idle timeout must be at least 1 minute")
	}

	if c.Reader.FetchTimeout < time.Second {
		return errors.New("fetch timeout must be at least 1 second")
	}

	return nil
}
