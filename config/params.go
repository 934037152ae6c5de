package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/petstorecloud/petfood/pkg/logging"
)

// ParameterSource fetches configuration parameters from their system of
// record, such as a parameter store.
type ParameterSource interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ParameterCache serves parameters with a TTL in front of a
// ParameterSource. A miss falls through to the source and stores the
// result.
type ParameterCache interface {
	Get(ctx context.Context, name string) (string, error)
	// GetWithDefault returns the fallback instead of an error when the
	// parameter cannot be resolved.
	GetWithDefault(ctx context.Context, name, fallback string) string
}

// Clock supplies the current time. Injectable for expiry tests.
type Clock func() time.Time

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryParameterCache keeps parameters in process memory.
type MemoryParameterCache struct {
	mu     sync.RWMutex
	source ParameterSource
	ttl    time.Duration
	now    Clock
	logger logging.Logger
	params map[string]memoryEntry
}

// NewMemoryParameterCache builds an in-memory cache over the source.
// Logger may be nil.
func NewMemoryParameterCache(source ParameterSource, ttl time.Duration, logger logging.Logger) *MemoryParameterCache {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &MemoryParameterCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		params: make(map[string]memoryEntry),
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *MemoryParameterCache) SetClock(now Clock) {
	c.now = now
}

func (c *MemoryParameterCache) Get(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	entry, ok := c.params[name]
	c.mu.RUnlock()

	if ok && c.now().Before(entry.expiresAt) {
		c.logger.Debug("Parameter cache hit", map[string]interface{}{"name": name})
		return entry.value, nil
	}

	value, err := c.source.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("fetching parameter %s: %w", name, err)
	}

	c.mu.Lock()
	c.params[name] = memoryEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return value, nil
}

func (c *MemoryParameterCache) GetWithDefault(ctx context.Context, name, fallback string) string {
	value, err := c.Get(ctx, name)
	if err != nil {
		c.logger.Warn("Falling back to default parameter value", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		return fallback
	}
	return value
}

// RedisParameterCache keeps parameters in Redis so replicas share one
// cache. Keys live under the petfood:params namespace.
type RedisParameterCache struct {
	client *redis.Client
	source ParameterSource
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisParameterCache connects to Redis at the given URL and builds
// the cache. Logger may be nil.
func NewRedisParameterCache(redisURL string, source ParameterSource, ttl time.Duration, logger logging.Logger) (*RedisParameterCache, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.MaxRetries = 3
	opts.MinIdleConns = 1

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("Connected to parameter cache", map[string]interface{}{
		"ttl": ttl.String(),
	})

	return &RedisParameterCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (c *RedisParameterCache) Get(ctx context.Context, name string) (string, error) {
	key := "petfood:params:" + name

	value, err := c.client.Get(ctx, key).Result()
	if err == nil {
		c.logger.Debug("Parameter cache hit", map[string]interface{}{"name": name})
		return value, nil
	}
	if err != redis.Nil {
		c.logger.Warn("Parameter cache read failed", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
	}

	value, err = c.source.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("fetching parameter %s: %w", name, err)
	}

	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("Parameter cache write failed", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
	}

	return value, nil
}

func (c *RedisParameterCache) GetWithDefault(ctx context.Context, name, fallback string) string {
	value, err := c.Get(ctx, name)
	if err != nil {
		c.logger.Warn("Falling back to default parameter value", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		return fallback
	}
	return value
}

// Close releases the Redis connection.
func (c *RedisParameterCache) Close() error {
	return c.client.Close()
}

// CDNResolver adapts a ParameterCache to the image CDN lookup the
// services need.
type CDNResolver struct {
	cache ParameterCache
	name  string
}

// NewCDNResolver builds a resolver for the given parameter name.
func NewCDNResolver(cache ParameterCache, parameterName string) *CDNResolver {
	return &CDNResolver{cache: cache, name: parameterName}
}

// CDNBaseURL returns the CDN base URL for product images.
func (r *CDNResolver) CDNBaseURL(ctx context.Context) (string, error) {
	return r.cache.Get(ctx, r.name)
}
