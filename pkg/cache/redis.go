package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key.
	Prefix string

	// DialTimeout bounds connection setup. Zero uses the client default.
	DialTimeout time.Duration

	// Breaker tunes the circuit breaker. Zero values use DefaultBreakerSettings.
	Breaker BreakerSettings

	Logger *log.Logger
}

// BreakerSettings controls when the circuit breaker around Redis trips.
type BreakerSettings struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts reset.
	Interval time.Duration
	// Timeout before an open breaker moves to half-open.
	Timeout time.Duration
	// MinRequests observed before the failure ratio is evaluated.
	MinRequests uint32
	// FailureThreshold is the failure ratio that opens the breaker.
	FailureThreshold float64
}

// DefaultBreakerSettings returns the settings used when none are given.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.8,
	}
}

// RedisCache is a Cache backed by Redis. Every call runs through a circuit
// breaker so an unavailable Redis fails fast instead of stalling requests.
// Misses are not failures.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	cb     *gobreaker.CircuitBreaker
}

// NewRedisCache connects to a single Redis server.
// The connection is lazy; use Ping to verify it.
func NewRedisCache(opts RedisOptions) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		MaxRetries:  -1,
	})
	return NewRedisCacheFromClient(client, opts)
}

// NewRedisCacheFromClient wraps an existing client. Addr, Password, DB and
// DialTimeout in opts are ignored.
func NewRedisCacheFromClient(client redis.UniversalClient, opts RedisOptions) *RedisCache {
	bs := opts.Breaker
	def := DefaultBreakerSettings()
	if bs.MaxRequests == 0 {
		bs.MaxRequests = def.MaxRequests
	}
	if bs.Interval == 0 {
		bs.Interval = def.Interval
	}
	if bs.Timeout == 0 {
		bs.Timeout = def.Timeout
	}
	if bs.MinRequests == 0 {
		bs.MinRequests = def.MinRequests
	}
	if bs.FailureThreshold == 0 {
		bs.FailureThreshold = def.FailureThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bs.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= bs.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &RedisCache{client: client, prefix: opts.Prefix, cb: cb}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Ping(ctx).Err()
	})
	return c.wrap("ping", "", err)
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.cb.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, false, c.wrap("get", key, err)
	}
	data, _ := v.([]byte)
	if data == nil {
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value with the given TTL; zero means no expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	})
	return c.wrap("set", key, err)
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Del(ctx, c.prefix+key).Err()
	})
	return c.wrap("delete", key, err)
}

// State reports the circuit breaker state.
func (c *RedisCache) State() gobreaker.State {
	return c.cb.State()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if key == "" {
		return fmt.Errorf("%w: redis %s: %w", ErrNetwork, op, err)
	}
	return fmt.Errorf("%w: redis %s %s: %w", ErrNetwork, op, key, err)
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
