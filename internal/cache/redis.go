package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// RedisOptions configures the Redis cache client.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	DialTimeout time.Duration
	// OpTimeout bounds every single command, including the breaker wait.
	OpTimeout time.Duration

	// The breaker opens after BreakerFailures consecutive failures, stays
	// open for BreakerOpenFor, then lets BreakerHalfOpens probes through.
	BreakerFailures  uint32
	BreakerOpenFor   time.Duration
	BreakerHalfOpens uint32
}

// Redis is a Cache backed by a Redis server. Calls go through a circuit
// breaker so a dead server costs one fast rejection instead of a timeout
// per request.
type Redis struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewRedis creates the client without connecting; the first command dials.
// An unreachable server therefore never blocks startup.
func NewRedis(opts RedisOptions, logger *slog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.OpTimeout,
		WriteTimeout: opts.OpTimeout,
		MaxRetries:   1,
	})
	return newRedis(client, opts, logger)
}

func newRedis(client *redis.Client, opts RedisOptions, logger *slog.Logger) *Redis {
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 3
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "redis",
		MaxRequests: opts.BreakerHalfOpens,
		Timeout:     opts.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	opTimeout := opts.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}

	return &Redis{
		client:    client,
		breaker:   breaker,
		opTimeout: opTimeout,
		logger:    logger,
	}
}

func (r *Redis) Get(ctx context.Context, key string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	value, err := r.breaker.Execute(func() ([]byte, error) {
		return r.client.Get(ctx, key).Bytes()
	})
	switch {
	case err == nil:
		return Hit(value)
	case errors.Is(err, redis.Nil):
		return Miss()
	default:
		return Unavailable(fmt.Errorf("%w: get %s: %w", ErrUnavailable, key, err))
	}
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrUnavailable, key, err)
	}
	return nil
}

// Ping bypasses the breaker so health checks see the real server state.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Name() string { return "redis" }

// BreakerState reports the current breaker state.
func (r *Redis) BreakerState() gobreaker.State {
	return r.breaker.State()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Cache = (*Redis)(nil)
