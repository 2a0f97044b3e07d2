// Package weather serves weather snapshots through a cache-aside lookup.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/user-management-api/internal/cache"
	"github.com/user-management-api/internal/metrics"
	"github.com/user-management-api/internal/model"
)

// KeyPrefix namespaces weather entries in the shared cache.
const KeyPrefix = "weather:"

// ErrNoData is the only error Get returns to callers.
var ErrNoData = errors.New("weather data not found")

var cities = []string{
	"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai",
	"Kolkata", "Pune", "Ahmedabad", "Jaipur", "Surat",
}

// Cities returns the fixed list of supported city names.
func Cities() []string {
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// CacheKey ignores case and surrounding whitespace in the city name.
func CacheKey(city string) string {
	return KeyPrefix + strings.ToLower(strings.TrimSpace(city))
}

// Service serves weather reports cache-aside.
type Service struct {
	cache  cache.Cache
	source Source
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates a new weather service
func NewService(c cache.Cache, source Source, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		cache:  c,
		source: source,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "weather")),
	}
}

// Get returns the cached snapshot for city or produces and caches a new one.
// Cache failures are logged and never surface to the caller.
func (s *Service) Get(ctx context.Context, city string) (*model.Weather, error) {
	key := CacheKey(city)

	res := s.cache.Get(ctx, key)
	metrics.WeatherCacheLookups.WithLabelValues(res.Status.String()).Inc()

	switch res.Status {
	case cache.StatusHit:
		var w model.Weather
		err := json.Unmarshal(res.Value, &w)
		if err == nil {
			s.logger.DebugContext(ctx, "cache hit", slog.String("key", key))
			return &w, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cache entry",
			slog.String("key", key), slog.Any("error", err))
	case cache.StatusUnavailable:
		s.logCacheFailure(ctx, "cache read failed", key, res.Err)
	}

	w, err := s.source.Fetch(ctx, city)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues(s.source.Name(), "error").Inc()
		return nil, fmt.Errorf("%w for %s: %w", ErrNoData, city, err)
	}
	metrics.WeatherFetches.WithLabelValues(s.source.Name(), "ok").Inc()

	s.store(ctx, key, w)
	return w, nil
}

func (s *Service) store(ctx context.Context, key string, w *model.Weather) {
	payload, err := json.Marshal(w)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode weather", slog.String("key", key), slog.Any("error", err))
		return
	}

	// The write outlives a canceled request; the backend bounds it.
	if err := s.cache.Set(context.WithoutCancel(ctx), key, payload, s.ttl); err != nil {
		metrics.WeatherCacheWriteFailures.Inc()
		s.logCacheFailure(ctx, "cache write failed", key, err)
	}
}

func (s *Service) logCacheFailure(ctx context.Context, msg, key string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, cache.ErrDisabled) {
		level = slog.LevelDebug
	}
	s.logger.Log(ctx, level, msg,
		slog.String("backend", s.cache.Name()),
		slog.String("key", key),
		slog.Any("error", err),
	)
}
