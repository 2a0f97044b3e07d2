package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/user-management-api/internal/model"
)

// ErrCityNotFound is returned by sources that know the city does not exist.
var ErrCityNotFound = errors.New("city not found")

// Source produces a fresh snapshot for a city. The cache sits in front of it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, city string) (*model.Weather, error)
}

// RateLimitedSource wraps a Source with a token bucket.
type RateLimitedSource struct {
	source  Source
	limiter *rate.Limiter
}

// NewRateLimitedSource allows rps requests per second with the given burst.
// rps may be fractional.
func NewRateLimitedSource(source Source, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSource) Fetch(ctx context.Context, city string) (*model.Weather, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.Fetch(ctx, city)
}

func (r *RateLimitedSource) Name() string {
	return r.source.Name()
}

// FallbackSource asks primary first and falls back on any error other than
// ErrCityNotFound.
type FallbackSource struct {
	primary  Source
	fallback Source
	logger   *slog.Logger
}

// NewFallbackSource creates a source that retries on fallback when primary fails
func NewFallbackSource(primary, fallback Source, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback, logger: logger}
}

func (f *FallbackSource) Fetch(ctx context.Context, city string) (*model.Weather, error) {
	w, err := f.primary.Fetch(ctx, city)
	if err == nil || errors.Is(err, ErrCityNotFound) {
		return w, err
	}

	f.logger.WarnContext(ctx, "weather source failed, using fallback",
		slog.String("source", f.primary.Name()),
		slog.String("fallback", f.fallback.Name()),
		slog.String("city", city),
		slog.Any("error", err),
	)
	return f.fallback.Fetch(ctx, city)
}

func (f *FallbackSource) Name() string {
	return f.primary.Name()
}

var (
	_ Source = (*RateLimitedSource)(nil)
	_ Source = (*FallbackSource)(nil)
)
