package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-management-api/internal/logging"
	"github.com/user-management-api/internal/model"
)

type stubSource struct {
	name  string
	calls int
	w     *model.Weather
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, city string) (*model.Weather, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	w := *s.w
	w.City = city
	return &w, nil
}

const owmBody = `{
  "weather": [{"main": "Clouds", "description": "broken clouds"}],
  "main": {"temp": 29.4, "feels_like": 33.1, "pressure": 1008, "humidity": 74},
  "visibility": 6000,
  "wind": {"speed": 4.6},
  "sys": {"country": "IN"},
  "name": "Mumbai"
}`

func TestOpenWeatherMap_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Mumbai,IN", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(owmBody))
	}))
	defer srv.Close()

	p := NewOpenWeatherMap("secret", srv.URL+"/", "IN", time.Second)
	w, err := p.Fetch(context.Background(), "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, &model.Weather{
		City:        "Mumbai",
		Country:     "IN",
		Temperature: 29.4,
		FeelsLike:   33.1,
		Humidity:    74,
		Pressure:    1008,
		Description: "Clouds",
		WindSpeed:   4.6,
		Visibility:  6,
	}, w)
}

func TestOpenWeatherMap_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOpenWeatherMap("k", srv.URL, "IN", time.Second).Fetch(context.Background(), "Atlantis")
	require.ErrorIs(t, err, ErrCityNotFound)
}

func TestOpenWeatherMap_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewOpenWeatherMap("bad", srv.URL, "IN", time.Second).Fetch(context.Background(), "Pune")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCityNotFound)
	assert.Contains(t, err.Error(), "401")
}

func TestFallbackSource(t *testing.T) {
	fallback := &stubSource{name: "synthetic", w: &model.Weather{Country: "IN"}}

	t.Run("primary ok", func(t *testing.T) {
		primary := &stubSource{name: "owm", w: &model.Weather{Country: "XX"}}
		w, err := NewFallbackSource(primary, fallback, logging.Discard()).Fetch(context.Background(), "Pune")
		require.NoError(t, err)
		assert.Equal(t, "XX", w.Country)
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := &stubSource{name: "owm", err: errors.New("boom")}
		w, err := NewFallbackSource(primary, fallback, logging.Discard()).Fetch(context.Background(), "Pune")
		require.NoError(t, err)
		assert.Equal(t, "IN", w.Country)
	})

	t.Run("unknown city is not masked", func(t *testing.T) {
		primary := &stubSource{name: "owm", err: ErrCityNotFound}
		_, err := NewFallbackSource(primary, fallback, logging.Discard()).Fetch(context.Background(), "Atlantis")
		require.ErrorIs(t, err, ErrCityNotFound)
	})
}

func TestRateLimitedSource(t *testing.T) {
	inner := &stubSource{name: "owm", w: &model.Weather{}}
	src := NewRateLimitedSource(inner, 0.001, 1)

	_, err := src.Fetch(context.Background(), "Pune")
	require.NoError(t, err)

	// the single token is spent; the next call has to wait past the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = src.Fetch(ctx, "Pune")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "owm", src.Name())
}
