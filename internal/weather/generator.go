package weather

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/user-management-api/internal/model"
)

// Bounds of the synthetic generator. Lower bounds are inclusive, upper
// bounds exclusive.
const (
	TemperatureMin = 20.0
	TemperatureMax = 35.0
	FeelsLikeMin   = 18.0
	FeelsLikeMax   = 33.0
	HumidityMin    = 40
	HumidityMax    = 90
	PressureMin    = 1000
	PressureMax    = 1020
	WindSpeedMin   = 0.0
	WindSpeedMax   = 20.0
	VisibilityMin  = 5.0
	VisibilityMax  = 10.0
)

// Conditions are the descriptions the generator picks from.
var Conditions = []string{"Sunny", "Cloudy", "Partly Cloudy", "Clear", "Hazy"}

// Generator synthesizes plausible snapshots. It never fails and accepts any
// city string.
type Generator struct {
	country string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the clock
func NewGenerator(country string) *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewSeededGenerator(country, seed)
}

// NewSeededGenerator returns a generator with a reproducible sequence.
func NewSeededGenerator(country string, seed uint64) *Generator {
	return &Generator{
		country: country,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *Generator) Name() string { return "synthetic" }

func (g *Generator) Fetch(_ context.Context, city string) (*model.Weather, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return &model.Weather{
		City:        city,
		Country:     g.country,
		Temperature: g.uniform(TemperatureMin, TemperatureMax),
		FeelsLike:   g.uniform(FeelsLikeMin, FeelsLikeMax),
		Humidity:    HumidityMin + g.rng.IntN(HumidityMax-HumidityMin),
		Pressure:    PressureMin + g.rng.IntN(PressureMax-PressureMin),
		Description: Conditions[g.rng.IntN(len(Conditions))],
		WindSpeed:   g.uniform(WindSpeedMin, WindSpeedMax),
		Visibility:  g.uniform(VisibilityMin, VisibilityMax),
	}, nil
}

// uniform draws from [lo, hi) and truncates to one decimal, which keeps the
// result inside the half-open range.
func (g *Generator) uniform(lo, hi float64) float64 {
	v := lo + g.rng.Float64()*(hi-lo)
	return math.Floor(v*10) / 10
}

var _ Source = (*Generator)(nil)
