package weather

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_StaysInRange(t *testing.T) {
	g := NewSeededGenerator("IN", 42)

	for i := 0; i < 2000; i++ {
		w, err := g.Fetch(context.Background(), "Pune")
		require.NoError(t, err)

		assert.Equal(t, "Pune", w.City)
		assert.Equal(t, "IN", w.Country)
		assert.GreaterOrEqual(t, w.Temperature, TemperatureMin)
		assert.Less(t, w.Temperature, TemperatureMax)
		assert.GreaterOrEqual(t, w.FeelsLike, FeelsLikeMin)
		assert.Less(t, w.FeelsLike, FeelsLikeMax)
		assert.GreaterOrEqual(t, w.Humidity, HumidityMin)
		assert.Less(t, w.Humidity, HumidityMax)
		assert.GreaterOrEqual(t, w.Pressure, PressureMin)
		assert.Less(t, w.Pressure, PressureMax)
		assert.GreaterOrEqual(t, w.WindSpeed, WindSpeedMin)
		assert.Less(t, w.WindSpeed, WindSpeedMax)
		assert.GreaterOrEqual(t, w.Visibility, VisibilityMin)
		assert.Less(t, w.Visibility, VisibilityMax)
		assert.Contains(t, Conditions, w.Description)
	}
}

func TestGenerator_OneDecimal(t *testing.T) {
	g := NewSeededGenerator("IN", 7)

	for i := 0; i < 200; i++ {
		w, _ := g.Fetch(context.Background(), "Delhi")
		for _, v := range []float64{w.Temperature, w.FeelsLike, w.WindSpeed, w.Visibility} {
			assert.InDelta(t, v, float64(int(v*10+0.5))/10, 1e-9)
		}
	}
}

func TestGenerator_SeedIsReproducible(t *testing.T) {
	a, _ := NewSeededGenerator("IN", 99).Fetch(context.Background(), "Surat")
	b, _ := NewSeededGenerator("IN", 99).Fetch(context.Background(), "Surat")
	assert.Equal(t, a, b)
}

func TestGenerator_EchoesCityAsGiven(t *testing.T) {
	w, err := NewGenerator("IN").Fetch(context.Background(), "  nowhere at all ")
	require.NoError(t, err)
	assert.Equal(t, "  nowhere at all ", w.City)
}
