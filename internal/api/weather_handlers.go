package api

import (
	"errors"
	"net/http"

	"github.com/user-management-api/internal/weather"
)

// GetWeather godoc
// @Summary Current weather for a city
// @Description Served from the cache when possible. Any city name is accepted.
// @Tags Weather
// @Produce json
// @Param city path string true "City name"
// @Success 200 {object} model.Weather
// @Failure 401 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security BearerAuth
// @Router /weather/{city} [get]
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")

	snapshot, err := h.weather.Get(r.Context(), city)
	if err != nil {
		if errors.Is(err, weather.ErrNoData) {
			respondError(w, http.StatusNotFound, "Weather data not found for "+city)
			return
		}
		h.respondInternal(w, r, "weather lookup failed", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// ListCities godoc
// @Summary Supported cities
// @Tags Weather
// @Produce json
// @Success 200 {array} string
// @Failure 401 {object} messageResponse
// @Security BearerAuth
// @Router /weather/cities [get]
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, weather.Cities())
}
