package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user-management-api/internal/model"
)

// OpenWeatherMap fetches current conditions from the OpenWeatherMap API.
type OpenWeatherMap struct {
	apiKey     string
	baseURL    string
	country    string
	httpClient *http.Client
}

// NewOpenWeatherMap creates a new OpenWeatherMap client
func NewOpenWeatherMap(apiKey, baseURL, country string, timeout time.Duration) *OpenWeatherMap {
	return &OpenWeatherMap{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *OpenWeatherMap) Name() string {
	return "openweathermap"
}

type owmResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	// Visibility is reported in meters.
	Visibility int `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

func (p *OpenWeatherMap) Fetch(ctx context.Context, city string) (*model.Weather, error) {
	params := url.Values{}
	params.Add("q", city+","+p.country)
	params.Add("appid", p.apiKey)
	params.Add("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var r owmResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	w := &model.Weather{
		City:        city,
		Country:     r.Sys.Country,
		Temperature: r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		Humidity:    r.Main.Humidity,
		Pressure:    r.Main.Pressure,
		WindSpeed:   r.Wind.Speed,
		Visibility:  math.Round(float64(r.Visibility)/100) / 10,
	}
	if w.Country == "" {
		w.Country = p.country
	}
	if len(r.Weather) > 0 {
		w.Description = r.Weather[0].Main
	}

	return w, nil
}

var _ Source = (*OpenWeatherMap)(nil)
