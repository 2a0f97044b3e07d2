package model

// Weather is a point-in-time snapshot for one city. It is never persisted
// outside the cache.
type Weather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"windSpeed"`
	Visibility  float64 `json:"visibility"`
}
