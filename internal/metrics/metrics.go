// Package metrics holds the Prometheus instruments used across the service.
// All collectors are registered with the default registry, which the router
// exposes on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	WeatherCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_lookups_total",
			Help: "Weather cache lookups by outcome (hit, miss, unavailable).",
		}, []string{"status"})

	WeatherCacheWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_cache_write_failures_total",
			Help: "Weather snapshots that could not be written to the cache.",
		})

	WeatherFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_source_fetches_total",
			Help: "Weather source calls by source and result.",
		}, []string{"source", "result"})

	UserMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_mutations_total",
			Help: "Successful user mutations by operation.",
		}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WeatherCacheLookups,
		WeatherCacheWriteFailures,
		WeatherFetches,
		UserMutations,
	)
}
