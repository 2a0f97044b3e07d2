package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user-management-api/internal/metrics"
	"github.com/user-management-api/internal/middleware"
)

// NewRouter creates a new HTTP router with all routes
func NewRouter(h *Handler, auth *middleware.AuthMiddleware, corsOrigins []string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
	mux.Handle("GET /metrics", promhttp.Handler())

	route := func(pattern string, next http.Handler) {
		mux.Handle(pattern, instrument(pattern, middleware.JSON(next)))
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(auth.RequireAdmin(fn))
	}

	// Public routes
	route("GET /api/health", http.HandlerFunc(h.Health))

	// User routes
	route("GET /api/users", authed(h.ListUsers))
	route("GET /api/users/{id}", authed(h.GetUser))
	route("POST /api/users", admin(h.CreateUser))
	route("PUT /api/users/{id}", admin(h.UpdateUser))
	route("DELETE /api/users/{id}", admin(h.DeleteUser))

	// Weather routes; the literal path wins over the wildcard
	route("GET /api/weather/cities", authed(h.ListCities))
	route("GET /api/weather/{city}", authed(h.GetWeather))

	// Apply global middleware
	var handler http.Handler = mux
	handler = middleware.Recover(logger)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.CORS(corsOrigins)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (c *codeRecorder) WriteHeader(code int) {
	if c.code == 0 {
		c.code = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *codeRecorder) Write(b []byte) (int, error) {
	if c.code == 0 {
		c.code = http.StatusOK
	}
	return c.ResponseWriter.Write(b)
}

// instrument records request counts and latency under the route pattern,
// which keeps label cardinality bounded.
func instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &codeRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		code := rec.code
		if code == 0 {
			code = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(pattern, strconv.Itoa(code)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}
