package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/user-management-api/internal/api"
	"github.com/user-management-api/internal/cache"
	"github.com/user-management-api/internal/config"
	"github.com/user-management-api/internal/events"
	"github.com/user-management-api/internal/logging"
	"github.com/user-management-api/internal/middleware"
	"github.com/user-management-api/internal/password"
	"github.com/user-management-api/internal/scheduler"
	"github.com/user-management-api/internal/service"
	"github.com/user-management-api/internal/storage"
	"github.com/user-management-api/internal/weather"

	_ "github.com/user-management-api/docs" // swagger docs
)

// @title User Management API
// @version 1.0
// @description User management with JWT-protected CRUD and a cached weather lookup.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your JWT token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) (err error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { err = multierr.Append(err, logCloser.Close()) }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	logger.Info("connecting to database", slog.String("host", cfg.Database.Host), slog.String("name", cfg.Database.Database))
	db, err := storage.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	logger.Info("running migrations")
	if err := db.RunMigrations(ctx); err != nil {
		return err
	}

	hasher, err := password.New(cfg.Auth.PasswordHasher)
	if err != nil {
		return err
	}

	publisher := newPublisher(cfg.Kafka, logger)
	defer func() { err = multierr.Append(err, publisher.Close()) }()

	userRepo := storage.NewUserRepository(db, cfg.Database.QueryTimeout)
	users := service.NewUserService(userRepo, hasher, publisher, logger)

	if _, err := users.SeedAdmin(ctx, cfg.Seed.AdminPassword); err != nil {
		return err
	}

	weatherCache := newCache(ctx, cfg.Cache, logger)
	defer func() { err = multierr.Append(err, weatherCache.Close()) }()

	weatherSvc := weather.NewService(weatherCache, newSource(cfg.Weather, logger), cfg.Cache.TTL, logger)

	warmer := scheduler.NewWarmer(weatherSvc, weather.Cities(), cfg.Weather.WarmSchedule, logger)
	if err := warmer.Start(ctx); err != nil {
		return err
	}
	defer warmer.Stop()

	auth := middleware.NewAuthMiddleware(cfg.JWT)
	handler := api.NewHandler(users, weatherSvc, db, weatherCache, logger)
	router := api.NewRouter(handler, auth, cfg.Server.CORSOrigins, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newCache never fails: an unreachable Redis only degrades the weather
// lookup to uncached reads.
func newCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) cache.Cache {
	switch cfg.Driver {
	case "none":
		logger.Info("weather cache disabled")
		return cache.Disabled{}
	case "memory":
		mem := cache.NewMemory()
		go sweep(ctx, mem, time.Minute)
		return mem
	}

	rc := cache.NewRedis(cache.RedisOptions{
		Addr:             cfg.RedisAddr,
		Password:         cfg.RedisPassword,
		DB:               cfg.RedisDB,
		DialTimeout:      cfg.DialTimeout,
		OpTimeout:        cfg.OpTimeout,
		BreakerFailures:  cfg.BreakerFailures,
		BreakerOpenFor:   cfg.BreakerOpenFor,
		BreakerHalfOpens: cfg.BreakerHalfOpens,
	}, logger)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, weather will be served uncached until it recovers",
			slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
	} else {
		logger.Info("connected to redis", slog.String("addr", cfg.RedisAddr))
	}
	return rc
}

func sweep(ctx context.Context, mem *cache.Memory, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mem.Sweep()
		}
	}
}

func newSource(cfg config.WeatherConfig, logger *slog.Logger) weather.Source {
	generator := weather.NewGenerator(cfg.Country)
	if cfg.Provider != "openweathermap" {
		return generator
	}

	owm := weather.NewOpenWeatherMap(cfg.APIKey, cfg.BaseURL, cfg.Country, cfg.Timeout)
	limited := weather.NewRateLimitedSource(owm, cfg.RateLimitRPS, cfg.RateBurst)
	logger.Info("using openweathermap with synthetic fallback", slog.Float64("rps", cfg.RateLimitRPS))
	return weather.NewFallbackSource(limited, generator, logger)
}

func newPublisher(cfg config.KafkaConfig, logger *slog.Logger) events.Publisher {
	if len(cfg.Brokers) == 0 {
		return events.NopPublisher{}
	}
	logger.Info("publishing user events", slog.Any("brokers", cfg.Brokers), slog.String("topic", cfg.Topic))
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Brokers, cfg.Topic, logger), logger)
}
