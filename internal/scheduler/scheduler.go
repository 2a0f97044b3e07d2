// Package scheduler runs the periodic weather cache warm-up.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user-management-api/internal/model"
)

// WeatherGetter is satisfied by weather.Service.
type WeatherGetter interface {
	Get(ctx context.Context, city string) (*model.Weather, error)
}

// Warmer looks up every listed city on a cron schedule so that the first
// request for a city after expiry finds a fresh cache entry.
type Warmer struct {
	cron     *cron.Cron
	weather  WeatherGetter
	cities   []string
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWarmer creates a new cache warmer
func NewWarmer(weather WeatherGetter, cities []string, schedule string, logger *slog.Logger) *Warmer {
	logger = logger.With(slog.String("component", "warmer"))
	return &Warmer{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		weather:  weather,
		cities:   cities,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger,
	}
}

// Start registers the job and starts the cron loop. An empty schedule
// leaves the warmer idle.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.schedule == "" {
		return nil
	}

	w.ctx, w.cancel = context.WithCancel(ctx)

	entryID, err := w.cron.AddFunc(normalizeSchedule(w.schedule), func() {
		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
		defer cancel()
		w.WarmNow(ctx)
	})
	if err != nil {
		w.cancel()
		return fmt.Errorf("invalid cron expression '%s': %w", w.schedule, err)
	}
	w.entryID = entryID

	w.cron.Start()
	w.running = true

	w.logger.Info("cache warmer started",
		slog.String("schedule", w.schedule),
		slog.Int("cities", len(w.cities)),
	)
	return nil
}

// Stop stops the warmer gracefully
func (w *Warmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.cancel()
	ctx := w.cron.Stop()
	<-ctx.Done()

	w.running = false
	w.logger.Info("cache warmer stopped")
}

// WarmNow looks up every city once and returns how many succeeded.
func (w *Warmer) WarmNow(ctx context.Context) int {
	warmed := 0
	for _, city := range w.cities {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.weather.Get(ctx, city); err != nil {
			w.logger.WarnContext(ctx, "failed to warm city", slog.String("city", city), slog.Any("error", err))
			continue
		}
		warmed++
	}

	w.logger.DebugContext(ctx, "cache warm-up finished",
		slog.Int("warmed", warmed),
		slog.Int("cities", len(w.cities)),
	)
	return warmed
}

// NextRun returns the next scheduled run, or nil when idle.
func (w *Warmer) NextRun() *time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.running {
		return nil
	}
	entry := w.cron.Entry(w.entryID)
	if entry.Next.IsZero() {
		return nil
	}
	return &entry.Next
}

// IsRunning returns whether the warmer is running
func (w *Warmer) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// normalizeSchedule accepts 5-field cron expressions and descriptors on a
// parser that expects a seconds field.
func normalizeSchedule(schedule string) string {
	switch schedule {
	case "@hourly":
		return "0 0 * * * *"
	case "@daily":
		return "0 0 0 * * *"
	case "@weekly":
		return "0 0 0 * * 0"
	case "@monthly":
		return "0 0 0 1 * *"
	}

	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}
