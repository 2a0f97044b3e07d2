// Package cache provides the key-value backends used by the weather lookup.
//
// A lookup never returns an error. It returns a Result whose Status tells
// the caller whether the key was found, absent, or whether the backend could
// not be asked at all. Callers decide what an unavailable backend means.
package cache

import (
	"context"
	"errors"
	"time"
)

// Status is the outcome of a cache lookup.
type Status int

const (
	StatusMiss Status = iota
	StatusHit
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusHit:
		return "hit"
	case StatusMiss:
		return "miss"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Result is the outcome of a single Get. Value is set only on a hit and Err
// only when the backend was unavailable.
type Result struct {
	Status Status
	Value  []byte
	Err    error
}

// Hit, Miss and Unavailable build lookup results.
func Hit(value []byte) Result { return Result{Status: StatusHit, Value: value} }
func Miss() Result            { return Result{Status: StatusMiss} }
func Unavailable(err error) Result {
	return Result{Status: StatusUnavailable, Err: err}
}

var (
	// ErrDisabled is reported by the no-op backend.
	ErrDisabled = errors.New("cache disabled")
	// ErrUnavailable wraps every backend failure.
	ErrUnavailable = errors.New("cache unavailable")
)

// Cache is a TTL key-value store.
type Cache interface {
	Get(ctx context.Context, key string) Result
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

// Disabled is the backend used when no cache is configured. Every lookup
// reports the backend as unavailable.
type Disabled struct{}

func (Disabled) Get(context.Context, string) Result { return Unavailable(ErrDisabled) }

func (Disabled) Set(context.Context, string, []byte, time.Duration) error { return ErrDisabled }

func (Disabled) Ping(context.Context) error { return ErrDisabled }

func (Disabled) Name() string { return "none" }

func (Disabled) Close() error { return nil }

var _ Cache = Disabled{}
