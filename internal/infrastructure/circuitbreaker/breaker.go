package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Errors
var (
	ErrCircuitOpen     = gobreaker.ErrOpenState
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// Settings configures the circuit breaker
type Settings struct {
	// Name identifies the circuit breaker
	Name string

	// MaxRequests is the maximum number of requests allowed to pass through
	// when the circuit breaker is half-open
	MaxRequests uint32

	// Interval is the cyclic period of the closed state
	// for the circuit breaker to clear the internal counts
	Interval time.Duration

	// Timeout is the period of the open state
	// after which the state becomes half-open
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures before opening
	// the circuit
	FailureThreshold uint32

	// OnStateChange is called when the circuit breaker changes state
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// CircuitBreaker wraps gobreaker with the defaults and logging used across
// the service clients
type CircuitBreaker struct {
	cb  *gobreaker.CircuitBreaker
	log *zap.Logger
}

// New creates a new circuit breaker with the given settings
func New(settings Settings, log *zap.Logger) *CircuitBreaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 3
	}
	if settings.Interval == 0 {
		settings.Interval = 60 * time.Second
	}
	if settings.Timeout == 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}

	threshold := settings.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Info("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if settings.OnStateChange != nil {
				settings.OnStateChange(name, from, to)
			}
		},
	})

	return &CircuitBreaker{cb: cb, log: log}
}

// Execute runs the given function if the circuit breaker allows it
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.cb.Execute(fn)
}

// ExecuteCtx runs the given function with context if the circuit breaker allows it
func (cb *CircuitBreaker) ExecuteCtx(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return cb.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.cb.State()
}

// Counts returns a copy of the current counts
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.cb.Counts()
}

// Name returns the name of the circuit breaker
func (cb *CircuitBreaker) Name() string {
	return cb.cb.Name()
}

// DefaultSettings returns default circuit breaker settings
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// IsCircuitOpen checks if the error is due to an open circuit
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState)
}

// IsTooManyRequests checks if the error is due to too many requests
func IsTooManyRequests(err error) bool {
	return errors.Is(err, gobreaker.ErrTooManyRequests)
}
