// Package resilience wraps external collaborators (the LLM and ML
// services) in circuit breakers so a slow or failing dependency degrades
// the fraud pipeline instead of stalling it.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned by Breaker.Execute when the underlying
// gobreaker circuit is open and no fallback is configured.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Settings configures a Breaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// BuildSettings produces a Settings struct from primitive tuning knobs,
// applying sane defaults for zero values.
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	interval := time.Duration(intervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if failureThreshold <= 0 {
		failureThreshold = 5
	}

	if successThreshold <= 0 {
		successThreshold = 1
	}

	return Settings{
		Name:             name,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: uint32(failureThreshold),
		SuccessThreshold: uint32(successThreshold),
	}
}

// Breaker wraps a gobreaker.CircuitBreaker with Prometheus instrumentation
// and an optional fallback invoked whenever the breaker refuses a call.
type Breaker struct {
	name     string
	cb       *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// New builds a Breaker from Settings. A zero Name is assigned an
// auto-incrementing placeholder so metrics never collide.
func New(s Settings, fallback FallbackFunc) *Breaker {
	name := nextBreakerName(s.Name)

	st := gobreaker.Settings{
		Name:        name,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		MaxRequests: s.SuccessThreshold,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			recordBreakerStateChange(name, from, to)
		},
	}

	b := &Breaker{
		name:     name,
		cb:       gobreaker.NewCircuitBreaker(st),
		fallback: fallback,
	}
	recordBreakerState(name, b.cb.State())
	return b
}

// Execute runs fn through the circuit breaker. If the breaker rejects the
// call (open, or half-open with its probe quota used), Execute invokes the
// configured fallback instead of fn; with no fallback configured it returns
// ErrCircuitOpen. A call that fn itself fails returns fn's error, even if
// that failure trips the breaker.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	recordBreakerRequest(b.name)

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err == nil {
		return result, nil
	}

	recordBreakerFailure(b.name)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		recordBreakerFallback(b.name)
		if b.fallback != nil {
			return b.fallback(ctx, ErrCircuitOpen)
		}
		return nil, ErrCircuitOpen
	}

	return nil, err
}

// State reports the breaker's current state, for health/diagnostics.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }
