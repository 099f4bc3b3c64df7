package infra

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a call is rejected by an open breaker.
var ErrCircuitOpen = errors.New("circuit breaker open")

// State represents the circuit breaker state.
type State int

const (
	StateClosed State = iota // Normal operation
	StateOpen                // Source disabled, reject requests
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker disables a signal source after a run of consecutive
// failures and automatically re-enables it once a fixed cooldown has
// elapsed, resetting the failure count. Thread-safe.
type CircuitBreaker struct {
	name string
	mu   sync.Mutex

	state        State
	failureCount int
	openedAt     time.Time

	failureThreshold int           // Consecutive failures before opening
	cooldown         time.Duration // Time until automatic re-enable

	// Invoked on every state transition, outside the lock.
	// Notification order across observers is unspecified.
	onChange func(name string, from, to State)
}

// CircuitBreakerConfig holds configuration for creating a circuit breaker.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	Cooldown         time.Duration
	OnChange         func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns the production defaults:
// 3 consecutive failures, 24h cooldown.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 3,
		Cooldown:         24 * time.Hour,
	}
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 24 * time.Hour
	}
	return &CircuitBreaker{
		name:             cfg.Name,
		state:            StateClosed,
		failureThreshold: cfg.FailureThreshold,
		cooldown:         cfg.Cooldown,
		onChange:         cfg.OnChange,
	}
}

// Allow reports whether a request may proceed. An open breaker whose
// cooldown has elapsed re-closes here, with the failure count reset.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	if cb.state == StateOpen {
		if time.Since(cb.openedAt) < cb.cooldown {
			cb.mu.Unlock()
			return false
		}
		cb.state = StateClosed
		cb.failureCount = 0
		notify := cb.onChange
		cb.mu.Unlock()

		slog.Info("circuit breaker re-enabled after cooldown",
			slog.String("name", cb.name))
		if notify != nil {
			notify(cb.name, StateOpen, StateClosed)
		}
		return true
	}

	cb.mu.Unlock()
	return true
}

// RecordSuccess resets the consecutive failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
}

// RecordFailure counts a failure and opens the breaker once the
// consecutive threshold is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()

	cb.failureCount++
	if cb.state == StateClosed && cb.failureCount >= cb.failureThreshold {
		cb.state = StateOpen
		cb.openedAt = time.Now()
		notify := cb.onChange
		failures := cb.failureCount
		cb.mu.Unlock()

		slog.Warn("circuit breaker opened",
			slog.String("name", cb.name),
			slog.Int("failures", failures))
		if notify != nil {
			notify(cb.name, StateClosed, StateOpen)
		}
		return
	}

	cb.mu.Unlock()
}

// GetState returns the current state (for monitoring).
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the circuit breaker to closed state (for testing/admin).
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
}
