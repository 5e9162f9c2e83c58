// Package resilience provides the per-agent circuit breaker that shields
// the orchestrator from repeatedly calling agents that are failing.
package resilience

import (
	"sync"
	"time"

	"github.com/lookatitude/beluga-ai/metrics"
)

// State is one of the three circuit breaker states.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Status is the observability snapshot returned by CircuitBreaker.Status.
type Status struct {
	Name            string    `json:"name"`
	State           State     `json:"state"`
	FailureCount    int       `json:"failure_count"`
	SuccessCount    int       `json:"success_count"`
	LastFailureTime time.Time `json:"last_failure_time"`
}

// CircuitBreaker is a three-state, per-agent failure isolator with a
// timed self-heal probe. Zero value is not usable; construct with New.
type CircuitBreaker struct {
	mu sync.Mutex

	name         string
	maxFailures  int
	resetTimeout time.Duration

	state           State
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	openedAt        time.Time
	probeInFlight   bool
}

// New creates a CircuitBreaker for the named agent. maxFailures defaults
// to 3 and resetTimeout to 30s when given as zero.
func New(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// RecordFailure registers a failed call. In closed state, it increments
// the failure count and trips to open once maxFailures is reached. In
// half-open state, any failure re-opens the circuit immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.maxFailures {
			cb.trip()
		}
	case StateHalfOpen:
		cb.trip()
	}
}

// RecordSuccess registers a successful call. In closed state it resets
// the failure count (a no-op if already zero). In half-open state it
// closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successCount++

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.state = StateClosed
		cb.failureCount = 0
		cb.probeInFlight = false
	}
}

// trip moves the breaker to open and records the opening time. Caller
// must hold cb.mu.
func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.openedAt = time.Now()
	cb.probeInFlight = false
	metrics.RecordCircuitBreakerTrip(cb.name)
}

// IsOpen reports whether calls should currently be rejected. It performs
// the open-to-half-open transition inline: once resetTimeout has elapsed
// since the circuit tripped, the first query after that point flips the
// state to half-open and allows exactly one probe call through by
// returning false; subsequent queries before that probe resolves also
// return false, so concurrent callers in that window may each dispatch a
// call. The half-open state changes only when a caller reports an outcome
// via RecordSuccess/RecordFailure; the caller that receives a false result
// is responsible for actually dispatching the call.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) >= cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.probeInFlight = true
			return false
		}
		return true
	case StateHalfOpen:
		return false
	default:
		return false
	}
}

// Call runs operation if the breaker allows it, recording the outcome.
// It returns an *OpenError (see ErrOpen) without invoking operation when
// the circuit is open.
func (cb *CircuitBreaker) Call(operation func() error) error {
	if cb.IsOpen() {
		return ErrOpen(cb.name)
	}
	if err := operation(); err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

// Status returns a snapshot for operational tooling.
func (cb *CircuitBreaker) Status() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Status{
		Name:            cb.name,
		State:           cb.state,
		FailureCount:    cb.failureCount,
		SuccessCount:    cb.successCount,
		LastFailureTime: cb.lastFailureTime,
	}
}
