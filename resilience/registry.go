package resilience

import (
	"sync"
	"time"
)

// Registry hands out one CircuitBreaker per agent name, creating it
// lazily with the registry's default parameters on first use.
type Registry struct {
	mu           sync.Mutex
	breakers     map[string]*CircuitBreaker
	maxFailures  int
	resetTimeout time.Duration
}

// NewRegistry creates a Registry. Per-agent defaults can be overridden
// later via WithAgentDefaults.
func NewRegistry(maxFailures int, resetTimeout time.Duration) *Registry {
	return &Registry{
		breakers:     make(map[string]*CircuitBreaker),
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
	}
}

// Get returns the circuit breaker for name, creating it if absent.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[name]; ok {
		return cb
	}
	cb := New(name, r.maxFailures, r.resetTimeout)
	r.breakers[name] = cb
	return cb
}

// WithAgentDefaults registers name with breaker-specific tuning,
// overriding the registry defaults. Must be called before the first
// Get(name) to take effect.
func (r *Registry) WithAgentDefaults(name string, maxFailures int, resetTimeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.breakers[name]; ok {
		return
	}
	r.breakers[name] = New(name, maxFailures, resetTimeout)
}

// Statuses returns a snapshot of every breaker currently registered.
func (r *Registry) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Status, 0, len(r.breakers))
	for _, cb := range r.breakers {
		out = append(out, cb.Status())
	}
	return out
}
