package resilience

import "fmt"

// OpenError is returned by CircuitBreaker.Call when the circuit is open
// and the operation was not invoked.
type OpenError struct {
	Agent string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("resilience: circuit open for %q", e.Agent)
}

// ErrOpen constructs an OpenError for the named agent.
func ErrOpen(agent string) error {
	return &OpenError{Agent: agent}
}
