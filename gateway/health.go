package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lookatitude/beluga-ai/o11y"
)

// HealthReporter is the gateway's view of its own readiness: how many
// client connections are currently active. The connection Registry
// satisfies this.
type HealthReporter interface {
	Count() int
}

// Health serves the two read-only health endpoints: liveness (always
// healthy once the process responds) and readiness (reports the active
// connection count). The readiness probe is also registered with an
// o11y.HealthRegistry so it shows up alongside every other component's
// health check.
type Health struct {
	reporter HealthReporter
	registry *o11y.HealthRegistry
}

// NewHealth builds a Health handler backed by reporter, and registers its
// readiness probe under the name "gateway" in registry.
func NewHealth(reporter HealthReporter, registry *o11y.HealthRegistry) *Health {
	h := &Health{reporter: reporter, registry: registry}
	if registry != nil {
		registry.Register("gateway", o11y.HealthCheckerFunc(h.checkReadiness))
	}
	return h
}

func (h *Health) checkReadiness(ctx context.Context) o11y.HealthResult {
	return o11y.HealthResult{
		Status:  o11y.Healthy,
		Message: "accepting connections",
	}
}

// Liveness always reports healthy: a response at all proves the process
// is alive and serving.
func (h *Health) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, map[string]any{"status": string(o11y.Healthy)})
}

// Readiness reports the number of currently active connections. The
// gateway is always ready to accept more; this is an operational gauge,
// not a gate.
func (h *Health) Readiness(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, map[string]any{
		"status":             string(o11y.Healthy),
		"active_connections": h.reporter.Count(),
	})
}

func writeHealthJSON(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
