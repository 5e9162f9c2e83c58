package gateway

import (
	"github.com/lookatitude/beluga-ai/dispatch"
	"github.com/lookatitude/beluga-ai/livemodel"
	"github.com/lookatitude/beluga-ai/memory"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/session"
	"github.com/lookatitude/beluga-ai/streaming"
	"github.com/lookatitude/beluga-ai/subagents"
)

// Deps are the shared, cross-session collaborators every new connection's
// orchestrator is built from. Everything here is safe for concurrent use
// by many connections at once; only the streaming controller and the
// memory facade are constructed fresh per connection.
type Deps struct {
	Dispatcher   *dispatch.Dispatcher
	Breakers     *resilience.Registry
	Cultural     *subagents.CulturalAgent
	LiveProvider livemodel.Provider
	Producers    *session.Producers
	Store        memory.SessionStore
	Summarizer   memory.Summarizer

	// QueueSize bounds each connection's outbound message buffer before
	// backpressure applies. Zero uses streaming.New's default.
	QueueSize int
}

// newOrchestrator builds the per-connection C9/C6/C8 triple for
// sessionID, wired against the shared collaborators in d.
func (d *Deps) newOrchestrator(sessionID string) (*session.Orchestrator, *streaming.Controller) {
	stream := streaming.New(sessionID, d.QueueSize)
	mem := memory.NewGatewaySession(sessionID, d.Store, d.Summarizer)
	orch := session.New(sessionID, mem, d.Dispatcher, d.Breakers, stream, d.Cultural, d.LiveProvider)
	orch.SetProducers(d.Producers)
	return orch, stream
}
