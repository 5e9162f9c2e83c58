package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/schema"
)

// upgrader accepts cross-origin WebSocket upgrades; this gateway serves a
// dedicated real-time endpoint, not a browsable API, so it does not gate
// on request Origin the way a same-site HTTP API would.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler is the net/http handler for the gateway's WebSocket endpoint.
type Handler struct {
	deps     *Deps
	registry *Registry
}

// NewHandler builds a Handler backed by deps, registering every accepted
// connection in registry.
func NewHandler(deps *Deps, registry *Registry) *Handler {
	return &Handler{deps: deps, registry: registry}
}

// ServeHTTP upgrades the request to a WebSocket, assigns the connection a
// session, wires up its orchestrator, and runs the connection's receive
// and send loops until it disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := o11y.FromContext(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(ctx, "websocket upgrade failed", "error", err)
		return
	}

	sessionID, err := newSessionID()
	if err != nil {
		log.Error(ctx, "session id generation failed", "error", err)
		_ = conn.Close()
		return
	}

	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	log.Info(connCtx, "websocket connected", "session_id", sessionID, "event", "ws_connect")

	orch, stream := h.deps.newOrchestrator(sessionID)
	c := &Connection{sessionID: sessionID, ws: conn, orch: orch, stream: stream}

	if err := orch.Initialize(connCtx); err != nil {
		log.Error(connCtx, "orchestrator initialize failed", "session_id", sessionID, "error", err)
		cancel()
		_ = conn.Close()
		return
	}

	h.registry.Add(c)
	defer c.close(connCtx, cancel, h.registry)

	if err := conn.WriteJSON(schema.ServerMessage{
		Type:      schema.ServerSessionCreated,
		Seq:       c.nextSeq(),
		SessionID: sessionID,
		Timestamp: time.Now(),
	}); err != nil {
		log.Warn(connCtx, "session_created send failed", "session_id", sessionID, "error", err)
		return
	}

	go c.sendLoop(connCtx)
	c.receiveLoop(connCtx)
}
