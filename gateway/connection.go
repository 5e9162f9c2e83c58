package gateway

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"sync"
	"time"

	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/schema"
	"github.com/lookatitude/beluga-ai/session"
	"github.com/lookatitude/beluga-ai/streaming"
)

// keepaliveInterval is how long the send loop waits for a real outbound
// message before emitting a pong to keep the connection alive.
const keepaliveInterval = 30 * time.Second

// wsConn is the slice of *websocket.Conn the gateway depends on, kept
// narrow so connection tests can supply an in-memory fake instead of a
// real socket.
type wsConn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Connection owns one client's WebSocket lifetime: its orchestrator,
// streaming controller, and the two cooperative loops that drive them.
type Connection struct {
	sessionID string
	ws        wsConn
	orch      *session.Orchestrator
	stream    *streaming.Controller

	seq      int64
	closeOne sync.Once
}

// newSessionID returns a 12-character random hex session identifier.
func newSessionID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// nextSeq returns the next strictly increasing sequence number for this
// connection's outbound messages. Only the send loop calls this, so no
// locking is needed.
func (c *Connection) nextSeq() int64 {
	c.seq++
	return c.seq
}

// sendLoop drains the streaming controller's outbound queue and writes
// each message to the transport, assigning its sequence number at send
// time. If the queue sits idle past keepaliveInterval, a pong is sent
// instead so the client (and any intermediary) sees the connection is
// alive.
func (c *Connection) sendLoop(ctx context.Context) {
	log := o11y.FromContext(ctx)
	timer := time.NewTimer(keepaliveInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.stream.Out():
			if !ok {
				return
			}
			msg.Seq = c.nextSeq()
			msg.Timestamp = time.Now()
			if err := c.ws.WriteJSON(msg); err != nil {
				log.Warn(ctx, "send failed", "session_id", c.sessionID, "error", err)
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(keepaliveInterval)

		case <-timer.C:
			pong := schema.ServerMessage{Type: schema.ServerPong, Seq: c.nextSeq(), Timestamp: time.Now()}
			if err := c.ws.WriteJSON(pong); err != nil {
				log.Warn(ctx, "keepalive send failed", "session_id", c.sessionID, "error", err)
				return
			}
			timer.Reset(keepaliveInterval)
		}
	}
}

// receiveLoop reads client messages and routes each to the matching
// orchestrator method. It returns when the connection errors or closes.
func (c *Connection) receiveLoop(ctx context.Context) {
	log := o11y.FromContext(ctx)

	for {
		var msg schema.ClientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			log.Info(ctx, "receive loop ending", "session_id", c.sessionID, "error", err)
			return
		}

		if err := c.route(ctx, msg); err != nil {
			log.Warn(ctx, "error processing message", "session_id", c.sessionID, "error", err)
			c.stream.SendError(ctx, err.Error())
		}
	}
}

func (c *Connection) route(ctx context.Context, msg schema.ClientMessage) error {
	switch msg.Type {
	case schema.ClientAudioChunk:
		audio, err := base64.StdEncoding.DecodeString(msg.Data)
		if err != nil {
			return err
		}
		return c.orch.HandleAudioChunk(ctx, audio)

	case schema.ClientTextInput:
		text, err := base64.StdEncoding.DecodeString(msg.Data)
		if err != nil {
			return err
		}
		return c.orch.HandleTextInput(ctx, string(text))

	case schema.ClientVideoFrame:
		frame, err := base64.StdEncoding.DecodeString(msg.Data)
		if err != nil {
			return err
		}
		return c.orch.HandleVideoFrame(ctx, frame, "image/jpeg")

	case schema.ClientInterrupt:
		c.orch.HandleInterrupt(ctx)
		c.stream.SendAgentState(ctx, "orchestrator", "interrupted")
		return nil

	case schema.ClientControl:
		c.orch.HandleControl(ctx, msg.Action, msg.Value)
		return nil

	case schema.ClientPing:
		c.stream.SendPong(ctx)
		return nil

	case schema.ClientSessionInit:
		if msg.SessionID != "" && msg.SessionID == c.sessionID {
			c.orch.RestoreSession(ctx)
		} else if msg.SessionID != "" {
			o11y.FromContext(ctx).Info(ctx, "resumption of a different session id is not supported, starting fresh",
				"session_id", c.sessionID, "requested_session_id", msg.SessionID)
		}
		return nil
	}
	return nil
}

// close tears down the connection exactly once: cancelling the
// connection's context (stopping the send loop), shutting down the
// orchestrator (cancels tool tasks, releases the live-model session,
// finalizes memory), closing the transport, and removing the connection
// from the registry.
func (c *Connection) close(ctx context.Context, cancel context.CancelFunc, registry *Registry) {
	c.closeOne.Do(func() {
		cancel()
		c.orch.Shutdown(ctx)
		_ = c.ws.Close()
		registry.Remove(c.sessionID)
		o11y.FromContext(ctx).Info(ctx, "connection cleaned up", "session_id", c.sessionID, "event", "ws_cleanup")
	})
}
