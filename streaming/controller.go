// Package streaming implements the streaming controller (C8): buffering,
// pacing, and backpressure for the outbound message stream to a single
// client connection.
package streaming

import (
	"context"
	"strings"
	"time"

	"github.com/lookatitude/beluga-ai/metrics"
	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/schema"
)

// sentenceEnders are the suffixes that trigger a text-buffer flush.
var sentenceEnders = []string{".", "!", "?", "…", "\n"}

const (
	forceFlushLength = 200
	backpressureWait = 5 * time.Second
)

// Controller buffers and paces outbound messages for one client connection.
// It owns no transport; callers drain Out() and write to the socket.
type Controller struct {
	sessionID string
	out       chan schema.ServerMessage

	textBuffer  strings.Builder
	chunksSent  int
	streamStart time.Time
}

// New creates a Controller whose outbound queue holds up to queueSize
// pending messages before backpressure kicks in.
func New(sessionID string, queueSize int) *Controller {
	if queueSize <= 0 {
		queueSize = 50
	}
	return &Controller{
		sessionID: sessionID,
		out:       make(chan schema.ServerMessage, queueSize),
	}
}

// Out returns the channel of outbound messages ready to send to the client.
func (c *Controller) Out() <-chan schema.ServerMessage {
	return c.out
}

// Close closes the outbound channel. The caller must not send through c
// after calling Close.
func (c *Controller) Close() {
	close(c.out)
	metrics.DeleteOutputQueueDepth(c.sessionID)
}

// DrainOutbound discards any messages currently queued, used when an
// interrupt makes queued output stale. Also drops any partially buffered
// text so it isn't prepended to the next turn's speech.
func (c *Controller) DrainOutbound() {
	c.textBuffer.Reset()
	for {
		select {
		case <-c.out:
		default:
			return
		}
	}
}

// SendTextChunk buffers text until a sentence boundary (or a 200-char
// overflow) and flushes it as one TEXT_CHUNK message.
func (c *Controller) SendTextChunk(ctx context.Context, text, agent string) {
	c.textBuffer.WriteString(text)

	buffered := c.textBuffer.String()
	if endsAtSentenceBoundary(buffered) || len(buffered) > forceFlushLength {
		c.flushTextBuffer(ctx, agent)
	}
}

func endsAtSentenceBoundary(s string) bool {
	trimmed := strings.TrimRight(s, " \t\r\n")
	for _, e := range sentenceEnders {
		if strings.HasSuffix(trimmed, e) {
			return true
		}
	}
	return false
}

func (c *Controller) flushTextBuffer(ctx context.Context, agent string) {
	text := c.textBuffer.String()
	c.textBuffer.Reset()
	if strings.TrimSpace(text) == "" {
		return
	}

	if c.chunksSent == 0 {
		c.streamStart = time.Now()
	}

	c.enqueue(ctx, schema.ServerMessage{
		Type:  schema.ServerTextChunk,
		Data:  text,
		Agent: agent,
	}, mustDeliver(schema.ServerTextChunk))
	c.chunksSent++
}

// SendAudioChunk forwards a base64-encoded audio chunk.
func (c *Controller) SendAudioChunk(ctx context.Context, audioB64 string) {
	c.enqueue(ctx, schema.ServerMessage{
		Type: schema.ServerAudioChunk,
		Data: audioB64,
	}, mustDeliver(schema.ServerAudioChunk))
}

// SendImageReady notifies the client that a detached image task completed.
func (c *Controller) SendImageReady(ctx context.Context, url string) {
	c.enqueue(ctx, schema.ServerMessage{
		Type:  schema.ServerImageReady,
		URL:   url,
		Agent: "visual",
	}, mustDeliver(schema.ServerImageReady))
	o11y.FromContext(ctx).Info(ctx, "image sent to client", "session_id", c.sessionID, "event", "image_sent")
}

// SendPong replies to a client ping, keeping it in the same sequenced
// outbound stream as every other server message rather than writing to
// the transport out of band.
func (c *Controller) SendPong(ctx context.Context) {
	c.enqueue(ctx, schema.ServerMessage{Type: schema.ServerPong}, mustDeliver(schema.ServerPong))
}

// SendAgentState notifies the client about an agent state change, for UX
// feedback (e.g. "thinking", "speaking").
func (c *Controller) SendAgentState(ctx context.Context, agent, state string) {
	c.enqueue(ctx, schema.ServerMessage{
		Type:  schema.ServerAgentState,
		Agent: agent,
		State: state,
	}, mustDeliver(schema.ServerAgentState))
}

// SendTurnEnd flushes any buffered text and signals the end of an agent
// turn. turn_end is never dropped under backpressure.
func (c *Controller) SendTurnEnd(ctx context.Context) {
	if c.textBuffer.Len() > 0 {
		c.flushTextBuffer(ctx, "orchestrator")
	}

	c.enqueue(ctx, schema.ServerMessage{Type: schema.ServerTurnEnd}, mustDeliver(schema.ServerTurnEnd))

	if !c.streamStart.IsZero() {
		elapsed := time.Since(c.streamStart)
		o11y.FromContext(ctx).Info(ctx, "turn complete",
			"session_id", c.sessionID,
			"event", "turn_complete",
			"chunks_sent", c.chunksSent,
			"latency_ms", elapsed.Milliseconds(),
		)
	}
	c.chunksSent = 0
	c.streamStart = time.Time{}
}

// SendError notifies the client of an error. error is never dropped under
// backpressure.
func (c *Controller) SendError(ctx context.Context, message string) {
	c.enqueue(ctx, schema.ServerMessage{
		Type:    schema.ServerError,
		Message: message,
	}, mustDeliver(schema.ServerError))
}

// mustDeliver reports whether msgType must never be dropped under
// backpressure. turn_end and error carry information the client cannot
// recover any other way (the orchestrator has already moved on), so unlike
// every other message type they are retried until delivered or the
// connection dies, rather than dropped after the 5s backpressure wait.
func mustDeliver(t schema.ServerMessageType) bool {
	return t == schema.ServerTurnEnd || t == schema.ServerError
}

// enqueue applies backpressure: try a non-blocking send first, then wait
// up to backpressureWait. Messages for which critical is true are retried
// indefinitely (bounded only by ctx) instead of dropped after the wait.
func (c *Controller) enqueue(ctx context.Context, msg schema.ServerMessage, critical bool) {
	select {
	case c.out <- msg:
		metrics.SetOutputQueueDepth(c.sessionID, len(c.out))
		return
	default:
	}

	logger := o11y.FromContext(ctx)
	logger.Warn(ctx, "output queue full, applying backpressure", "session_id", c.sessionID, "event", "backpressure")

	for {
		timer := time.NewTimer(backpressureWait)
		select {
		case c.out <- msg:
			timer.Stop()
			metrics.SetOutputQueueDepth(c.sessionID, len(c.out))
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if !critical {
				logger.Error(ctx, "output queue timeout, dropping message",
					"session_id", c.sessionID, "event", "message_dropped", "type", string(msg.Type))
				return
			}
			logger.Error(ctx, "output queue still full, retrying critical message",
				"session_id", c.sessionID, "event", "critical_message_retry", "type", string(msg.Type))
		}
	}
}
