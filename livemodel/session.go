// Package livemodel implements the live-model session adapter (C7): a
// thin, provider-agnostic wrapper around a bidirectional streaming
// multimodal model session (audio in/out, text, function calling).
package livemodel

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// EventType identifies the kind of event the live model emitted.
type EventType string

const (
	EventAudioOutput EventType = "audio_output"
	EventTextOutput  EventType = "text_output"
	EventTranscript  EventType = "transcript"
	EventToolCall    EventType = "tool_call"
	EventTurnEnd     EventType = "turn_end"
	EventInterrupted EventType = "interrupted"
	EventError       EventType = "error"
)

// Event is a single message received from the live model.
type Event struct {
	Type     EventType
	Audio    []byte
	Text     string
	ToolCall *schema.ToolCall
	Error    error
}

// Config configures a live-model session.
type Config struct {
	SystemInstruction string
	Tools             []schema.ToolDefinition
	ProjectID         string
	Region            string
	Model             string
	Voice             string
}

// Session is a single persistent bidirectional session against the live
// model. A Session is stateful — it carries the conversation's turn
// context — so each client connection acquires its own.
type Session interface {
	// SendAudio forwards a raw PCM audio chunk.
	SendAudio(ctx context.Context, audio []byte) error

	// SendText forwards a text turn, ending the user's turn.
	SendText(ctx context.Context, text string) error

	// SendVideoFrame forwards a single video frame, used for
	// vision-grounded scene description requests.
	SendVideoFrame(ctx context.Context, frame []byte, mimeType string) error

	// SendFunctionResponse returns a tool call's result to the model so
	// it can continue generating.
	SendFunctionResponse(ctx context.Context, callID, name, result string) error

	// SendInterrupt signals a user-initiated interruption. Most live
	// model providers auto-interrupt on new audio input and treat this
	// as a no-op; see the SendInterrupt resolution in SPEC_FULL.md §9.
	SendInterrupt(ctx context.Context) error

	// Events returns the channel of events the model emits. Closed when
	// the session ends.
	Events() <-chan Event

	// Close tears down the session. Idempotent.
	Close() error
}

// Provider opens new Sessions against a specific live-model backend.
type Provider interface {
	Start(ctx context.Context, cfg Config) (Session, error)
}
