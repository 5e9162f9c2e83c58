package schema

import "time"

// Turn is one request/response pair in a chat-style transcript, as kept
// by the memory package's buffer and summary implementations.
type Turn struct {
	Input     Message   `json:"input"`
	Output    Message   `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the generic chat-history record backing the memory package.
// It is distinct from SessionMetadata (gateway.go), which tracks the
// gateway connection's own lifecycle rather than message history.
type Session struct {
	ID        string         `json:"id"`
	Turns     []Turn         `json:"turns,omitempty"`
	State     map[string]any `json:"state,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
