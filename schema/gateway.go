package schema

import "time"

// ClientMessageType tags the variant of an inbound ClientMessage.
type ClientMessageType string

const (
	ClientAudioChunk  ClientMessageType = "audio_chunk"
	ClientTextInput   ClientMessageType = "text_input"
	ClientVideoFrame  ClientMessageType = "video_frame"
	ClientInterrupt   ClientMessageType = "interrupt"
	ClientControl     ClientMessageType = "control"
	ClientSessionInit ClientMessageType = "session_init"
	ClientPing        ClientMessageType = "ping"
)

// ClientMessage is the tagged variant received from a client over the
// duplex connection. Fields not relevant to Type are left zero and
// omitted on the wire.
type ClientMessage struct {
	Type ClientMessageType `json:"type"`

	// Seq is client-assigned and purely informational; the gateway never
	// relies on it for ordering.
	Seq int64 `json:"seq,omitempty"`

	Data string `json:"data,omitempty"` // opaque base64 payload (audio/video/text)

	Action string `json:"action,omitempty"` // control: set_language | set_age_group | set_region
	Value  string `json:"value,omitempty"`

	SessionID string `json:"session_id,omitempty"` // session_init, for resumption

	Width  int `json:"width,omitempty"` // video_frame
	Height int `json:"height,omitempty"`
}

// ServerMessageType tags the variant of an outbound ServerMessage.
type ServerMessageType string

const (
	ServerAudioChunk     ServerMessageType = "audio_chunk"
	ServerTextChunk      ServerMessageType = "text_chunk"
	ServerImageReady     ServerMessageType = "image_ready"
	ServerAgentState     ServerMessageType = "agent_state"
	ServerTurnEnd        ServerMessageType = "turn_end"
	ServerInterrupted    ServerMessageType = "interrupted"
	ServerError          ServerMessageType = "error"
	ServerSessionCreated ServerMessageType = "session_created"
	ServerPong           ServerMessageType = "pong"
)

// ServerMessage is the tagged variant sent to a client. Seq is assigned by
// the gateway's send loop at send time, strictly increasing per
// connection starting at 1.
type ServerMessage struct {
	Type      ServerMessageType `json:"type"`
	Seq       int64             `json:"seq"`
	Data      string            `json:"data,omitempty"`
	Agent     string            `json:"agent,omitempty"`
	Timestamp time.Time         `json:"timestamp"`

	State string `json:"state,omitempty"` // agent_state
	URL   string `json:"url,omitempty"`   // image_ready

	SessionID string `json:"session_id,omitempty"` // session_created

	Code    string `json:"code,omitempty"` // error
	Message string `json:"message,omitempty"`
}

// Intent classifies an AgentRequest's purpose.
type Intent string

const (
	IntentRequestStory  Intent = "request_story"
	IntentRequestRiddle Intent = "request_riddle"
	IntentAnswerRiddle  Intent = "answer_riddle"
	IntentRequestImage  Intent = "request_image"
	IntentAskCultural   Intent = "ask_cultural"
	IntentContinue      Intent = "continue"
	IntentGreeting      Intent = "greeting"
	IntentFarewell      Intent = "farewell"
	IntentClarification Intent = "clarification"
	IntentUnknown       Intent = "unknown"
)

// AgentRequest is the normalized input handed to an A2A dispatch.
type AgentRequest struct {
	Intent         Intent         `json:"intent"`
	UserInput      string         `json:"user_input"`
	Culture        string         `json:"culture,omitempty"`
	Theme          string         `json:"theme,omitempty"`
	AgeGroup       string         `json:"age_group,omitempty"`
	SessionContext string         `json:"session_context,omitempty"`
	Preferences    map[string]any `json:"preferences,omitempty"`
	TurnID         string         `json:"turn_id"`
	SessionID      string         `json:"session_id"`
}

// AgentResponseChunk is one unit of output streamed from a sub-agent,
// always passed through the cultural validator before reaching C8.
type AgentResponseChunk struct {
	AgentName          string         `json:"agent_name"`
	Content            string         `json:"content"`
	IsFinal            bool           `json:"is_final"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CulturalConfidence float64        `json:"cultural_confidence"`
	VisualMoment       string         `json:"visual_moment,omitempty"`
}

// TaskState is the lifecycle state of an A2ATask.
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskInProgress TaskState = "in_progress"
	TaskCompleted  TaskState = "completed"
	TaskFailed     TaskState = "failed"
)

// A2ATask records one schema-enforced agent-to-agent dispatch.
type A2ATask struct {
	TaskID      string         `json:"task_id"`
	TaskType    string         `json:"task_type"` // schema name
	Payload     map[string]any `json:"payload"`
	SourceAgent string         `json:"source_agent"`
	TargetAgent string         `json:"target_agent"`
	State       TaskState      `json:"state"`
	CreatedAt   time.Time      `json:"created_at"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ConversationTurn is one append-only entry in a session's turn log.
type ConversationTurn struct {
	TurnID             string    `json:"turn_id"`
	Role               string    `json:"role"` // user | agent
	Content            string    `json:"content"`
	AgentName          string    `json:"agent_name,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Intent             Intent    `json:"intent,omitempty"`
	CulturalConfidence *float64  `json:"cultural_confidence,omitempty"`
}

// SessionMetadata tracks a gateway connection's lifecycle, distinct from
// the chat-history Session type used internally by the memory package.
type SessionMetadata struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
	LanguagePref string    `json:"language_pref,omitempty"`
	RegionPref   string    `json:"region_pref,omitempty"`
	AgeGroup     string    `json:"age_group,omitempty"`
	TurnCount    int       `json:"turn_count"`
}

// VisualMoment is a short scene description extracted from a story chunk,
// triggering a detached image task. Kept distinct from the raw string
// field on AgentResponseChunk so C9 can carry provenance (which turn,
// which agent) alongside the description.
type VisualMoment struct {
	Description string `json:"description"`
	TurnID      string `json:"turn_id"`
	AgentName   string `json:"agent_name"`
}
