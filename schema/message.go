package schema

// Role identifies who produced a Message.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// Message is a single turn in a chat-style exchange with a sub-agent or
// live model. Concrete types below cover every role.
type Message interface {
	GetRole() Role
	GetContent() []ContentPart
	// Text concatenates every TextPart in the message, ignoring other
	// content kinds. Convenience for callers that only care about text.
	Text() string
}

func textOf(parts []ContentPart) string {
	var out string
	for _, p := range parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// SystemMessage carries instructions, persona, or policy text.
type SystemMessage struct {
	Content []ContentPart
}

func NewSystemMessage(text string) SystemMessage {
	return SystemMessage{Content: []ContentPart{TextPart{Text: text}}}
}

func (m SystemMessage) GetRole() Role             { return RoleSystem }
func (m SystemMessage) GetContent() []ContentPart { return m.Content }
func (m SystemMessage) Text() string              { return textOf(m.Content) }

// HumanMessage is user-authored input, possibly multi-modal.
type HumanMessage struct {
	Content []ContentPart
}

func NewHumanMessage(text string) HumanMessage {
	return HumanMessage{Content: []ContentPart{TextPart{Text: text}}}
}

func (m HumanMessage) GetRole() Role             { return RoleHuman }
func (m HumanMessage) GetContent() []ContentPart { return m.Content }
func (m HumanMessage) Text() string              { return textOf(m.Content) }

// AIMessage is a sub-agent or model response, optionally with tool calls.
type AIMessage struct {
	Content   []ContentPart
	ToolCalls []ToolCall
}

func NewAIMessage(text string) AIMessage {
	return AIMessage{Content: []ContentPart{TextPart{Text: text}}}
}

func (m AIMessage) GetRole() Role             { return RoleAI }
func (m AIMessage) GetContent() []ContentPart { return m.Content }
func (m AIMessage) Text() string              { return textOf(m.Content) }

// ToolMessage carries the result of a tool call back into the transcript.
type ToolMessage struct {
	ToolCallID string
	Content    []ContentPart
}

func NewToolMessage(toolCallID, text string) ToolMessage {
	return ToolMessage{ToolCallID: toolCallID, Content: []ContentPart{TextPart{Text: text}}}
}

func (m ToolMessage) GetRole() Role             { return RoleTool }
func (m ToolMessage) GetContent() []ContentPart { return m.Content }
func (m ToolMessage) Text() string              { return textOf(m.Content) }
