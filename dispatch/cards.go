// Package dispatch implements the A2A dispatcher (C3): schema-enforced
// unary and streaming calls into sub-agents, with a static Agent Card
// registry describing each agent's declared capabilities.
package dispatch

// Capabilities describes what an agent accepts, produces, and how fast.
type Capabilities struct {
	InputSchemas  []string
	OutputSchemas []string
	Streaming     bool
	MaxLatencyMS  int
}

// Card is an Agent Card: the capability declaration an agent advertises
// for A2A discovery.
type Card struct {
	Name         string
	Description  string
	Version      string
	Capabilities Capabilities
}

// agentCards is the static registry of sub-agent capabilities, mirroring
// the gateway's fixed fleet of story/riddle/cultural/visual/memory agents.
var agentCards = map[string]Card{
	"story_agent": {
		Name:        "story_agent",
		Description: "Generates culturally-rooted African oral tradition stories",
		Version:     "1.0.0",
		Capabilities: Capabilities{
			InputSchemas:  []string{"StoryRequest"},
			OutputSchemas: []string{"StoryChunk"},
			Streaming:     true,
			MaxLatencyMS:  500,
		},
	},
	"riddle_agent": {
		Name:        "riddle_agent",
		Description: "Generates interactive African riddles with hints and scoring",
		Version:     "1.0.0",
		Capabilities: Capabilities{
			InputSchemas:  []string{"RiddleRequest"},
			OutputSchemas: []string{"RiddlePayload"},
			Streaming:     false,
			MaxLatencyMS:  500,
		},
	},
	"cultural_grounding": {
		Name:        "cultural_grounding",
		Description: "Validates cultural claims and enriches content",
		Version:     "1.0.0",
		Capabilities: Capabilities{
			InputSchemas:  []string{"StoryChunk"},
			OutputSchemas: []string{"ValidatedChunk"},
			Streaming:     true,
			MaxLatencyMS:  50,
		},
	},
	"visual_agent": {
		Name:        "visual_agent",
		Description: "Generates culturally appropriate scene illustrations",
		Version:     "1.0.0",
		Capabilities: Capabilities{
			InputSchemas:  []string{"ImageRequest"},
			OutputSchemas: []string{"ImageResult"},
			Streaming:     false,
			MaxLatencyMS:  15000,
		},
	},
	"memory_agent": {
		Name:        "memory_agent",
		Description: "Persists conversation turns and manages session context",
		Version:     "1.0.0",
		Capabilities: Capabilities{
			Streaming:    false,
			MaxLatencyMS: 200,
		},
	},
}

// GetAgentCard returns the Card for name, if registered.
func GetAgentCard(name string) (Card, bool) {
	c, ok := agentCards[name]
	return c, ok
}

// ListAgentCards returns every registered Card.
func ListAgentCards() []Card {
	out := make([]Card, 0, len(agentCards))
	for _, c := range agentCards {
		out = append(out, c)
	}
	return out
}
