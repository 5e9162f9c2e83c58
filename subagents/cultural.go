package subagents

import (
	"context"
	"fmt"

	"github.com/lookatitude/beluga-ai/cultural"
	"github.com/lookatitude/beluga-ai/schema"
)

const culturalSystemInstruction = `You provide rich cultural context about African oral traditions.

Include:
- Historical background
- Connection to oral traditions
- Local language terms with pronunciation
- How this connects to daily life and values
- Related proverbs or sayings

Be specific to the ethnic group, not just the country or continent.
If you are unsure about details, say so honestly.`

// CulturalAgent is the C5 producer view of the cultural validator (C4): its
// Execute validates a StoryChunk into a ValidatedChunk via
// cultural.Validator, and it separately answers direct cultural questions
// (the ask_cultural intent) through a text model.
type CulturalAgent struct {
	validator *cultural.Validator
	gen       TextGenerator
}

// NewCulturalAgent constructs a CulturalAgent. gen may be nil if this
// deployment never routes ask_cultural intents to this producer.
func NewCulturalAgent(validator *cultural.Validator, gen TextGenerator) *CulturalAgent {
	return &CulturalAgent{validator: validator, gen: gen}
}

func (a *CulturalAgent) Name() string { return "cultural_grounding" }

// Execute validates a StoryChunk-shaped input and returns a ValidatedChunk.
func (a *CulturalAgent) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	chunk := toValidatorChunk(input)
	validated := a.validator.Validate(ctx, chunk)
	return fromValidatorResult(validated), nil
}

// ExecuteStreaming validates input once and yields the single
// ValidatedChunk, since validation has no meaningful partial output.
func (a *CulturalAgent) ExecuteStreaming(ctx context.Context, input map[string]any, yield func(map[string]any) bool) {
	result, err := a.Execute(ctx, input)
	if err != nil {
		return
	}
	yield(result)
}

// AnswerQuestion answers a direct cultural question (the ask_cultural
// intent), returning prose rather than a schema-typed payload.
func (a *CulturalAgent) AnswerQuestion(ctx context.Context, req schema.AgentRequest) (string, error) {
	culture := req.Culture
	if culture == "" {
		culture = "African"
	}
	prompt := fmt.Sprintf("Provide rich cultural context about: %s\n\nCulture/Region: %s", req.UserInput, culture)
	return a.gen.GenerateText(ctx, prompt, culturalSystemInstruction)
}

func toValidatorChunk(input map[string]any) cultural.Chunk {
	text, _ := input["text"].(string)
	culture, _ := input["culture"].(string)
	isFinal, _ := input["is_final"].(bool)

	var claims []cultural.Claim
	if raw, ok := input["cultural_claims"].([]any); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				claimText, _ := m["claim"].(string)
				category, _ := m["category"].(string)
				claims = append(claims, cultural.Claim{Text: claimText, Category: category})
			}
		}
	}

	return cultural.Chunk{Text: text, Culture: culture, Claims: claims, IsFinal: isFinal}
}

func fromValidatorResult(v cultural.Validated) map[string]any {
	return map[string]any{
		"text":            v.Text,
		"confidence":      v.Confidence,
		"corrections":     v.Corrections,
		"rejected_claims": v.RejectedClaims,
		"is_final":        v.IsFinal,
	}
}
