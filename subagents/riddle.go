package subagents

import (
	"fmt"

	"context"
	"strings"
)

const riddleSystemInstruction = `You are the Riddle Master, specializing in African riddle traditions.

Your riddles must:
1. Use the traditional riddle-opening of the specified culture
2. Be culturally relevant and grounded
3. Include a real or authentically-inspired riddle
4. Have 3 progressive hints (easy, medium, obvious)
5. Include a cultural explanation connecting the riddle to tradition

Anti-hallucination rules:
- If using a traditional riddle, name the specific culture
- If creating a new riddle, say "Inspired by {culture} tradition"
- Never attribute a riddle to a culture it does not belong to`

const riddleStructuredInstruction = `Generate a riddle as a JSON object with this exact structure:
{
  "opening": "traditional riddle opening in the culture's language",
  "riddle_text": "the riddle itself, delivered dramatically",
  "answer": "the answer to the riddle",
  "hints": ["subtle hint", "more direct hint", "almost gives it away"],
  "explanation": "cultural context and significance of this riddle",
  "culture": "the specific culture",
  "is_traditional": true or false
}

RULES:
- "hints" MUST have exactly 3 items
- "is_traditional" is true only for riddles you know are authentic
- The opening MUST use the real traditional phrase for the culture

Respond ONLY with valid JSON. No markdown, no code blocks.`

// RiddleAgent generates and manages interactive African riddles, producing
// RiddlePayload-shaped output.
type RiddleAgent struct {
	gen TextGenerator
}

// NewRiddleAgent constructs a RiddleAgent backed by gen.
func NewRiddleAgent(gen TextGenerator) *RiddleAgent {
	return &RiddleAgent{gen: gen}
}

func (a *RiddleAgent) Name() string { return "riddle_agent" }

// Execute returns a single, schema-complete RiddlePayload. Unparseable or
// partial model output is repaired with safe defaults rather than failing.
func (a *RiddleAgent) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	culture, _ := input["culture"].(string)
	if culture == "" {
		culture = "East African"
	}
	difficulty, _ := input["difficulty"].(string)
	if difficulty == "" {
		difficulty = "medium"
	}
	context_, _ := input["session_context"].(string)
	correction, _ := input["_correction"].(string)

	prompt := buildRiddleStructuredPrompt(culture, difficulty, context_, correction)
	raw, err := a.gen.GenerateText(ctx, prompt, riddleStructuredInstruction)
	if err != nil {
		return fixRiddlePayload(map[string]any{}, culture), nil
	}

	payload := parseRiddlePayload(raw, culture)
	return fixRiddlePayload(payload, culture), nil
}

// ExecuteStreaming emits section-labeled chunks as the riddle's sections
// (opening, riddle, hints, answer, explanation) become available. There is
// no section-by-section model API here, so the single generated payload
// is replayed as ordered section chunks — preserving the uniform
// streaming contract other producers share.
func (a *RiddleAgent) ExecuteStreaming(ctx context.Context, input map[string]any, yield func(map[string]any) bool) {
	payload, err := a.Execute(ctx, input)
	if err != nil {
		return
	}

	sections := []string{"opening", "riddle_text", "hints", "answer", "explanation"}
	for i, section := range sections {
		chunk := map[string]any{
			"section":  section,
			"content":  payload[section],
			"is_final": i == len(sections)-1,
		}
		if section == "answer" {
			chunk["culture"] = payload["culture"]
		}
		if !yield(chunk) {
			return
		}
	}
}

func buildRiddleStructuredPrompt(culture, difficulty, context_, correction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate an African riddle as structured JSON.\nCulture: %s\nDifficulty: %s\n", culture, difficulty)
	if context_ != "" {
		fmt.Fprintf(&b, "Context: %s\n", context_)
	}
	if correction != "" {
		fmt.Fprintf(&b, "CORRECTION: %s\n", correction)
	}
	return b.String()
}

func parseRiddlePayload(raw, defaultCulture string) map[string]any {
	if obj, ok := parseJSONObject(raw); ok {
		if _, has := obj["culture"]; !has {
			obj["culture"] = defaultCulture
		}
		return obj
	}

	truncated := strings.TrimSpace(raw)
	if len(truncated) > 500 {
		truncated = truncated[:500]
	}
	if truncated == "" {
		truncated = "What travels without legs?"
	}
	return map[string]any{
		"opening":        "A riddle for you...",
		"riddle_text":    truncated,
		"answer":         "A story",
		"hints":          []any{"It moves from mouth to ear.", "It can cross mountains and rivers.", "Everyone carries it differently."},
		"explanation":    fmt.Sprintf("A riddle inspired by %s oral tradition.", defaultCulture),
		"culture":        defaultCulture,
		"is_traditional": false,
	}
}

// fixRiddlePayload ensures every required RiddlePayload field is present
// and that hints has exactly 3 entries, mirroring _fix_riddle_payload.
func fixRiddlePayload(payload map[string]any, culture string) map[string]any {
	fixed := make(map[string]any, len(payload))
	for k, v := range payload {
		fixed[k] = v
	}

	setDefault(fixed, "opening", "A riddle for you...")
	setDefault(fixed, "riddle_text", "What has no beginning and no end?")
	setDefault(fixed, "answer", "A circle")
	setDefault(fixed, "culture", culture)
	setDefault(fixed, "explanation", fmt.Sprintf("A riddle from %s tradition.", culture))
	setDefault(fixed, "is_traditional", false)

	hints, _ := fixed["hints"].([]any)
	for len(hints) < 3 {
		hints = append(hints, "Think carefully...")
	}
	fixed["hints"] = hints[:3]

	return fixed
}

func setDefault(m map[string]any, key string, value any) {
	if v, ok := m[key]; !ok || v == nil || v == "" {
		m[key] = value
	}
}
