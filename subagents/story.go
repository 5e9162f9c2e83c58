package subagents

import (
	"context"
	"fmt"
	"strings"

	"github.com/lookatitude/beluga-ai/schema"
)

const storySystemInstruction = `You are the Story Generation Engine, a master African oral storyteller (Griot).

Your stories must:
1. Begin with the traditional opening of the specified culture
2. Include 2-3 culturally authentic characters with meaningful names
3. Embed at least one genuine proverb from the tradition
4. Include a call-and-response moment (mark with [CALL_RESPONSE])
5. Build to a moral lesson that emerges naturally from the narrative
6. End with the traditional closing of the culture

Style requirements:
- Write as if speaking aloud to a gathered audience
- Use "..." for dramatic pauses
- Include sensory details (sounds, smells, sights of the setting)
- Weave in local language phrases with pronunciation hints

Streaming instructions:
- Generate in natural paragraph-sized chunks
- Mark scene transitions with [SCENE_BREAK]
- Mark visually rich moments with [VISUAL: brief description]

Anti-hallucination rules:
- Only use cultural elements you are confident about
- Prefix uncertain claims with "In some tellings..."
- Do not invent proverbs -- use known ones or mark as "inspired by"
- Name the specific ethnic group, not just the country`

const storyStructuredInstruction = `Generate a story chunk as a JSON object with this exact structure:
{
  "text": "the story text for this chunk",
  "culture": "the culture this references",
  "cultural_claims": [{"claim": "specific cultural assertion", "category": "character|proverb|custom|location|language|historical"}],
  "scene_description": "optional visual scene description or null",
  "is_final": false
}

CRITICAL: every cultural assertion in the text MUST be listed in cultural_claims.
Respond ONLY with valid JSON. No markdown, no code blocks.`

// StoryAgent generates culturally-rooted stories and declares every
// cultural assertion it makes as an explicit cultural_claims[] entry.
type StoryAgent struct {
	gen TextGenerator
}

// NewStoryAgent constructs a StoryAgent backed by gen.
func NewStoryAgent(gen TextGenerator) *StoryAgent {
	return &StoryAgent{gen: gen}
}

func (a *StoryAgent) Name() string { return "story_agent" }

// Execute merges every streamed chunk into one final StoryChunk payload.
func (a *StoryAgent) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	var chunks []map[string]any
	a.ExecuteStreaming(ctx, input, func(c map[string]any) bool {
		chunks = append(chunks, c)
		return true
	})

	culture, _ := input["culture"].(string)
	if culture == "" {
		culture = "african"
	}
	if len(chunks) == 0 {
		return map[string]any{
			"text":            "The story awaits...",
			"culture":         culture,
			"cultural_claims": []any{},
			"is_final":        true,
		}, nil
	}

	var text strings.Builder
	var claims []any
	for i, c := range chunks {
		if i > 0 {
			text.WriteString(" ")
		}
		if t, ok := c["text"].(string); ok {
			text.WriteString(t)
		}
		if cs, ok := c["cultural_claims"].([]any); ok {
			claims = append(claims, cs...)
		}
	}
	return map[string]any{
		"text":            text.String(),
		"culture":         culture,
		"cultural_claims": claims,
		"is_final":        true,
	}, nil
}

// ExecuteStreaming generates the story as structured JSON and yields each
// parsed StoryChunk. Unparseable output degrades to a minimal valid chunk
// rather than failing the dispatch.
func (a *StoryAgent) ExecuteStreaming(ctx context.Context, input map[string]any, yield func(map[string]any) bool) {
	culture, _ := input["culture"].(string)
	if culture == "" {
		culture = "african"
	}
	theme, _ := input["theme"].(string)
	if theme == "" {
		theme = "wisdom"
	}
	complexity, _ := input["complexity"].(string)
	if complexity == "" {
		complexity = "adult"
	}
	context_, _ := input["session_context"].(string)
	correction, _ := input["_correction"].(string)

	prompt := buildStoryStructuredPrompt(culture, theme, complexity, context_, correction)
	raw, err := a.gen.GenerateText(ctx, prompt, storyStructuredInstruction)
	if err != nil {
		yield(map[string]any{
			"text":            "I seem to have lost my train of thought... let me try again.",
			"culture":         culture,
			"cultural_claims": []any{},
			"is_final":        true,
		})
		return
	}

	chunks := parseJSONObjects(raw)
	if len(chunks) == 0 {
		chunks = []map[string]any{{
			"text":            strings.TrimSpace(raw),
			"culture":         culture,
			"cultural_claims": []any{},
		}}
	}

	for i, chunk := range chunks {
		if _, ok := chunk["culture"]; !ok {
			chunk["culture"] = culture
		}
		if _, ok := chunk["cultural_claims"]; !ok {
			chunk["cultural_claims"] = []any{}
		}
		chunk["is_final"] = i == len(chunks)-1
		if !yield(chunk) {
			return
		}
	}
}

func buildStoryStructuredPrompt(culture, theme, complexity, context_, correction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate an African oral tradition story as structured JSON.\n")
	fmt.Fprintf(&b, "Culture: %s\nTheme: %s\nAudience: %s\n", culture, theme, complexity)
	if context_ != "" {
		fmt.Fprintf(&b, "Context: %s\n", context_)
	}
	if correction != "" {
		fmt.Fprintf(&b, "CORRECTION: %s\n", correction)
	}
	b.WriteString("Generate 3-5 JSON chunks, each a complete paragraph. Every cultural reference MUST appear in cultural_claims[].")
	return b.String()
}

// StreamLegacy streams AgentResponseChunk values for direct passthrough to
// the streaming controller, grounded on story_agent.py's generate()
// prose-streaming path: boundary detection at paragraph break, explicit
// scene markers, sentence boundary beyond 80 chars, or a 300-char buffer
// overflow, with [VISUAL: ...] markers extracted to a side field.
func (a *StoryAgent) StreamLegacy(ctx context.Context, req schema.AgentRequest) func(yield func(schema.AgentResponseChunk, error) bool) {
	return func(yield func(schema.AgentResponseChunk, error) bool) {
		culture := req.Culture
		if culture == "" {
			culture = "a West African"
		}
		prompt := buildStoryLegacyPrompt(req, culture)

		var buffer string
		for text, err := range a.gen.StreamText(ctx, prompt, storySystemInstruction) {
			if err != nil {
				yield(schema.AgentResponseChunk{AgentName: a.Name(), IsFinal: true}, err)
				return
			}
			buffer += text

			var visualMoment string
			if idx := strings.Index(buffer, "[VISUAL:"); idx >= 0 {
				if end := strings.Index(buffer[idx:], "]"); end >= 0 {
					visualMoment = strings.TrimSpace(buffer[idx+8 : idx+end])
					buffer = buffer[:idx] + buffer[idx+end+1:]
				}
			}

			if isStoryChunkBoundary(buffer) {
				chunk := schema.AgentResponseChunk{
					AgentName:    a.Name(),
					Content:      strings.TrimSpace(buffer) + " ",
					VisualMoment: visualMoment,
				}
				if !yield(chunk, nil) {
					return
				}
				buffer = ""
			}
		}
		if strings.TrimSpace(buffer) != "" {
			yield(schema.AgentResponseChunk{AgentName: a.Name(), Content: strings.TrimSpace(buffer)}, nil)
		}
		yield(schema.AgentResponseChunk{AgentName: a.Name(), IsFinal: true}, nil)
	}
}

func buildStoryLegacyPrompt(req schema.AgentRequest, culture string) string {
	theme := req.Theme
	if theme == "" {
		theme = "wisdom"
	}
	complexity := req.AgeGroup
	if complexity == "" {
		complexity = "adult"
	}
	var context_ string
	if req.SessionContext != "" {
		context_ = fmt.Sprintf("\nCONVERSATION CONTEXT:\n%s\nContinue the conversation naturally.", req.SessionContext)
	}
	return fmt.Sprintf(
		"Generate an immersive African oral tradition story.\n\nPARAMETERS:\n- Culture/Tradition: %s\n- Theme: %s\n- Audience complexity: %s%s\n\nBegin the story now:",
		culture, theme, complexity, context_,
	)
}

func isStoryChunkBoundary(text string) bool {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(text, "\n\n") {
		return true
	}
	if strings.Contains(trimmed, "[SCENE_BREAK]") || strings.Contains(trimmed, "[CALL_RESPONSE]") {
		return true
	}
	if len(trimmed) > 80 {
		for _, e := range []string{".", "!", "?", `..."`} {
			if strings.HasSuffix(trimmed, e) {
				return true
			}
		}
	}
	return len(trimmed) > 300
}
