package subagents

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// GeminiTextGenerator is a TextGenerator backed by the non-live Gemini
// content generation API: the fast, single-turn text model the
// story/riddle/cultural producers call, distinct from the duplex live
// session the orchestrator holds with the user.
type GeminiTextGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiTextGenerator builds a GeminiTextGenerator calling model through
// client.
func NewGeminiTextGenerator(client *genai.Client, model string) *GeminiTextGenerator {
	return &GeminiTextGenerator{client: client, model: model}
}

func (g *GeminiTextGenerator) config(systemInstruction string) *genai.GenerateContentConfig {
	if systemInstruction == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
}

// GenerateText returns the full completion for prompt in one call.
func (g *GeminiTextGenerator) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, g.config(systemInstruction))
	if err != nil {
		return "", fmt.Errorf("subagents: gemini text generation: %w", err)
	}
	return resp.Text(), nil
}

// StreamText yields the completion incrementally.
func (g *GeminiTextGenerator) StreamText(ctx context.Context, prompt, systemInstruction string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model,
			[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, g.config(systemInstruction)) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}
