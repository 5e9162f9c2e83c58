// Package subagents implements the sub-agent interface (C5): the uniform
// producer contract shared by the story, riddle, visual, and cultural
// sub-agents. Each producer is schema-typed on both ends. Function-call
// requests reach the story, riddle and visual producers through the A2A
// dispatcher (package dispatch); the orchestrator calls the visual
// producer directly for images triggered by story chunks, and calls the
// cultural agent's AnswerQuestion directly.
package subagents

import (
	"context"
	"encoding/json"
	"iter"
	"regexp"
	"strings"
)

// TextGenerator is the text-model backend a producer uses to turn a prompt
// into prose or structured JSON. It is deliberately narrower than
// livemodel.Session: sub-agents call a fast text-only model, not the
// duplex live session the orchestrator holds with the user.
type TextGenerator interface {
	// GenerateText returns the full completion for prompt in one call.
	GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error)

	// StreamText yields the completion incrementally.
	StreamText(ctx context.Context, prompt, systemInstruction string) iter.Seq2[string, error]
}

// Producer is the uniform contract every sub-agent implements: a
// schema-typed unary call and a schema-typed streaming call. The A2A
// dispatcher adapts these directly to its AgentFunc/StreamAgentFunc shapes.
type Producer interface {
	// Name is the agent's registry name, matching its dispatch.Card entry.
	Name() string

	// Execute runs the producer to completion and returns one payload.
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)

	// ExecuteStreaming runs the producer and yields payloads as they become
	// available. yield returning false stops generation early.
	ExecuteStreaming(ctx context.Context, input map[string]any, yield func(map[string]any) bool)
}

var codeFenceLine = regexp.MustCompile(`^\s*` + "```")

// stripCodeFence removes a leading/trailing markdown code fence, matching
// the "strip ``` lines" behavior every sub-agent's JSON parser applies
// before attempting json.Unmarshal.
func stripCodeFence(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if codeFenceLine.MatchString(l) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// parseJSONObject attempts to unmarshal cleaned as a single JSON object.
func parseJSONObject(raw string) (map[string]any, bool) {
	cleaned := stripCodeFence(raw)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

// parseJSONObjects attempts to unmarshal cleaned as a JSON array of
// objects, falling back to regex-scanning for brace-delimited objects —
// mirroring story_agent.py's _parse_story_chunks fallback chain.
func parseJSONObjects(raw string) []map[string]any {
	cleaned := stripCodeFence(raw)

	var arr []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		return arr
	}

	if obj, ok := parseJSONObject(cleaned); ok {
		return []map[string]any{obj}
	}

	var objs []map[string]any
	for _, match := range braceObject.FindAllString(cleaned, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(match), &obj); err == nil {
			if _, hasText := obj["text"]; hasText {
				objs = append(objs, obj)
			}
		}
	}
	return objs
}

var braceObject = regexp.MustCompile(`\{[^{}]*\}`)
