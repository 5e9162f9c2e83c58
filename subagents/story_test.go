package subagents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryAgent_ExecuteStreaming_ParsesJSONChunks(t *testing.T) {
	gen := &fakeGenerator{text: `[
		{"text": "Once upon a time.", "culture": "Yoruba", "cultural_claims": [{"claim": "Anansi", "category": "character"}]},
		{"text": "The end.", "culture": "Yoruba"}
	]`}
	agent := NewStoryAgent(gen)

	var chunks []map[string]any
	agent.ExecuteStreaming(context.Background(), map[string]any{"culture": "Yoruba"}, func(c map[string]any) bool {
		chunks = append(chunks, c)
		return true
	})

	require.Len(t, chunks, 2)
	assert.Equal(t, "Once upon a time.", chunks[0]["text"])
	assert.False(t, chunks[0]["is_final"].(bool))
	assert.True(t, chunks[1]["is_final"].(bool))
	assert.Equal(t, "Yoruba", chunks[1]["culture"])
}

func TestStoryAgent_ExecuteStreaming_FallsBackOnUnparsableOutput(t *testing.T) {
	gen := &fakeGenerator{text: "not valid json at all"}
	agent := NewStoryAgent(gen)

	var chunks []map[string]any
	agent.ExecuteStreaming(context.Background(), map[string]any{"culture": "Zulu"}, func(c map[string]any) bool {
		chunks = append(chunks, c)
		return true
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "not valid json at all", chunks[0]["text"])
	assert.Equal(t, "Zulu", chunks[0]["culture"])
	assert.Equal(t, []any{}, chunks[0]["cultural_claims"])
}

func TestStoryAgent_Execute_MergesChunks(t *testing.T) {
	gen := &fakeGenerator{text: `[{"text": "Part one.", "culture": "Igbo", "cultural_claims": [{"claim": "proverb1", "category": "proverb"}]}, {"text": "Part two.", "culture": "Igbo"}]`}
	agent := NewStoryAgent(gen)

	result, err := agent.Execute(context.Background(), map[string]any{"culture": "Igbo"})
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", result["text"])
	assert.True(t, result["is_final"].(bool))
	claims := result["cultural_claims"].([]any)
	assert.Len(t, claims, 1)
}

func TestStoryAgent_Execute_GenerationErrorDegradesGracefully(t *testing.T) {
	gen := &fakeGenerator{err: assertError("boom")}
	agent := NewStoryAgent(gen)

	result, err := agent.Execute(context.Background(), map[string]any{"culture": "Igbo"})
	require.NoError(t, err)
	assert.Equal(t, "I seem to have lost my train of thought... let me try again.", result["text"])
	assert.True(t, result["is_final"].(bool))
}

func TestIsStoryChunkBoundary(t *testing.T) {
	assert.True(t, isStoryChunkBoundary("A paragraph.\n\n"))
	assert.True(t, isStoryChunkBoundary("text with a [SCENE_BREAK] marker"))
	long := "This is a much longer sentence that goes on for quite a while to exceed the eighty character threshold."
	assert.True(t, isStoryChunkBoundary(long))
	assert.False(t, isStoryChunkBoundary("short."))
	assert.False(t, isStoryChunkBoundary("no boundary here yet"))
}

type assertErrorType string

func (e assertErrorType) Error() string { return string(e) }

func assertError(msg string) error { return assertErrorType(msg) }
