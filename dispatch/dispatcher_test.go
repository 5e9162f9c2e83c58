package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/lookatitude/beluga-ai/validate"
)

func TestCreateTask_ValidPayload(t *testing.T) {
	d := New(validate.NewRegistry())
	task, err := d.CreateTask("StoryRequest", map[string]any{
		"culture": "yoruba", "theme": "trickster",
	}, "orchestrator", "story_agent")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.State != TaskPending {
		t.Errorf("State = %q, want pending", task.State)
	}
	if task.TaskID == "" {
		t.Errorf("TaskID is empty")
	}
}

func TestCreateTask_InvalidPayloadRejected(t *testing.T) {
	d := New(validate.NewRegistry())
	_, err := d.CreateTask("StoryRequest", map[string]any{"culture": "yoruba"}, "o", "story_agent")
	if err == nil {
		t.Fatalf("CreateTask() error = nil, want schema violation")
	}
}

func TestDispatch_SucceedsFirstTry(t *testing.T) {
	d := New(validate.NewRegistry())
	result := d.Dispatch(context.Background(), func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"text": "Once upon a time...", "culture": "zulu", "is_final": true}, nil
	}, map[string]any{"culture": "zulu", "theme": "wisdom"}, "StoryRequest", "StoryChunk", "story_agent")

	if result["text"] != "Once upon a time..." {
		t.Errorf("result = %v, want the agent's own output", result)
	}
}

func TestDispatch_RetriesOnSchemaViolationThenSucceeds(t *testing.T) {
	d := New(validate.NewRegistry())
	calls := 0
	result := d.Dispatch(context.Background(), func(ctx context.Context, input map[string]any) (map[string]any, error) {
		calls++
		if calls == 1 {
			return map[string]any{"culture": "zulu"}, nil // missing required "text"
		}
		if _, ok := input["_correction"]; !ok {
			t.Errorf("retry input missing _correction field")
		}
		return map[string]any{"text": "fixed", "culture": "zulu"}, nil
	}, map[string]any{"culture": "zulu", "theme": "wisdom"}, "StoryRequest", "StoryChunk", "story_agent")

	if calls != 2 {
		t.Fatalf("agent called %d times, want 2", calls)
	}
	if result["text"] != "fixed" {
		t.Errorf("result = %v, want the retried output", result)
	}
}

func TestDispatch_FallsBackAfterExhaustingRetries(t *testing.T) {
	d := New(validate.NewRegistry())
	result := d.Dispatch(context.Background(), func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"culture": "zulu"}, nil // always missing "text"
	}, map[string]any{"culture": "zulu", "theme": "wisdom"}, "StoryRequest", "StoryChunk", "story_agent")

	if result["is_final"] != true {
		t.Errorf("result = %v, want the StoryChunk safe fallback", result)
	}
}

func TestDispatch_AgentErrorFallsBack(t *testing.T) {
	d := New(validate.NewRegistry())
	result := d.Dispatch(context.Background(), func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return nil, errors.New("boom")
	}, map[string]any{"culture": "zulu"}, "RiddleRequest", "RiddlePayload", "riddle_agent")

	if result["answer"] != "A mountain" {
		t.Errorf("result = %v, want the RiddlePayload safe fallback", result)
	}
}

func TestDispatchStreaming_DropsUnfixableChunk(t *testing.T) {
	d := New(validate.NewRegistry())
	var got []map[string]any

	err := d.DispatchStreaming(context.Background(), func(ctx context.Context, input map[string]any, yield func(map[string]any) bool) {
		yield(map[string]any{"text": "part one", "culture": "zulu", "is_final": false})
		yield(map[string]any{"culture": "zulu"}) // missing text, unfixable
		yield(map[string]any{"text": "part two", "is_final": true})
	}, map[string]any{"culture": "zulu", "theme": "wisdom"}, "StoryRequest", "StoryChunk", "story_agent",
		func(chunk map[string]any) bool {
			got = append(got, chunk)
			return true
		})
	if err != nil {
		t.Fatalf("DispatchStreaming() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2 (one dropped)", len(got))
	}
	if got[1]["culture"] != "african" {
		t.Errorf("second chunk culture = %v, want defaulted to african", got[1]["culture"])
	}
}

func TestSafeFallback_UnknownSchema(t *testing.T) {
	result := SafeFallback("NoSuchSchema")
	if _, ok := result["error"]; !ok {
		t.Errorf("result = %v, want an error field for unknown schema", result)
	}
}

func TestGetAgentCard(t *testing.T) {
	card, ok := GetAgentCard("cultural_grounding")
	if !ok {
		t.Fatalf("GetAgentCard() ok = false")
	}
	if card.Capabilities.MaxLatencyMS != 50 {
		t.Errorf("MaxLatencyMS = %d, want 50", card.Capabilities.MaxLatencyMS)
	}
}

func TestListAgentCards_HasAllFive(t *testing.T) {
	if got := len(ListAgentCards()); got != 5 {
		t.Errorf("ListAgentCards() len = %d, want 5", got)
	}
}
