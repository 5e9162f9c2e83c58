// Package session implements the primary orchestrator (C9): the central
// state machine that drives one client's conversation, piping audio/text
// to the live model, dispatching function calls to sub-agents over A2A,
// and feeding results back for speech synthesis.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lookatitude/beluga-ai/dispatch"
	"github.com/lookatitude/beluga-ai/livemodel"
	"github.com/lookatitude/beluga-ai/memory"
	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/schema"
	"github.com/lookatitude/beluga-ai/streaming"
	"github.com/lookatitude/beluga-ai/subagents"
)

// State is one state in the orchestrator's conversation state machine.
type State string

const (
	StateIdle        State = "idle"
	StateListening   State = "listening"
	StateProcessing  State = "processing"
	StateStreaming   State = "streaming"
	StateInterrupted State = "interrupted"
	StateError       State = "error"
)

// SystemInstruction is the live-model persona and behavior contract,
// including the tool-call routing guidance that drives function calling.
const SystemInstruction = `You are HadithiAI, the world's first African Immersive Oral AI Agent.

IDENTITY:
- You are a master storyteller (Griot) in the African oral tradition
- You speak with warmth, rhythm, and cultural authenticity
- You naturally use call-and-response patterns
- You weave proverbs and wisdom into conversation
- You adapt your language and tone to the listener

BEHAVIOR:
- Begin conversations with a culturally appropriate greeting
- Always ground stories in specific African cultures (name them)
- Use traditional story openings from the relevant culture
- Include moral lessons naturally, never forced
- Encourage listener participation (questions, responses)
- If interrupted, gracefully incorporate the interruption

TOOLS:
When the user's request matches one of these categories, call the corresponding function:
- tell_story: When the user wants to hear a story or tale
- pose_riddle: When the user wants a riddle, puzzle, or game
- generate_scene_image: When the user wants to see or visualize a scene
- get_cultural_context: When you need specific cultural details or facts

CONSTRAINTS:
- Never fabricate cultural facts — use get_cultural_context if unsure
- Never mix cultures inappropriately
- Always credit the cultural origin of stories and riddles
- Keep responses conversational, not academic
- Maintain the oral tradition feel — this is spoken, not written`

// ToolDeclarations are the live-model function declarations that route
// user intent to the corresponding sub-agent.
var ToolDeclarations = []schema.ToolDefinition{
	{
		Name:        "tell_story",
		Description: "Generate an African oral tradition story. Call this when the user wants to hear a story, tale, or narrative from African traditions.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"culture": map[string]any{"type": "string", "description": "The African culture/tradition to draw from"},
				"theme":   map[string]any{"type": "string", "description": "Story theme (trickster, creation, wisdom, courage, love, origin)"},
				"complexity": map[string]any{
					"type": "string", "enum": []any{"child", "teen", "adult"},
					"description": "Target audience complexity level",
				},
			},
			"required": []any{"culture", "theme"},
		},
	},
	{
		Name:        "pose_riddle",
		Description: "Generate an interactive African riddle. Call this when the user wants a riddle, puzzle, or word game.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"culture":    map[string]any{"type": "string", "description": "The African culture to draw the riddle from"},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"culture"},
		},
	},
	{
		Name:        "generate_scene_image",
		Description: "Create a visual illustration of the current story scene. Call this when the user wants to see or visualize something.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"scene_description": map[string]any{"type": "string", "description": "Detailed description of the scene to illustrate"},
				"culture":           map[string]any{"type": "string", "description": "Cultural context for art style"},
			},
			"required": []any{"scene_description"},
		},
	},
	{
		Name:        "get_cultural_context",
		Description: "Retrieve cultural background information. Call this when you need specific facts about African traditions, customs, or history.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic":   map[string]any{"type": "string", "description": "The cultural topic to look up"},
				"culture": map[string]any{"type": "string", "description": "The specific African culture"},
			},
			"required": []any{"topic"},
		},
	},
}

// funcRoute names the target producer and the A2A schema pair a function
// call uses, when one applies (cultural context has no structured schema —
// it is a direct text-generation call).
type funcRoute struct {
	agent        string
	inputSchema  string
	outputSchema string
}

var funcRoutes = map[string]funcRoute{
	"tell_story":           {agent: "story_agent", inputSchema: "StoryRequest", outputSchema: "StoryChunk"},
	"pose_riddle":          {agent: "riddle_agent", inputSchema: "RiddleRequest", outputSchema: "RiddlePayload"},
	"generate_scene_image": {agent: "visual_agent", inputSchema: "ImageRequest", outputSchema: "ImageResult"},
}

// Orchestrator drives one client connection's conversation lifecycle.
type Orchestrator struct {
	sessionID string

	memory     *memory.GatewaySession
	dispatcher *dispatch.Dispatcher
	breakers   *resilience.Registry
	stream     *streaming.Controller
	cultural   *subagents.CulturalAgent

	liveProvider livemodel.Provider
	liveSession  livemodel.Session
	producers    *Producers

	mu            sync.Mutex
	state         State
	currentTurnID string
	activeTasks   map[string]context.CancelFunc
}

// New builds an Orchestrator. producers must be keyed by agent name
// ("story_agent", "riddle_agent", "visual_agent") and cultural handles
// both validation (C4) and direct cultural-context answers.
func New(
	sessionID string,
	mem *memory.GatewaySession,
	dispatcher *dispatch.Dispatcher,
	breakers *resilience.Registry,
	stream *streaming.Controller,
	cultural *subagents.CulturalAgent,
	liveProvider livemodel.Provider,
) *Orchestrator {
	return &Orchestrator{
		sessionID:    sessionID,
		memory:       mem,
		dispatcher:   dispatcher,
		breakers:     breakers,
		stream:       stream,
		cultural:     cultural,
		liveProvider: liveProvider,
		state:        StateIdle,
		activeTasks:  make(map[string]context.CancelFunc),
	}
}

type producerSet struct {
	mu     sync.RWMutex
	byName map[string]subagents.Producer
}

func newProducerSet() *producerSet {
	return &producerSet{byName: make(map[string]subagents.Producer)}
}

func (p *producerSet) register(producer subagents.Producer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byName[producer.Name()] = producer
}

func (p *producerSet) get(name string) (subagents.Producer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prod, ok := p.byName[name]
	return prod, ok
}

// Producers holds the orchestrator's registered sub-agents, separate from
// Orchestrator so it can be built once and shared across reconnects of the
// same logical session if ever needed.
type Producers struct {
	set *producerSet
}

// NewProducers builds a Producers registry from the given sub-agents.
func NewProducers(story, riddle, visual subagents.Producer) *Producers {
	p := &Producers{set: newProducerSet()}
	p.set.register(story)
	p.set.register(riddle)
	p.set.register(visual)
	return p
}

// producers is attached lazily via SetProducers since New's signature is
// already wide; kept as a field assignment to avoid a combinatorial
// constructor explosion as sub-agent wiring grows.
func (o *Orchestrator) SetProducers(p *Producers) { o.producers = p }

// Initialize creates the session in memory, starts a live-model session
// with the tool declarations wired, and begins listening for model events.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	start := time.Now()
	log := o11y.FromContext(ctx)

	o.memory.CreateSession(ctx, func() schema.SessionMetadata {
		return schema.SessionMetadata{SessionID: o.sessionID, CreatedAt: time.Now(), LastActive: time.Now()}
	})

	sess, err := o.liveProvider.Start(ctx, livemodel.Config{
		SystemInstruction: SystemInstruction,
		Tools:             ToolDeclarations,
	})
	if err != nil {
		return fmt.Errorf("starting live-model session: %w", err)
	}
	o.liveSession = sess

	go o.listenForModelEvents(ctx)

	o.setState(StateIdle)
	log.Info(ctx, "orchestrator initialized", "session_id", o.sessionID, "event", "orchestrator_init",
		"latency_ms", time.Since(start).Milliseconds())
	return nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// State returns the orchestrator's current conversation state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// HandleAudioChunk forwards a raw PCM chunk to the live model, opening a
// turn if one isn't already in flight.
func (o *Orchestrator) HandleAudioChunk(ctx context.Context, audio []byte) error {
	o.mu.Lock()
	if o.state == StateIdle || o.state == StateListening {
		o.state = StateListening
		if o.currentTurnID == "" {
			o.currentTurnID = newTurnID()
		}
	}
	o.mu.Unlock()

	return o.liveSession.SendAudio(ctx, audio)
}

// HandleVideoFrame forwards a video frame to the live model for
// vision-grounded requests (e.g. showing a book page or an object).
func (o *Orchestrator) HandleVideoFrame(ctx context.Context, frame []byte, mimeType string) error {
	return o.liveSession.SendVideoFrame(ctx, frame, mimeType)
}

// HandleTextInput forwards text input, opening a new turn and recording
// the user's turn in memory.
func (o *Orchestrator) HandleTextInput(ctx context.Context, text string) error {
	turnID := newTurnID()
	o.mu.Lock()
	o.currentTurnID = turnID
	o.state = StateProcessing
	o.mu.Unlock()

	o11y.FromContext(ctx).Info(ctx, "text input", "session_id", o.sessionID, "event", "text_input", "turn_id", turnID)

	o.memory.SaveTurn(ctx, schema.ConversationTurn{
		TurnID: turnID, Role: "user", Content: text, Timestamp: time.Now(),
	})

	return o.liveSession.SendText(ctx, text)
}

// HandleInterrupt cancels in-flight sub-agent tasks, tells the live model
// to stop generating, drains the output queue, and advances to a fresh
// turn.
func (o *Orchestrator) HandleInterrupt(ctx context.Context) {
	log := o11y.FromContext(ctx)

	o.mu.Lock()
	log.Info(ctx, "user interrupted", "session_id", o.sessionID, "event", "interrupt", "turn_id", o.currentTurnID)
	o.state = StateInterrupted
	for _, cancel := range o.activeTasks {
		cancel()
	}
	o.activeTasks = make(map[string]context.CancelFunc)
	o.mu.Unlock()

	if err := o.liveSession.SendInterrupt(ctx); err != nil {
		log.Warn(ctx, "send interrupt failed", "session_id", o.sessionID, "error", err)
	}

	o.stream.DrainOutbound()

	o.mu.Lock()
	o.state = StateListening
	o.currentTurnID = newTurnID()
	o.mu.Unlock()
}

// HandleControl applies a preference change (language, age group, region).
func (o *Orchestrator) HandleControl(ctx context.Context, action, value string) {
	o11y.FromContext(ctx).Info(ctx, "control message", "session_id", o.sessionID, "event", "control", "action", action)

	switch action {
	case "set_language":
		o.memory.UpdatePreferences(ctx, map[string]any{"language_pref": value})
	case "set_age_group":
		o.memory.UpdatePreferences(ctx, map[string]any{"age_group": value})
	case "set_region":
		o.memory.UpdatePreferences(ctx, map[string]any{"region_pref": value})
	}
}

// RestoreSession loads a prior session's memory for continuity.
func (o *Orchestrator) RestoreSession(ctx context.Context) bool {
	restored := o.memory.LoadSession(ctx)
	if restored {
		o11y.FromContext(ctx).Info(ctx, "session restored", "session_id", o.sessionID, "event", "session_restore")
	}
	return restored
}

// Shutdown cancels active tasks, releases the live-model session, and
// performs the final memory write.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o11y.FromContext(ctx).Info(ctx, "orchestrator shutting down", "session_id", o.sessionID)

	o.mu.Lock()
	for _, cancel := range o.activeTasks {
		cancel()
	}
	o.activeTasks = make(map[string]context.CancelFunc)
	o.mu.Unlock()

	if o.liveSession != nil {
		_ = o.liveSession.Close()
	}

	o.memory.FinalizeSession(ctx)
}

// listenForModelEvents drains the live model's event channel, routing
// each event to the appropriate handler. Runs for the lifetime of the
// session; returns when the channel closes.
func (o *Orchestrator) listenForModelEvents(ctx context.Context) {
	log := o11y.FromContext(ctx)

	for ev := range o.liveSession.Events() {
		switch ev.Type {
		case livemodel.EventTextOutput:
			o.setState(StateStreaming)
			o.stream.SendTextChunk(ctx, ev.Text, "orchestrator")

		case livemodel.EventAudioOutput:
			o.setState(StateStreaming)
			o.stream.SendAudioChunk(ctx, base64.StdEncoding.EncodeToString(ev.Audio))

		case livemodel.EventToolCall:
			o.setState(StateProcessing)
			if ev.ToolCall != nil {
				o.spawnFunctionCall(ctx, *ev.ToolCall)
			}

		case livemodel.EventInterrupted:
			o.HandleInterrupt(ctx)
			o.stream.SendAgentState(ctx, "orchestrator", "interrupted")

		case livemodel.EventTurnEnd:
			o.setState(StateIdle)
			o.stream.SendTurnEnd(ctx)
			o.mu.Lock()
			o.currentTurnID = ""
			o.mu.Unlock()

		case livemodel.EventError:
			log.Error(ctx, "live model error", "session_id", o.sessionID, "event", "model_error", "error", ev.Error)
			o.stream.SendError(ctx, fmt.Sprintf("%v", ev.Error))
			o.setState(StateIdle)
		}
	}
}

// spawnFunctionCall handles one tool call asynchronously so the event
// listener is never blocked waiting on a sub-agent.
func (o *Orchestrator) spawnFunctionCall(ctx context.Context, call schema.ToolCall) {
	taskCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.activeTasks[call.ID] = cancel
	o.mu.Unlock()

	go func() {
		defer func() {
			o.mu.Lock()
			delete(o.activeTasks, call.ID)
			o.mu.Unlock()
			cancel()
		}()
		o.handleFunctionCall(taskCtx, call)
	}()
}

// handleFunctionCall is the A2A entry point: it maps a tool call to an
// intent and sub-agent, dispatches with schema enforcement and circuit
// breaker protection, and always sends a function response back to the
// live model — falling back to graceful-degradation text on any failure
// so the model is never left waiting.
func (o *Orchestrator) handleFunctionCall(ctx context.Context, call schema.ToolCall) {
	log := o11y.FromContext(ctx)
	start := time.Now()

	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		args = map[string]any{}
	}

	log.Info(ctx, "function call", "session_id", o.sessionID, "event", "function_call",
		"agent", call.Name, "turn_id", o.currentTurnID)

	contextSummary := o.memory.GetContextSummary()
	resultText := o.dispatchFunctionCall(ctx, call.Name, args, contextSummary)

	if err := o.liveSession.SendFunctionResponse(ctx, call.ID, call.Name, resultText); err != nil {
		log.Error(ctx, "send function response failed", "session_id", o.sessionID, "error", err)
	}

	log.Info(ctx, "function call complete", "session_id", o.sessionID, "event", "function_call_complete",
		"agent", call.Name, "latency_ms", time.Since(start).Milliseconds())
}

// dispatchFunctionCall routes call to its sub-agent (A2A, schema-enforced,
// circuit-breaker-guarded) or to the cultural agent's direct-answer path,
// and returns the flattened text to speak back. Every branch guarantees a
// non-empty response text, since the model blocks waiting for one.
func (o *Orchestrator) dispatchFunctionCall(ctx context.Context, funcName string, args map[string]any, contextSummary string) string {
	log := o11y.FromContext(ctx)

	if funcName == "get_cultural_context" {
		topic, _ := args["topic"].(string)
		culture, _ := args["culture"].(string)
		answer, err := o.cultural.AnswerQuestion(ctx, schema.AgentRequest{
			Intent: schema.IntentAskCultural, UserInput: topic, Culture: culture,
			SessionContext: contextSummary, TurnID: o.currentTurnID, SessionID: o.sessionID,
		})
		if err != nil {
			log.Warn(ctx, "cultural answer failed", "session_id", o.sessionID, "error", err)
			return "In some traditions, that answer is still being passed down..."
		}
		return answer
	}

	route, ok := funcRoutes[funcName]
	if !ok {
		return "I'm not sure how to help with that just yet."
	}

	producer, ok := o.producers.set.get(route.agent)
	if !ok {
		return "That storyteller isn't available right now."
	}

	breaker := o.breakers.Get(route.agent)

	input := make(map[string]any, len(args)+1)
	for k, v := range args {
		input[k] = v
	}
	if contextSummary != "" {
		input["session_context"] = contextSummary
	}

	var resultText string
	err := breaker.Call(func() error {
		var chunks []map[string]any
		dispatchErr := o.dispatcher.DispatchStreaming(ctx, producer.ExecuteStreaming, input,
			route.inputSchema, route.outputSchema, route.agent, func(chunk map[string]any) bool {
				chunks = append(chunks, chunk)
				if scene, ok := chunk["scene_description"].(string); ok && scene != "" {
					o.triggerImageGeneration(ctx, scene, args["culture"])
				}
				return true
			})
		if dispatchErr != nil {
			return dispatchErr
		}
		if len(chunks) == 0 {
			result := o.dispatcher.Dispatch(ctx, producer.Execute, input, route.inputSchema, route.outputSchema, route.agent)
			chunks = []map[string]any{result}
		}
		resultText = flattenChunks(chunks)
		return nil
	})

	if err != nil {
		log.Warn(ctx, "a2a dispatch failed, using fallback", "session_id", o.sessionID, "agent", route.agent, "error", err)
		return flattenFallback(dispatch.SafeFallback(route.outputSchema))
	}
	return resultText
}

// triggerImageGeneration fires off image generation without blocking the
// function-call response path; failures are logged and otherwise ignored.
func (o *Orchestrator) triggerImageGeneration(ctx context.Context, sceneDescription string, culture any) {
	visual, ok := o.producers.set.get("visual_agent")
	if !ok {
		return
	}
	cultureStr, _ := culture.(string)

	go func() {
		result, err := visual.Execute(context.Background(), map[string]any{
			"scene_description": sceneDescription,
			"culture":           cultureStr,
		})
		if err != nil {
			o11y.FromContext(ctx).Warn(ctx, "image generation failed", "session_id", o.sessionID, "error", err)
			return
		}
		if url, _ := result["url"].(string); url != "" {
			o.stream.SendImageReady(ctx, url)
		}
	}()
}

// flattenChunks joins a producer's output chunks into one string to speak
// back to the live model. It recognizes the shapes actually emitted by
// story_agent (text), riddle_agent (section/content, and the full
// RiddlePayload produced by its non-streaming fallback), and visual_agent
// (status/url); anything else degrades to its raw JSON rather than being
// silently dropped.
func flattenChunks(chunks []map[string]any) string {
	var out strings.Builder
	for i, c := range chunks {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(flattenChunk(c))
	}
	return out.String()
}

func flattenChunk(c map[string]any) string {
	if text, ok := c["text"].(string); ok {
		return text
	}
	if content, ok := c["content"].(string); ok {
		return content
	}
	if _, ok := c["opening"]; ok {
		return flattenRiddlePayload(c)
	}
	if status, ok := c["status"].(string); ok {
		return flattenImageStatus(status)
	}
	b, _ := json.Marshal(c)
	return string(b)
}

func flattenRiddlePayload(c map[string]any) string {
	var b strings.Builder
	if opening, ok := c["opening"].(string); ok && opening != "" {
		b.WriteString(opening)
	}
	if text, ok := c["riddle_text"].(string); ok && text != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(text)
	}
	if answer, ok := c["answer"].(string); ok && answer != "" {
		fmt.Fprintf(&b, " The answer: %s.", answer)
	}
	if explanation, ok := c["explanation"].(string); ok && explanation != "" {
		b.WriteString(" ")
		b.WriteString(explanation)
	}
	return b.String()
}

func flattenImageStatus(status string) string {
	switch status {
	case "success":
		return "I'm painting a picture of this scene for you now."
	case "skipped":
		return "I'll hold that image in my imagination for now."
	default:
		return "The image didn't come together this time, but let's continue."
	}
}

func flattenFallback(result map[string]any) string {
	if text, ok := result["text"].(string); ok {
		return text
	}
	if opening, ok := result["opening"].(string); ok {
		return opening
	}
	return "Let me continue with what I know to be true..."
}

func newTurnID() string {
	return "turn_" + uuid.New().String()[:8]
}
