package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/schema"
)

// MaxMemoryTurns is the ring buffer capacity: the number of recent
// conversation turns held in active memory per session.
const MaxMemoryTurns = 20

// SummarizeThreshold is the turn count at which the oldest turns are
// summarized out-of-band before the ring buffer trims them.
const SummarizeThreshold = 15

// recentTurnsInSummary is how many of the most recent turns appear
// verbatim (truncated) in GetContextSummary, in addition to the rolling
// summary of older turns.
const recentTurnsInSummary = 10

// previewLength truncates each recent turn's content in the context
// summary, keeping the summary compact.
const previewLength = 150

// topicKeywords is the fixed cultural-keyword list the fallback
// summarizer scans for when no model-backed Summarizer is configured.
var topicKeywords = []string{
	"story", "riddle", "yoruba", "zulu", "swahili", "kikuyu",
	"ashanti", "maasai", "anansi", "trickster", "proverb",
	"wisdom", "creation", "ancestors", "animals",
}

// SessionStore persists session metadata and turns durably. Every call
// through GatewaySession is fire-and-forget: the store's errors are
// logged, never returned to the caller.
type SessionStore interface {
	SaveMetadata(ctx context.Context, meta schema.SessionMetadata) error
	SaveTurn(ctx context.Context, sessionID string, turn schema.ConversationTurn) error
	LoadMetadata(ctx context.Context, sessionID string) (schema.SessionMetadata, bool, error)
	LoadRecentTurns(ctx context.Context, sessionID string, limit int) ([]schema.ConversationTurn, error)
}

// Summarizer compresses a window of old turns into a short prose summary.
// A model-backed implementation is preferred; GatewaySession falls back
// to keyword extraction when none is configured.
type Summarizer interface {
	Summarize(ctx context.Context, turns []schema.ConversationTurn) (string, error)
}

// GatewaySession is the C6 memory/session-store facade: an append-only
// turn ring buffer, a preferences dictionary, and a rolling context
// summary, all backed by fire-and-forget durable persistence. Grounded on
// window_buffer.go's fixed-window trimming and summary_buffer.go's
// moving-summary-plus-recent-buffer shape, generalized from LLM-chain
// memory to session/turn records.
type GatewaySession struct {
	mu sync.Mutex

	sessionID  string
	store      SessionStore
	summarizer Summarizer
	logger     *o11y.Logger

	turns       []schema.ConversationTurn
	summary     string
	preferences map[string]any
	metadata    schema.SessionMetadata
}

// NewGatewaySession constructs a GatewaySession. store may be nil, in
// which case persistence calls are no-ops (useful for tests). summarizer
// may be nil, in which case keyword-based summarization is used.
func NewGatewaySession(sessionID string, store SessionStore, summarizer Summarizer) *GatewaySession {
	return &GatewaySession{
		sessionID:   sessionID,
		store:       store,
		summarizer:  summarizer,
		logger:      o11y.NewLogger(),
		preferences: make(map[string]any),
	}
}

// CreateSession initializes in-memory state and writes the fresh metadata
// record to the store through fireAndForget, on the caller's goroutine.
func (g *GatewaySession) CreateSession(ctx context.Context, createdAt func() schema.SessionMetadata) {
	g.mu.Lock()
	g.metadata = createdAt()
	g.turns = nil
	g.summary = ""
	g.preferences = make(map[string]any)
	meta := g.metadata
	g.mu.Unlock()

	g.fireAndForget(ctx, "create_session", func(ctx context.Context) error {
		return g.store.SaveMetadata(ctx, meta)
	})
}

// LoadSession restores metadata and up to MaxMemoryTurns recent turns
// from the store. Returns false if no prior session exists.
func (g *GatewaySession) LoadSession(ctx context.Context) bool {
	if g.store == nil {
		return false
	}

	meta, ok, err := g.store.LoadMetadata(ctx, g.sessionID)
	if err != nil || !ok {
		return false
	}

	turns, err := g.store.LoadRecentTurns(ctx, g.sessionID, MaxMemoryTurns)
	if err != nil {
		g.logger.Warn(ctx, "failed to load recent turns", "session_id", g.sessionID, "error", err)
		turns = nil
	}

	g.mu.Lock()
	g.metadata = meta
	g.turns = turns
	g.mu.Unlock()

	g.logger.Info(ctx, "session loaded", "session_id", g.sessionID, "turn_count", len(turns))
	return true
}

// SaveTurn appends turn to the ring buffer. Once the buffer exceeds
// MaxMemoryTurns, the oldest SummarizeThreshold turns are summarized
// (in-process, synchronously — the summarizer itself is expected to be
// fast or backgrounded by its own implementation) before the buffer is
// trimmed to the most recent MaxMemoryTurns. The durable write is always
// fire-and-forget.
func (g *GatewaySession) SaveTurn(ctx context.Context, turn schema.ConversationTurn) {
	g.mu.Lock()
	g.turns = append(g.turns, turn)

	var toSummarize []schema.ConversationTurn
	if len(g.turns) > MaxMemoryTurns {
		if len(g.turns) >= SummarizeThreshold {
			toSummarize = append([]schema.ConversationTurn{}, g.turns[:SummarizeThreshold]...)
		}
		g.turns = g.turns[len(g.turns)-MaxMemoryTurns:]
	}
	g.mu.Unlock()

	if toSummarize != nil {
		g.summarizeOldTurns(ctx, toSummarize)
	}

	g.fireAndForget(ctx, "save_turn", func(ctx context.Context) error {
		return g.store.SaveTurn(ctx, g.sessionID, turn)
	})
}

func (g *GatewaySession) summarizeOldTurns(ctx context.Context, turns []schema.ConversationTurn) {
	var (
		summary string
		err     error
	)
	if g.summarizer != nil {
		summary, err = g.summarizer.Summarize(ctx, turns)
	} else {
		summary = keywordSummary(turns)
	}
	if err != nil {
		g.logger.Warn(ctx, "summarization failed", "session_id", g.sessionID, "error", err)
		return
	}

	g.mu.Lock()
	g.summary = summary
	g.mu.Unlock()

	g.logger.Info(ctx, "summarized old turns", "session_id", g.sessionID, "event", "memory_summarize", "turns", len(turns))
}

// keywordSummary is the model-free fallback: a fixed template naming the
// turn count plus up to 5 cultural keywords found across the turns' text.
func keywordSummary(turns []schema.ConversationTurn) string {
	var all strings.Builder
	for _, t := range turns {
		all.WriteString(strings.ToLower(t.Content))
		all.WriteString(" ")
	}
	text := all.String()

	var topics []string
	for _, kw := range topicKeywords {
		if strings.Contains(text, kw) {
			topics = append(topics, kw)
			if len(topics) == 5 {
				break
			}
		}
	}
	topicsStr := "general African culture"
	if len(topics) > 0 {
		topicsStr = strings.Join(topics, ", ")
	}

	return fmt.Sprintf("The conversation covered: %d turns discussing African stories and culture. Key topics: %s",
		len(turns), topicsStr)
}

// GetContextSummary returns a compact text blending the rolling summary
// of summarized-out turns, the last 10 turns (150-char truncated
// previews), and current preferences — the context sub-agents receive
// via AgentRequest.SessionContext.
func (g *GatewaySession) GetContextSummary() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var parts []string
	if g.summary != "" {
		parts = append(parts, "Earlier conversation summary: "+g.summary)
	}

	recent := g.turns
	if len(recent) > recentTurnsInSummary {
		recent = recent[len(recent)-recentTurnsInSummary:]
	}
	if len(recent) > 0 {
		parts = append(parts, "Recent conversation:")
		for _, t := range recent {
			role := "User"
			if t.Role != "user" {
				role = "HadithiAI"
			}
			preview := t.Content
			if len(preview) > previewLength {
				preview = preview[:previewLength]
			}
			parts = append(parts, fmt.Sprintf("  %s: %s", role, preview))
		}
	}

	if len(g.preferences) > 0 {
		var prefParts []string
		for k, v := range g.preferences {
			prefParts = append(prefParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, "User preferences: "+strings.Join(prefParts, ", "))
	}

	if len(parts) == 0 {
		return "New conversation, no history yet."
	}
	return strings.Join(parts, "\n")
}

// UpdatePreferences merges updates into the in-memory preferences and
// metadata record, and writes the record to the store through
// fireAndForget, on the caller's goroutine.
func (g *GatewaySession) UpdatePreferences(ctx context.Context, updates map[string]any) {
	g.mu.Lock()
	for k, v := range updates {
		g.preferences[k] = v
		applyMetadataPreference(&g.metadata, k, v)
	}
	meta := g.metadata
	g.mu.Unlock()

	g.fireAndForget(ctx, "update_preferences", func(ctx context.Context) error {
		return g.store.SaveMetadata(ctx, meta)
	})
}

func applyMetadataPreference(meta *schema.SessionMetadata, key string, value any) {
	str, ok := value.(string)
	if !ok {
		return
	}
	switch key {
	case "language_pref":
		meta.LanguagePref = str
	case "region_pref":
		meta.RegionPref = str
	case "age_group":
		meta.AgeGroup = str
	}
}

// FinalizeSession performs the final metadata write (last_active,
// turn_count, summary) on disconnect.
func (g *GatewaySession) FinalizeSession(ctx context.Context) {
	g.mu.Lock()
	g.metadata.TurnCount = len(g.turns)
	meta := g.metadata
	turnCount := len(g.turns)
	g.mu.Unlock()

	g.fireAndForget(ctx, "finalize_session", func(ctx context.Context) error {
		return g.store.SaveMetadata(ctx, meta)
	})

	g.logger.Info(ctx, "session finalized", "session_id", g.sessionID, "turn_count", turnCount)
}

// fireAndForget runs op if a store is configured, logging but swallowing
// any error. Every persistence call in GatewaySession goes through this
// so a durable-store failure never surfaces to the caller. fn runs
// synchronously, so the caller waits for the store write to finish.
func (g *GatewaySession) fireAndForget(ctx context.Context, op string, fn func(context.Context) error) {
	if g.store == nil {
		return
	}
	if err := fn(ctx); err != nil {
		g.logger.Warn(ctx, "persistence write failed", "session_id", g.sessionID, "op", op, "error", err)
	}
}
