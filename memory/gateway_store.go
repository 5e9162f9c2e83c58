package memory

import (
	"context"
	"sync"

	"github.com/lookatitude/beluga-ai/schema"
)

// InMemorySessionStore is a process-local SessionStore: a thin grounding
// adapter, not a durable storage engine. It keeps every session's
// metadata and turn log in memory for the life of the process, suitable
// as a default or for tests; a production deployment would swap in a
// database-backed SessionStore behind the same interface.
type InMemorySessionStore struct {
	mu       sync.Mutex
	metadata map[string]schema.SessionMetadata
	turns    map[string][]schema.ConversationTurn
}

// NewInMemorySessionStore creates an empty InMemorySessionStore.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		metadata: make(map[string]schema.SessionMetadata),
		turns:    make(map[string][]schema.ConversationTurn),
	}
}

// SaveMetadata stores or replaces meta for its session ID.
func (s *InMemorySessionStore) SaveMetadata(ctx context.Context, meta schema.SessionMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[meta.SessionID] = meta
	return nil
}

// SaveTurn appends turn to sessionID's turn log.
func (s *InMemorySessionStore) SaveTurn(ctx context.Context, sessionID string, turn schema.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sessionID] = append(s.turns[sessionID], turn)
	return nil
}

// LoadMetadata returns the stored metadata for sessionID, if any.
func (s *InMemorySessionStore) LoadMetadata(ctx context.Context, sessionID string) (schema.SessionMetadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metadata[sessionID]
	return meta, ok, nil
}

// LoadRecentTurns returns the most recent limit turns for sessionID, in
// chronological order.
func (s *InMemorySessionStore) LoadRecentTurns(ctx context.Context, sessionID string, limit int) ([]schema.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns[sessionID]
	if limit <= 0 || limit >= len(turns) {
		out := make([]schema.ConversationTurn, len(turns))
		copy(out, turns)
		return out, nil
	}
	out := make([]schema.ConversationTurn, limit)
	copy(out, turns[len(turns)-limit:])
	return out, nil
}

var _ SessionStore = (*InMemorySessionStore)(nil)
