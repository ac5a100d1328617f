package session

import (
	"context"
	"sync"

	"github.com/medbook-ai/scheduling-agent/internal/agent"
)

// MemoryStore is an in-process session store for tests and single-node
// development without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]agent.Message
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]agent.Message)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]agent.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.sessions[sessionID]
	out := make([]agent.Message, len(history))
	copy(out, history)
	return out, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, sessionID string, history []agent.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]agent.Message, len(history))
	copy(copied, history)
	s.sessions[sessionID] = copied
	return nil
}
