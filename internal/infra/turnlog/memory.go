package turnlog

import (
	"context"
	"sync"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// MemoryStore keeps turns in memory for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.Mutex
	turns []rag.Turn
}

var _ rag.TurnLogger = (*MemoryStore)(nil)

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records the turn.
func (s *MemoryStore) Append(_ context.Context, turn rag.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	return nil
}

// All returns a copy of every recorded turn.
func (s *MemoryStore) All() []rag.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rag.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
