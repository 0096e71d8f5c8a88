package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ahliwaris/internal/declaration/models"
	id "ahliwaris/pkg/domain"
	"ahliwaris/pkg/platform/sentinel"
)

// InMemoryStore keeps declarations in a map. Records are deep-copied on the
// way in and out so callers cannot mutate stored state.
type InMemoryStore struct {
	mu           sync.RWMutex
	declarations map[id.DeclarationID][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{declarations: make(map[id.DeclarationID][]byte)}
}

func (s *InMemoryStore) Create(_ context.Context, decl *models.Declaration) error {
	raw, err := json.Marshal(decl)
	if err != nil {
		return fmt.Errorf("encode declaration: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.declarations[decl.ID]; exists {
		return sentinel.ErrConflict
	}
	s.declarations[decl.ID] = raw
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, declID id.DeclarationID) (*models.Declaration, error) {
	s.mu.RLock()
	raw, ok := s.declarations[declID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	var decl models.Declaration
	if err := json.Unmarshal(raw, &decl); err != nil {
		return nil, fmt.Errorf("decode declaration: %w", err)
	}
	return &decl, nil
}
