package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

var _ ports.FlowStore = (*Store)(nil)

// Store implements ports.FlowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Flow
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with flows.
func NewStore(flows ...*domain.Flow) *Store {
	s := &Store{
		data: make(map[string]*domain.Flow),
	}
	for _, f := range flows {
		s.data[f.ID] = f.Clone()
	}
	return s
}

// Save keeps a deep copy of the flow, so later edits by the caller are not visible.
func (s *Store) Save(ctx context.Context, flow *domain.Flow) error {
	if flow == nil || flow.ID == "" {
		return fmt.Errorf("flow id cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flow.ID] = flow.Clone()
	return nil
}

// Load returns a copy of the stored flow.
func (s *Store) Load(ctx context.Context, id string) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrFlowNotFound, id)
	}
	return flow.Clone(), nil
}

// Delete removes the flow.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored flow ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
