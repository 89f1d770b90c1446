package layoutstore

import (
	"context"
	"sort"
	"sync"

	"github.com/netobserve/topoview/pkg/model"
)

// MemoryStore is an in-process Store, used in tests and single-node setups.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*model.SubTopology
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*model.SubTopology)}
}

// Save creates or replaces a sub-topology.
func (s *MemoryStore) Save(_ context.Context, st *model.SubTopology) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.ErrStoreClosed
	}
	s.docs[st.ID] = cloneSubTopology(st)
	return nil
}

// Get returns a sub-topology by id.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.SubTopology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, model.ErrStoreClosed
	}
	st, ok := s.docs[id]
	if !ok {
		return nil, model.NewError("Get").Document(id).Cause(model.ErrDocumentNotFound)
	}
	return cloneSubTopology(st), nil
}

// List returns all sub-topologies sorted by id for stable output.
func (s *MemoryStore) List(_ context.Context) ([]*model.SubTopology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, model.ErrStoreClosed
	}
	out := make([]*model.SubTopology, 0, len(s.docs))
	for _, st := range s.docs {
		out = append(out, cloneSubTopology(st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes a sub-topology; missing ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.ErrStoreClosed
	}
	delete(s.docs, id)
	return nil
}

// Close disables the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneSubTopology(st *model.SubTopology) *model.SubTopology {
	cp := *st
	cp.DeviceIDs = append([]uint64(nil), st.DeviceIDs...)
	cp.Layout.NodePositions = make(map[uint64]model.Position, len(st.Layout.NodePositions))
	for id, pos := range st.Layout.NodePositions {
		cp.Layout.NodePositions[id] = pos
	}
	return &cp
}
