package memory

import (
	"context"
	"sync"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/service/dao"
)

// Service implements in-memory flow definition storage. All operations are
// thread-safe and return copies of the stored flows so callers cannot mutate
// persisted definitions in place.
type Service struct {
	flows map[string]*model.Flow
	mux   sync.RWMutex
}

var _ dao.Service[string, model.Flow] = (*Service)(nil)

// Save persists (a clone of) the supplied flow.
func (s *Service) Save(_ context.Context, flow *model.Flow) error {
	if flow == nil {
		return dao.ErrNilEntity
	}
	if flow.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.flows[flow.ID] = flow.Clone()
	return nil
}

// Load retrieves a copy of the flow or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id string) (*model.Flow, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	flow, ok := s.flows[id]
	s.mux.RUnlock()
	if !ok {
		return nil, dao.ErrNotFound
	}
	return flow.Clone(), nil
}

// Delete removes a flow.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.flows[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.flows, id)
	return nil
}

// List returns copies of all flows. Parameter filtering is not implemented
// for the in-memory store.
func (s *Service) List(_ context.Context, _ ...*dao.Parameter) ([]*model.Flow, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*model.Flow, 0, len(s.flows))
	for _, flow := range s.flows {
		out = append(out, flow.Clone())
	}
	return out, nil
}

// New constructor.
func New() *Service {
	return &Service{flows: map[string]*model.Flow{}}
}
