// Package hospital persists hospital tenants.
package hospital

import (
	"context"
	"sync"

	"careport/internal/directory/models"
	id "careport/pkg/domain"
	"careport/pkg/platform/sentinel"
)

// InMemory is the development and test hospital store. IDs are assigned
// sequentially the way the database would.
type InMemory struct {
	mu          sync.RWMutex
	nextID      int64
	byID        map[id.HospitalID]*models.Hospital
	bySubdomain map[string]*models.Hospital
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextID:      1,
		byID:        make(map[id.HospitalID]*models.Hospital),
		bySubdomain: make(map[string]*models.Hospital),
	}
}

func (s *InMemory) Create(ctx context.Context, h *models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySubdomain[h.Subdomain]; exists {
		return sentinel.ErrConflict
	}
	h.ID = id.HospitalID(s.nextID)
	s.nextID++
	copied := *h
	s.byID[h.ID] = &copied
	s.bySubdomain[h.Subdomain] = &copied
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byID[hospitalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (s *InMemory) FindBySubdomain(ctx context.Context, subdomain string) (*models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.bySubdomain[subdomain]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *h
	return &copied, nil
}
