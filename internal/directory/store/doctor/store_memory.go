// Package doctor persists doctor tenants.
package doctor

import (
	"context"
	"sync"

	"careport/internal/directory/models"
	id "careport/pkg/domain"
	"careport/pkg/platform/sentinel"
)

// InMemory is the development and test doctor store.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	bySlug map[id.DoctorSlug]*models.Doctor
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextID: 1,
		bySlug: make(map[id.DoctorSlug]*models.Doctor),
	}
}

func (s *InMemory) Create(ctx context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySlug[d.Slug]; exists {
		return sentinel.ErrConflict
	}
	d.ID = s.nextID
	s.nextID++
	copied := *d
	s.bySlug[d.Slug] = &copied
	return nil
}

func (s *InMemory) FindBySlug(ctx context.Context, slug id.DoctorSlug) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.bySlug[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *d
	return &copied, nil
}
