package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"careport/internal/directory/models"
	id "careport/pkg/domain"
	"careport/pkg/platform/sentinel"
)

type DoctorStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *DoctorStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestDoctorStoreSuite(t *testing.T) {
	suite.Run(t, new(DoctorStoreSuite))
}

func (s *DoctorStoreSuite) newDoctor(name string, slug id.DoctorSlug) *models.Doctor {
	return &models.Doctor{
		Slug:      slug,
		FullName:  name,
		Status:    models.TenantStatusActive,
		CreatedAt: time.Now(),
	}
}

// TestCreationAndLookup verifies ID assignment and slug lookup.
func (s *DoctorStoreSuite) TestCreationAndLookup() {
	s.Run("creates and finds doctor by slug", func() {
		d := s.newDoctor("Dana Rivera", "dana-rivera")
		s.Require().NoError(s.store.Create(s.ctx, d))
		s.Positive(d.ID)

		found, err := s.store.FindBySlug(s.ctx, "dana-rivera")
		s.Require().NoError(err)
		s.Equal("Dana Rivera", found.FullName)
	})

	s.Run("returns ErrNotFound for unknown slug", func() {
		_, err := s.store.FindBySlug(s.ctx, "nobody")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestSlugUniqueness verifies a slug can only be claimed once.
func (s *DoctorStoreSuite) TestSlugUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newDoctor("First", "shared")))

	err := s.store.Create(s.ctx, s.newDoctor("Second", "shared"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

// TestCopySemantics verifies callers cannot mutate stored state.
func (s *DoctorStoreSuite) TestCopySemantics() {
	d := s.newDoctor("Immutable", "immutable")
	s.Require().NoError(s.store.Create(s.ctx, d))

	found, err := s.store.FindBySlug(s.ctx, "immutable")
	s.Require().NoError(err)
	found.FullName = "Mutated"

	again, err := s.store.FindBySlug(s.ctx, "immutable")
	s.Require().NoError(err)
	s.Equal("Immutable", again.FullName)
}
