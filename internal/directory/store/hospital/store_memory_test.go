package hospital

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"careport/internal/directory/models"
	"careport/pkg/platform/sentinel"
)

type HospitalStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *HospitalStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestHospitalStoreSuite(t *testing.T) {
	suite.Run(t, new(HospitalStoreSuite))
}

func (s *HospitalStoreSuite) newHospital(name, subdomain string) *models.Hospital {
	return &models.Hospital{
		Name:      name,
		Subdomain: subdomain,
		Status:    models.TenantStatusActive,
		CreatedAt: time.Now(),
	}
}

// TestCreationAndLookups verifies ID assignment and both lookup paths.
func (s *HospitalStoreSuite) TestCreationAndLookups() {
	s.Run("assigns sequential IDs on create", func() {
		first := s.newHospital("First", "first")
		second := s.newHospital("Second", "second")
		s.Require().NoError(s.store.Create(s.ctx, first))
		s.Require().NoError(s.store.Create(s.ctx, second))

		s.Positive(int64(first.ID))
		s.Equal(int64(first.ID)+1, int64(second.ID))
	})

	s.Run("finds by ID and by subdomain", func() {
		h := s.newHospital("General Hospital", "general")
		s.Require().NoError(s.store.Create(s.ctx, h))

		byID, err := s.store.FindByID(s.ctx, h.ID)
		s.Require().NoError(err)
		s.Equal("general", byID.Subdomain)

		bySub, err := s.store.FindBySubdomain(s.ctx, "general")
		s.Require().NoError(err)
		s.Equal(h.ID, bySub.ID)
	})

	s.Run("returns ErrNotFound for unknown keys", func() {
		_, err := s.store.FindByID(s.ctx, 9999)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindBySubdomain(s.ctx, "nowhere")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestSubdomainUniqueness verifies a subdomain can only be claimed once.
func (s *HospitalStoreSuite) TestSubdomainUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newHospital("First", "shared")))

	err := s.store.Create(s.ctx, s.newHospital("Second", "shared"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

// TestCopySemantics verifies callers cannot mutate stored state.
func (s *HospitalStoreSuite) TestCopySemantics() {
	h := s.newHospital("Immutable", "immutable")
	s.Require().NoError(s.store.Create(s.ctx, h))

	found, err := s.store.FindByID(s.ctx, h.ID)
	s.Require().NoError(err)
	found.Name = "Mutated"

	again, err := s.store.FindByID(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Equal("Immutable", again.Name)
}
