package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/models"
)

// CatalogService defines the interface for read-only catalog operations
type CatalogService interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetAllSections(ctx context.Context) ([]*models.Section, error)
	GetEnrollments(ctx context.Context, nim string) ([]*models.Enrollment, error)
	DiscoverOpportunities(ctx context.Context) ([]models.Opportunity, error)
}

// catalogServiceImpl implements CatalogService
type catalogServiceImpl struct {
	userStore       UserStore
	sectionStore    SectionStore
	enrollmentStore EnrollmentStore
	logger          zerolog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	userStore UserStore,
	sectionStore SectionStore,
	enrollmentStore EnrollmentStore,
	logger zerolog.Logger,
) CatalogService {
	return &catalogServiceImpl{
		userStore:       userStore,
		sectionStore:    sectionStore,
		enrollmentStore: enrollmentStore,
		logger:          logger,
	}
}

// GetAllUsers retrieves all registered students
func (s *catalogServiceImpl) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.userStore.GetAll(ctx)
}

// GetAllSections retrieves the full section catalog
func (s *catalogServiceImpl) GetAllSections(ctx context.Context) ([]*models.Section, error) {
	return s.sectionStore.GetAll(ctx)
}

// GetEnrollments retrieves enrollments with their sections attached. An
// empty nim returns every enrollment; otherwise only the given student's.
func (s *catalogServiceImpl) GetEnrollments(ctx context.Context, nim string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	var err error
	if nim == "" {
		enrollments, err = s.enrollmentStore.GetAll(ctx)
	} else {
		enrollments, err = s.enrollmentStore.GetByNIM(ctx, nim)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	sections, err := s.sectionStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	catalog := BuildSectionCatalog(sections)
	for _, e := range enrollments {
		e.Section = catalog.SectionByID(e.SectionID)
	}

	return enrollments, nil
}

// DiscoverOpportunities recomputes the full set of legal directed swaps from
// a fresh enrollment and catalog snapshot. This is a human-rate operation;
// a full rebuild per call is deliberate.
func (s *catalogServiceImpl) DiscoverOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	sections, err := s.sectionStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	enrollments, err := s.enrollmentStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	catalog := BuildSectionCatalog(sections)
	index := BuildEnrollmentIndex(enrollments)
	opportunities := EnumerateOpportunities(catalog, index)

	s.logger.Debug().
		Int("sections", len(sections)).
		Int("enrollments", len(enrollments)).
		Int("opportunities", len(opportunities)).
		Msg("Recomputed swap opportunities")

	return opportunities, nil
}
