package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/krswitch/backend/internal/app/models"
	"github.com/krswitch/backend/internal/app/models/dto"
	"github.com/krswitch/backend/internal/pkg/apperrors"
)

// BarterService defines the interface for offer lifecycle operations
type BarterService interface {
	CreateOffer(ctx context.Context, req *dto.CreateOfferRequest) (*models.Offer, error)
	ListOpenOffers(ctx context.Context) ([]*models.Offer, error)
	GetOffer(ctx context.Context, id int64) (*models.Offer, error)
	TakeOffer(ctx context.Context, offerID int64, takerNIM string) (*models.Offer, error)
	CancelOffer(ctx context.Context, offerID int64, requesterNIM string) (*models.Offer, error)
}

// barterServiceImpl implements BarterService
type barterServiceImpl struct {
	offerStore      OfferStore
	sectionStore    SectionStore
	enrollmentStore EnrollmentStore
	userStore       UserStore
	notifier        Notifier
	logger          zerolog.Logger
}

// NewBarterService creates a new BarterService
func NewBarterService(
	offerStore OfferStore,
	sectionStore SectionStore,
	enrollmentStore EnrollmentStore,
	userStore UserStore,
	notifier Notifier,
	logger zerolog.Logger,
) BarterService {
	return &barterServiceImpl{
		offerStore:      offerStore,
		sectionStore:    sectionStore,
		enrollmentStore: enrollmentStore,
		userStore:       userStore,
		notifier:        notifier,
		logger:          logger,
	}
}

// CreateOffer validates and persists a new open offer. The offerer must
// currently hold the source section, and source and target must be distinct
// parallel sections of the same course and type.
func (s *barterServiceImpl) CreateOffer(ctx context.Context, req *dto.CreateOfferRequest) (*models.Offer, error) {
	exists, err := s.userStore.Exists(ctx, req.OffererNIM)
	if err != nil {
		return nil, fmt.Errorf("failed to check offerer: %w", err)
	}
	if !exists {
		return nil, apperrors.NewResourceNotFoundError("Student not found")
	}

	source, err := s.sectionStore.GetByID(ctx, req.SourceSectionID)
	if err != nil {
		return nil, err
	}
	target, err := s.sectionStore.GetByID(ctx, req.TargetSectionID)
	if err != nil {
		return nil, err
	}

	if source.ID == target.ID {
		return nil, apperrors.NewValidationError("Source and target sections must differ")
	}
	if !source.SameSwapGroup(target) {
		return nil, apperrors.NewValidationError("Sections are not parallel classes of the same course and type")
	}

	enrolled, err := s.enrollmentStore.IsEnrolled(ctx, req.OffererNIM, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, apperrors.NewValidationError("Offerer does not hold the section being offered")
	}

	offer := &models.Offer{
		OffererNIM:      req.OffererNIM,
		SourceSectionID: source.ID,
		TargetSectionID: target.ID,
	}
	if err := s.offerStore.Create(ctx, offer); err != nil {
		return nil, err
	}
	offer.SourceSection = source
	offer.TargetSection = target

	s.logger.Info().
		Int64("offerId", offer.ID).
		Str("offererNim", offer.OffererNIM).
		Int64("sourceSectionId", source.ID).
		Int64("targetSectionId", target.ID).
		Msg("Offer created")

	s.notifier.OfferCreated(offer)
	return offer, nil
}

// ListOpenOffers returns all open offers with their sections attached
func (s *barterServiceImpl) ListOpenOffers(ctx context.Context) ([]*models.Offer, error) {
	offers, err := s.offerStore.ListByStatus(ctx, models.OfferStatusOpen)
	if err != nil {
		return nil, err
	}
	if err := s.attachSections(ctx, offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// GetOffer retrieves a single offer with its sections attached
func (s *barterServiceImpl) GetOffer(ctx context.Context, id int64) (*models.Offer, error) {
	offer, err := s.offerStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachSections(ctx, []*models.Offer{offer}); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *barterServiceImpl) attachSections(ctx context.Context, offers []*models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	sections, err := s.sectionStore.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}
	catalog := BuildSectionCatalog(sections)
	for _, o := range offers {
		o.SourceSection = catalog.SectionByID(o.SourceSectionID)
		o.TargetSection = catalog.SectionByID(o.TargetSectionID)
	}
	return nil
}

// TakeOffer accepts an open offer on behalf of takerNIM, atomically marking
// the offer matched and moving both students' enrollments. If several
// take requests race on the same offer, exactly one commits; the rest fail
// with a conflict error once the winner's transaction is visible.
func (s *barterServiceImpl) TakeOffer(ctx context.Context, offerID int64, takerNIM string) (*models.Offer, error) {
	var matched *models.Offer
	var deltas []models.EnrollmentDelta

	err := s.offerStore.InSwapTx(ctx, func(ctx context.Context, tx SwapTx) error {
		offer, err := tx.OfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.Status != models.OfferStatusOpen {
			return apperrors.NewConflictError("Offer already taken or cancelled")
		}
		if takerNIM == offer.OffererNIM {
			return apperrors.NewConflictError("Cannot take your own offer")
		}

		eligible, err := tx.IsEnrolled(ctx, takerNIM, offer.TargetSectionID)
		if err != nil {
			return err
		}
		if !eligible {
			return apperrors.NewValidationError("Taker does not hold the requested section")
		}

		now := time.Now()
		if err := tx.MarkOfferMatched(ctx, offer.ID, takerNIM, now); err != nil {
			return err
		}
		if err := tx.MoveEnrollment(ctx, offer.OffererNIM, offer.SourceSectionID, offer.TargetSectionID); err != nil {
			return err
		}
		if err := tx.MoveEnrollment(ctx, takerNIM, offer.TargetSectionID, offer.SourceSectionID); err != nil {
			return err
		}

		offer.Status = models.OfferStatusMatched
		offer.TakerNIM = &takerNIM
		offer.CompletedAt = &now
		matched = offer
		deltas = []models.EnrollmentDelta{
			{NIM: offer.OffererNIM, FromSectionID: offer.SourceSectionID, ToSectionID: offer.TargetSectionID},
			{NIM: takerNIM, FromSectionID: offer.TargetSectionID, ToSectionID: offer.SourceSectionID},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("offerId", matched.ID).
		Str("offererNim", matched.OffererNIM).
		Str("takerNim", takerNIM).
		Msg("Offer matched")

	// The swap is committed; listeners only ever see completed swaps.
	s.notifier.OfferMatched(matched, deltas)
	return matched, nil
}

// CancelOffer terminates an open offer without touching enrollments. Only
// the offerer may cancel, and only while the offer is still open.
func (s *barterServiceImpl) CancelOffer(ctx context.Context, offerID int64, requesterNIM string) (*models.Offer, error) {
	var cancelled *models.Offer

	err := s.offerStore.InSwapTx(ctx, func(ctx context.Context, tx SwapTx) error {
		offer, err := tx.OfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if requesterNIM != offer.OffererNIM {
			return apperrors.NewForbiddenError("Only the offerer may cancel this offer")
		}
		if offer.Status.IsTerminal() {
			return apperrors.NewConflictError("Offer already taken or cancelled")
		}

		if err := tx.MarkOfferCancelled(ctx, offer.ID); err != nil {
			return err
		}
		offer.Status = models.OfferStatusCancelled
		cancelled = offer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("offerId", cancelled.ID).
		Str("offererNim", cancelled.OffererNIM).
		Msg("Offer cancelled")

	s.notifier.OfferCancelled(cancelled)
	return cancelled, nil
}
