package services

import (
	"context"
	"time"

	"github.com/krswitch/backend/internal/app/models"
)

// UserStore provides read access to registered students
type UserStore interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByNIM(ctx context.Context, nim string) (*models.User, error)
	Exists(ctx context.Context, nim string) (bool, error)
}

// SectionStore provides read access to the section catalog
type SectionStore interface {
	GetAll(ctx context.Context) ([]*models.Section, error)
	GetByID(ctx context.Context, id int64) (*models.Section, error)
}

// EnrollmentStore provides read access to current enrollments. Enrollment
// writes happen only inside a SwapTx or through external seeding.
type EnrollmentStore interface {
	GetAll(ctx context.Context) ([]*models.Enrollment, error)
	GetByNIM(ctx context.Context, nim string) ([]*models.Enrollment, error)
	IsEnrolled(ctx context.Context, nim string, sectionID int64) (bool, error)
}

// OfferStore owns offer records and the swap transaction boundary
type OfferStore interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id int64) (*models.Offer, error)
	ListByStatus(ctx context.Context, status models.OfferStatus) ([]*models.Offer, error)

	// InSwapTx runs fn atomically: every read and write made through the
	// SwapTx handle commits together or not at all.
	InSwapTx(ctx context.Context, fn func(ctx context.Context, tx SwapTx) error) error
}

// SwapTx is the transaction-scoped handle handed to InSwapTx callbacks. The
// implementation must serialize concurrent transactions touching the same
// offer row: after OfferForUpdate returns, no other transaction may observe
// or change that offer until this one commits or aborts.
type SwapTx interface {
	OfferForUpdate(ctx context.Context, id int64) (*models.Offer, error)
	MarkOfferMatched(ctx context.Context, id int64, takerNIM string, completedAt time.Time) error
	MarkOfferCancelled(ctx context.Context, id int64) error
	IsEnrolled(ctx context.Context, nim string, sectionID int64) (bool, error)
	MoveEnrollment(ctx context.Context, nim string, fromSectionID, toSectionID int64) error
}

// Notifier receives barter lifecycle events after the underlying state
// change has committed. Delivery is best-effort; implementations must not
// block the caller.
type Notifier interface {
	OfferCreated(offer *models.Offer)
	OfferMatched(offer *models.Offer, deltas []models.EnrollmentDelta)
	OfferCancelled(offer *models.Offer)
}
