package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krswitch/backend/internal/app/models"
	"github.com/krswitch/backend/internal/app/services"
	"github.com/krswitch/backend/internal/db"
	"github.com/krswitch/backend/internal/pkg/apperrors"
	"github.com/krswitch/backend/internal/pkg/dberrors"
)

// OfferRepository handles database operations for barter offers, including
// the atomic swap transaction. Offer rows are only written here: created as
// open, then moved exactly once to matched (inside InSwapTx) or cancelled.
type OfferRepository struct {
	db *pgxpool.Pool
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{
		db: db,
	}
}

const offerColumns = `id, offerer_nim, source_section_id, target_section_id, status, created_at, taker_nim, completed_at`

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var offer models.Offer
	err := row.Scan(
		&offer.ID,
		&offer.OffererNIM,
		&offer.SourceSectionID,
		&offer.TargetSectionID,
		&offer.Status,
		&offer.CreatedAt,
		&offer.TakerNIM,
		&offer.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Create persists a new offer with status open
func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	query := `
		INSERT INTO offers (offerer_nim, source_section_id, target_section_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	offer.Status = models.OfferStatusOpen
	err := r.db.QueryRow(ctx, query,
		offer.OffererNIM,
		offer.SourceSectionID,
		offer.TargetSectionID,
		offer.Status,
	).Scan(&offer.ID, &offer.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating offer: %w", err)
	}

	return nil
}

// GetByID retrieves an offer by ID
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	offer, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferNotFound
		}
		return nil, fmt.Errorf("error retrieving offer: %w", err)
	}

	return offer, nil
}

// ListByStatus retrieves all offers in a given status, newest first
func (r *OfferRepository) ListByStatus(ctx context.Context, status models.OfferStatus) ([]*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}

// InSwapTx runs fn inside a single database transaction. All reads and
// writes performed through the SwapTx handle commit or roll back together.
// Store-level write conflicts (serialization failures, deadlocks) are
// surfaced as conflict errors, never retried.
func (r *OfferRepository) InSwapTx(ctx context.Context, fn func(ctx context.Context, tx services.SwapTx) error) error {
	err := db.RunInTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &swapTx{tx: tx})
	})
	if dberrors.IsStoreConflict(err) {
		return apperrors.NewConflictError("lost the race for a contended record")
	}
	return err
}

// swapTx is the transaction-scoped view of the barter store
type swapTx struct {
	tx pgx.Tx
}

// OfferForUpdate loads an offer under a row lock. Concurrent swap
// transactions on the same offer serialize here.
func (t *swapTx) OfferForUpdate(ctx context.Context, id int64) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 FOR UPDATE`

	offer, err := scanOffer(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferNotFound
		}
		return nil, fmt.Errorf("error locking offer: %w", err)
	}

	return offer, nil
}

// MarkOfferMatched moves an open offer to matched, recording the taker and
// completion time. The status guard in the WHERE clause is the final word:
// zero rows affected means another transaction already closed the offer.
func (t *swapTx) MarkOfferMatched(ctx context.Context, id int64, takerNIM string, completedAt time.Time) error {
	query := `
		UPDATE offers
		SET status = $2, taker_nim = $3, completed_at = $4
		WHERE id = $1 AND status = $5
	`

	cmdTag, err := t.tx.Exec(ctx, query, id, models.OfferStatusMatched, takerNIM, completedAt, models.OfferStatusOpen)
	if err != nil {
		return fmt.Errorf("error matching offer: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError("offer already taken or cancelled")
	}

	return nil
}

// MarkOfferCancelled moves an open offer to cancelled
func (t *swapTx) MarkOfferCancelled(ctx context.Context, id int64) error {
	query := `
		UPDATE offers
		SET status = $2
		WHERE id = $1 AND status = $3
	`

	cmdTag, err := t.tx.Exec(ctx, query, id, models.OfferStatusCancelled, models.OfferStatusOpen)
	if err != nil {
		return fmt.Errorf("error cancelling offer: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError("offer already taken or cancelled")
	}

	return nil
}

// IsEnrolled checks enrollment within the transaction
func (t *swapTx) IsEnrolled(ctx context.Context, nim string, sectionID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM enrollments WHERE nim = $1 AND section_id = $2)`,
		nim, sectionID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}

	return exists, nil
}

// MoveEnrollment moves one student's enrollment between sections. Exactly one
// row must change; anything else means the enrollment was altered by a
// concurrent transaction and the whole swap must abort.
func (t *swapTx) MoveEnrollment(ctx context.Context, nim string, fromSectionID, toSectionID int64) error {
	query := `
		UPDATE enrollments
		SET section_id = $3
		WHERE nim = $1 AND section_id = $2
	`

	cmdTag, err := t.tx.Exec(ctx, query, nim, fromSectionID, toSectionID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollments_nim_section_key") {
			return apperrors.NewConflictError("student already holds the destination section")
		}
		return fmt.Errorf("error moving enrollment: %w", err)
	}

	if cmdTag.RowsAffected() != 1 {
		return apperrors.NewConflictError("enrollment changed by a concurrent swap")
	}

	return nil
}
