package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krswitch/backend/internal/app/models"
)

// EnrollmentRepository handles database operations for enrollments.
// Enrollment rows are created by seeding and moved only by the swap
// transaction (see OfferRepository.InSwapTx).
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
	}
}

// GetAll retrieves a snapshot of all enrollments
func (r *EnrollmentRepository) GetAll(ctx context.Context) ([]*models.Enrollment, error) {
	query := `
		SELECT id, nim, section_id
		FROM enrollments
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.Scan(&enrollment.ID, &enrollment.NIM, &enrollment.SectionID); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// GetByNIM retrieves all enrollments held by one student
func (r *EnrollmentRepository) GetByNIM(ctx context.Context, nim string) ([]*models.Enrollment, error) {
	query := `
		SELECT id, nim, section_id
		FROM enrollments
		WHERE nim = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, nim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.Scan(&enrollment.ID, &enrollment.NIM, &enrollment.SectionID); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// IsEnrolled checks whether a student currently holds a section
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, nim string, sectionID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM enrollments WHERE nim = $1 AND section_id = $2)`,
		nim, sectionID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}

	return exists, nil
}

// Create inserts a new enrollment. Used by seeding only.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (nim, section_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT enrollments_nim_section_key DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, enrollment.NIM, enrollment.SectionID)
	if err != nil {
		return fmt.Errorf("error creating enrollment: %w", err)
	}

	return nil
}
