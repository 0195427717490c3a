package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krswitch/backend/internal/app/models"
	"github.com/krswitch/backend/internal/pkg/apperrors"
)

// SectionRepository handles database operations for course sections
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{
		db: db,
	}
}

const sectionColumns = `id, course_code, course_name, class_code, day, time_start, time_end, room`

func scanSection(row pgx.Row) (*models.Section, error) {
	var section models.Section
	err := row.Scan(
		&section.ID,
		&section.CourseCode,
		&section.CourseName,
		&section.ClassCode,
		&section.Day,
		&section.TimeStart,
		&section.TimeEnd,
		&section.Room,
	)
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// GetAll retrieves all sections
func (r *SectionRepository) GetAll(ctx context.Context) ([]*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections ORDER BY course_code, class_code`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*models.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = $1`

	section, err := scanSection(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSectionNotFound
		}
		return nil, fmt.Errorf("error retrieving section: %w", err)
	}

	return section, nil
}

// Create inserts a new section. Used by seeding only; sections are immutable.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	query := `
		INSERT INTO sections (course_code, course_name, class_code, day, time_start, time_end, room)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		section.CourseCode,
		section.CourseName,
		section.ClassCode,
		section.Day,
		section.TimeStart,
		section.TimeEnd,
		section.Room,
	).Scan(&section.ID)
	if err != nil {
		return fmt.Errorf("error creating section: %w", err)
	}

	return nil
}

// CountAll returns the number of sections in the catalog
func (r *SectionRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sections`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting sections: %w", err)
	}
	return count, nil
}
