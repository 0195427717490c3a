package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	SectionRepository    *SectionRepository
	EnrollmentRepository *EnrollmentRepository
	OfferRepository      *OfferRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		SectionRepository:    NewSectionRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		OfferRepository:      NewOfferRepository(db),
	}
}
