package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/krswitch/backend/internal/app/models"
	appRepos "github.com/krswitch/backend/internal/app/repositories"
)

// CreateDefaultData populates an empty database with a small roster of
// students, a catalog of parallel sections, and one enrollment per student
// per swap group. Existing data is left untouched; the whole step is a no-op
// when sections already exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	sectionRepo := appRepos.NewSectionRepository(dbPool)
	enrollmentRepo := appRepos.NewEnrollmentRepository(dbPool)

	count, err := sectionRepo.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		lgr.Debug().Int64("sections", count).Msg("Default data already present, skipping seed")
		return nil
	}

	lgr.Info().Msg("Creating default data (students, sections, enrollments)...")
	var finalErr error

	users := []*appModels.User{
		{NIM: "M6401211001", Name: "Andi Pratama", Email: "andi@student.example.ac.id"},
		{NIM: "M6401211002", Name: "Budi Santoso", Email: "budi@student.example.ac.id"},
		{NIM: "M6401211003", Name: "Citra Lestari", Email: "citra@student.example.ac.id"},
		{NIM: "M6401211004", Name: "Dewi Anggraini", Email: "dewi@student.example.ac.id"},
		{NIM: "M6401211005", Name: "Eko Wibowo", Email: "eko@student.example.ac.id"},
		{NIM: "M6401211006", Name: "Fitri Handayani", Email: "fitri@student.example.ac.id"},
	}
	for _, u := range users {
		if err := userRepo.Create(ctx, u); err != nil {
			lgr.Error().Err(err).Str("nim", u.NIM).Msg("Error creating default student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	sections := []*appModels.Section{
		{CourseCode: "KOM201", CourseName: "Basis Data", ClassCode: "K1", Day: "Senin", TimeStart: "08:00", TimeEnd: "10:00", Room: "FMIPA 1.1"},
		{CourseCode: "KOM201", CourseName: "Basis Data", ClassCode: "K2", Day: "Selasa", TimeStart: "10:00", TimeEnd: "12:00", Room: "FMIPA 1.2"},
		{CourseCode: "KOM201", CourseName: "Basis Data", ClassCode: "P1", Day: "Rabu", TimeStart: "13:00", TimeEnd: "15:00", Room: "Lab Komputer 1"},
		{CourseCode: "KOM201", CourseName: "Basis Data", ClassCode: "P2", Day: "Kamis", TimeStart: "13:00", TimeEnd: "15:00", Room: "Lab Komputer 2"},
		{CourseCode: "KOM202", CourseName: "Struktur Data", ClassCode: "K1", Day: "Senin", TimeStart: "13:00", TimeEnd: "15:00", Room: "FMIPA 2.1"},
		{CourseCode: "KOM202", CourseName: "Struktur Data", ClassCode: "K2", Day: "Jumat", TimeStart: "08:00", TimeEnd: "10:00", Room: "FMIPA 2.2"},
		{CourseCode: "MAT203", CourseName: "Kalkulus II", ClassCode: "R1", Day: "Selasa", TimeStart: "15:00", TimeEnd: "16:00", Room: "FMIPA 3.1"},
		{CourseCode: "MAT203", CourseName: "Kalkulus II", ClassCode: "R2", Day: "Kamis", TimeStart: "15:00", TimeEnd: "16:00", Room: "FMIPA 3.2"},
	}
	for _, s := range sections {
		if err := sectionRepo.Create(ctx, s); err != nil {
			lgr.Error().Err(err).Str("course", s.CourseCode).Str("class", s.ClassCode).Msg("Error creating default section")
			finalErr = errors.Join(finalErr, err)
		}
	}
	if finalErr != nil {
		return finalErr
	}

	// Spread the students round-robin over each swap group so every group
	// has holders on both sides and discovery finds opportunities right away.
	catalog := map[string][]*appModels.Section{}
	for _, s := range sections {
		key := s.CourseCode + string(s.TypeTag())
		catalog[key] = append(catalog[key], s)
	}
	for _, group := range catalog {
		for i, u := range users {
			section := group[i%len(group)]
			enrollment := &appModels.Enrollment{NIM: u.NIM, SectionID: section.ID}
			if err := enrollmentRepo.Create(ctx, enrollment); err != nil {
				lgr.Error().Err(err).Str("nim", u.NIM).Int64("sectionId", section.ID).Msg("Error creating default enrollment")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	if finalErr == nil {
		lgr.Info().
			Int("students", len(users)).
			Int("sections", len(sections)).
			Msg("Default data created")
	}
	return finalErr
}
