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

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// GetAll retrieves all users
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT nim, name, email
		FROM users
		ORDER BY nim
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.NIM, &user.Name, &user.Email); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// GetByNIM retrieves a user by student number
func (r *UserRepository) GetByNIM(ctx context.Context, nim string) (*models.User, error) {
	query := `
		SELECT nim, name, email
		FROM users
		WHERE nim = $1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, nim).Scan(&user.NIM, &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// Exists checks if a user exists by student number
func (r *UserRepository) Exists(ctx context.Context, nim string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE nim = $1)`,
		nim).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}

	return exists, nil
}

// Create inserts a new user. Used by seeding only; the engine never writes users.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (nim, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (nim) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, user.NIM, user.Name, user.Email)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}
