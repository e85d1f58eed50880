package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/veyra/adaptive-auth/internal/domain"
)

// PgUserRepository implements UserRepository using pgx.
type PgUserRepository struct{}

// NewPgUserRepository creates a new PgUserRepository.
func NewPgUserRepository() *PgUserRepository {
	return &PgUserRepository{}
}

// FindByEmail returns a user by email, or nil if not found.
func (r *PgUserRepository) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at, updated_at
		 FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID returns a user by ID, or nil if not found.
func (r *PgUserRepository) FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user.
func (r *PgUserRepository) Create(ctx context.Context, db DBTX, user *domain.User) error {
	_, err := db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.Role)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
