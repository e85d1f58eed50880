package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/veyra/adaptive-auth/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByEmail returns a user by email, or nil if not found.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)

	// FindByID returns a user by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id string) (*domain.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error
}

// SecurityEventRepository persists the audit trail consumed from the
// security-events topic.
type SecurityEventRepository interface {
	// Insert writes one event row.
	Insert(ctx context.Context, db DBTX, event domain.SecurityEvent) error

	// ListByUser returns the most recent events for a user.
	ListByUser(ctx context.Context, db DBTX, userID string, limit int) ([]domain.SecurityEvent, error)
}
