package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veyra/adaptive-auth/internal/risk"
)

// PgLoginHistoryProvider aggregates per-user login history out of the users
// and login_attempts tables. It is the production backend for the risk
// collector's history lookups and also records attempts from the credential
// flow.
type PgLoginHistoryProvider struct {
	pool *pgxpool.Pool

	// Failed attempts older than this window stop counting against the user.
	failedWindow time.Duration
}

// NewPgLoginHistoryProvider creates a history provider over the given pool.
func NewPgLoginHistoryProvider(pool *pgxpool.Pool, failedWindow time.Duration) *PgLoginHistoryProvider {
	return &PgLoginHistoryProvider{pool: pool, failedWindow: failedWindow}
}

// Get returns the login history for a user, or (nil, nil) when the user has
// no record. Query errors propagate so the caller can fail closed.
func (p *PgLoginHistoryProvider) Get(ctx context.Context, userID string) (*risk.LoginHistory, error) {
	var createdAt time.Time
	err := p.pool.QueryRow(ctx,
		`SELECT created_at FROM users WHERE id = $1`, userID).Scan(&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	history := &risk.LoginHistory{}
	age := time.Since(createdAt)
	history.AccountAge = &age

	var lastLoginAt time.Time
	var lastLocation *string
	err = p.pool.QueryRow(ctx,
		`SELECT created_at, location FROM login_attempts
		 WHERE user_id = $1 AND success = true
		 ORDER BY created_at DESC LIMIT 1`, userID).Scan(&lastLoginAt, &lastLocation)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// First login; no previous location to compare against.
	case err != nil:
		return nil, fmt.Errorf("query last login: %w", err)
	default:
		history.LastLoginAt = &lastLoginAt
		if lastLocation != nil {
			history.LastLoginLocation = *lastLocation
		}
	}

	err = p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM login_attempts
		 WHERE user_id = $1 AND success = false AND created_at > $2`,
		userID, time.Now().Add(-p.failedWindow)).Scan(&history.FailedAttempts)
	if err != nil {
		return nil, fmt.Errorf("count failed attempts: %w", err)
	}

	return history, nil
}

// RecordAttempt inserts one login attempt row. userID is nil when the email
// did not resolve to an account.
func (p *PgLoginHistoryProvider) RecordAttempt(ctx context.Context, userID *uuid.UUID, email, ip, location string, success bool) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO login_attempts (user_id, email, ip_address, location, success)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, email, ip, nullIfEmpty(location), success)
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
