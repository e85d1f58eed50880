package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDeviceRegistry tracks device fingerprints per user in known_devices.
// It backs both the risk collector's new-device check and post-assessment
// enrollment.
type PgDeviceRegistry struct {
	pool *pgxpool.Pool
}

// NewPgDeviceRegistry creates a device registry over the given pool.
func NewPgDeviceRegistry(pool *pgxpool.Pool) *PgDeviceRegistry {
	return &PgDeviceRegistry{pool: pool}
}

// IsNewDevice reports whether the fingerprint has never been seen for the
// user. Query errors propagate so the caller can fail closed.
func (d *PgDeviceRegistry) IsNewDevice(ctx context.Context, userID, fingerprint string) (bool, error) {
	var known bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM known_devices WHERE user_id = $1 AND fingerprint = $2
		 )`, userID, fingerprint).Scan(&known)
	if err != nil {
		return false, fmt.Errorf("query known devices: %w", err)
	}
	return !known, nil
}

// MarkSeen upserts the fingerprint, refreshing last_seen_at.
func (d *PgDeviceRegistry) MarkSeen(ctx context.Context, userID, fingerprint string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO known_devices (user_id, fingerprint)
		VALUES ($1, $2)
		ON CONFLICT (user_id, fingerprint)
		DO UPDATE SET last_seen_at = now()`,
		userID, fingerprint)
	if err != nil {
		return fmt.Errorf("mark device seen: %w", err)
	}
	return nil
}
