package repository

import (
	"context"

	"github.com/veyra/adaptive-auth/internal/domain"
)

// PgSecurityEventRepository implements SecurityEventRepository using pgx.
type PgSecurityEventRepository struct{}

// NewPgSecurityEventRepository creates a new PgSecurityEventRepository.
func NewPgSecurityEventRepository() *PgSecurityEventRepository {
	return &PgSecurityEventRepository{}
}

// Insert writes one event row. Duplicate IDs are ignored so the consumer can
// re-deliver safely.
func (r *PgSecurityEventRepository) Insert(ctx context.Context, db DBTX, event domain.SecurityEvent) error {
	_, err := db.Exec(ctx, `
		INSERT INTO security_events
			(id, event_type, severity, user_id, ip_address, user_agent,
			 factors, score, anomaly_type, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Type, event.Severity, event.UserID,
		nullIfEmpty(event.IPAddress), nullIfEmpty(event.UserAgent),
		event.Factors, event.Score, nullIfEmpty(event.AnomalyType),
		event.Confidence, event.CreatedAt)
	return err
}

// ListByUser returns the most recent events for a user, newest first.
func (r *PgSecurityEventRepository) ListByUser(ctx context.Context, db DBTX, userID string, limit int) ([]domain.SecurityEvent, error) {
	rows, err := db.Query(ctx, `
		SELECT id, event_type, severity, user_id,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       factors, score, COALESCE(anomaly_type, ''), confidence, created_at
		FROM security_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.SecurityEvent
	for rows.Next() {
		var e domain.SecurityEvent
		if err := rows.Scan(&e.ID, &e.Type, &e.Severity, &e.UserID,
			&e.IPAddress, &e.UserAgent, &e.Factors, &e.Score,
			&e.AnomalyType, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
