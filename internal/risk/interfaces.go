package risk

import (
	"context"
	"time"
)

// LoginHistory is the per-user record returned by the history provider.
type LoginHistory struct {
	LastLoginAt       *time.Time
	LastLoginLocation string
	FailedAttempts    int
	AccountAge        *time.Duration
}

// LoginHistoryProvider looks up login history for a user. A missing record
// returns (nil, nil); an error means the signal source is unavailable and the
// assessment must abort.
type LoginHistoryProvider interface {
	Get(ctx context.Context, userID string) (*LoginHistory, error)
}

// DeviceKnownChecker reports whether a device fingerprint has been seen for a
// user before.
type DeviceKnownChecker interface {
	IsNewDevice(ctx context.Context, userID, fingerprint string) (bool, error)
}
