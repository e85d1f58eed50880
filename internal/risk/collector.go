package risk

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/veyra/adaptive-auth/internal/domain"
)

// Collector assembles a complete RiskFactors value from the inbound request
// plus the external history and device lookups. Lookup failures propagate:
// substituting defaults would mask risk signals.
type Collector struct {
	history LoginHistoryProvider
	devices DeviceKnownChecker
}

// NewCollector creates a factor collector.
func NewCollector(history LoginHistoryProvider, devices DeviceKnownChecker) *Collector {
	return &Collector{history: history, devices: devices}
}

// Collect builds the risk factors for one request.
func (c *Collector) Collect(ctx context.Context, r *http.Request, userID string) (domain.RiskFactors, error) {
	f := domain.RiskFactors{
		UserID:            userID,
		IPAddress:         ClientIP(r),
		UserAgent:         r.Header.Get("User-Agent"),
		Location:          r.Header.Get("X-User-Location"),
		DeviceFingerprint: r.Header.Get("X-Device-Fingerprint"),
		LoginTime:         time.Now(),
	}

	history, err := c.history.Get(ctx, userID)
	if err != nil {
		return domain.RiskFactors{}, fmt.Errorf("login history lookup: %w", err)
	}
	if history != nil {
		f.PreviousLoginTime = history.LastLoginAt
		f.PreviousLoginLocation = history.LastLoginLocation
		f.FailedAttempts = history.FailedAttempts
		f.AccountAge = history.AccountAge
	}

	if f.DeviceFingerprint != "" {
		newDevice, err := c.devices.IsNewDevice(ctx, userID, f.DeviceFingerprint)
		if err != nil {
			return domain.RiskFactors{}, fmt.Errorf("device lookup: %w", err)
		}
		f.NewDevice = newDevice
	}

	return f, nil
}

// ClientIP resolves the client address: first X-Forwarded-For entry, then
// X-Real-IP, then the transport peer address, then "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
