package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/veyra/adaptive-auth/internal/domain"
)

// Per-rule score contributions.
const (
	scoreNewDevice        = 15
	scoreUnusualLocation  = 25
	scoreUnusualHours     = 10
	scorePerFailedAttempt = 4
	scoreNewAccount       = 5
	scoreAutomatedClient  = 10
)

// automatedAgents are user-agent substrings for CLI/script clients.
var automatedAgents = []string{
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"postman",
	"httpie",
	"go-http-client",
}

// Config holds the scoring tunables. Level bands are half-open: a score equal
// to a threshold belongs to the higher level.
type Config struct {
	MediumThreshold   int
	HighThreshold     int
	CriticalThreshold int

	// Quiet hours are an inclusive local-hour window. A window wrapping
	// midnight (start > end) is supported.
	QuietHoursStart int
	QuietHoursEnd   int

	// Accounts younger than this are scored as new.
	NewAccountThreshold time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MediumThreshold:     20,
		HighThreshold:       50,
		CriticalThreshold:   75,
		QuietHoursStart:     0,
		QuietHoursEnd:       5,
		NewAccountThreshold: 24 * time.Hour,
	}
}

// Engine scores risk factors. Pure: no I/O, no hidden state, deterministic
// for a given input.
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine with the given tunables.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score evaluates every rule independently and sums the contributions.
// The score has no upper cap.
func (e *Engine) Score(f domain.RiskFactors) domain.RiskAssessment {
	var score int
	var factors []string

	if f.NewDevice {
		score += scoreNewDevice
		factors = append(factors, "New device detected")
	}

	if f.PreviousLoginLocation != "" && f.Location != "" && f.Location != f.PreviousLoginLocation {
		score += scoreUnusualLocation
		factors = append(factors, "Unusual location detected")
	}

	if e.inQuietHours(f.LoginTime.Hour()) {
		score += scoreUnusualHours
		factors = append(factors, "Login during unusual hours")
	}

	if f.FailedAttempts > 0 {
		score += scorePerFailedAttempt * f.FailedAttempts
		factors = append(factors, fmt.Sprintf("%d recent failed attempts", f.FailedAttempts))
	}

	if f.AccountAge != nil && *f.AccountAge < e.cfg.NewAccountThreshold {
		score += scoreNewAccount
		factors = append(factors, "New account login")
	}

	if isAutomatedAgent(f.UserAgent) {
		score += scoreAutomatedClient
		factors = append(factors, "Automated tool detected")
	}

	level := e.levelFor(score)
	return domain.RiskAssessment{
		Score:          score,
		Level:          level,
		Factors:        factors,
		RequiresMFA:    level == domain.RiskHigh || level == domain.RiskCritical,
		RequiresStepUp: level == domain.RiskCritical,
	}
}

// levelFor maps a score to its level. Monotonic: a higher score never yields
// a lower level.
func (e *Engine) levelFor(score int) domain.RiskLevel {
	switch {
	case score >= e.cfg.CriticalThreshold:
		return domain.RiskCritical
	case score >= e.cfg.HighThreshold:
		return domain.RiskHigh
	case score >= e.cfg.MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func (e *Engine) inQuietHours(hour int) bool {
	start, end := e.cfg.QuietHoursStart, e.cfg.QuietHoursEnd
	if start <= end {
		return hour >= start && hour <= end
	}
	// Window wraps midnight, e.g. 22-5.
	return hour >= start || hour <= end
}

func isAutomatedAgent(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, sig := range automatedAgents {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
