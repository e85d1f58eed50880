package domain

import "time"

// RiskLevel classifies the risk of an authenticated request.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// AdaptiveAction is the access-control outcome derived from a risk level.
type AdaptiveAction string

const (
	ActionBlock      AdaptiveAction = "BLOCK"
	ActionRequireMFA AdaptiveAction = "REQUIRE_MFA"
	ActionSuggestMFA AdaptiveAction = "SUGGEST_MFA"
	ActionAllow      AdaptiveAction = "ALLOW"
)

// RiskFactors holds the contextual signals for one request. Built fresh per
// request by the collector; never cached across requests.
type RiskFactors struct {
	UserID            string
	IPAddress         string
	UserAgent         string // empty when the client sent none
	Location          string // from X-User-Location, empty when absent
	DeviceFingerprint string // from X-Device-Fingerprint, empty when absent
	LoginTime         time.Time

	// From the login history provider. Nil/zero values mean no history.
	PreviousLoginTime     *time.Time
	PreviousLoginLocation string
	FailedAttempts        int
	AccountAge            *time.Duration

	// Resolved by the collector against the device registry.
	NewDevice bool

	// Reserved for ML-derived signals; not scored yet.
	UnusualPatterns bool
}

// RiskAssessment is the scoring engine's output. Immutable once computed.
type RiskAssessment struct {
	Score          int       `json:"score"`
	Level          RiskLevel `json:"level"`
	Factors        []string  `json:"factors"`
	RequiresMFA    bool      `json:"requires_mfa"`
	RequiresStepUp bool      `json:"requires_step_up"`
}

// AdaptiveDecision is the per-request outcome of the policy resolver. It is
// attached to the request context in a single write so downstream readers
// always observe a complete decision.
type AdaptiveDecision struct {
	Action     AdaptiveAction `json:"action"`
	MFAToken   string         `json:"mfa_token,omitempty"` // set only for REQUIRE_MFA
	Assessment RiskAssessment `json:"risk_assessment"`
	UserID     string         `json:"user_id"`
}
