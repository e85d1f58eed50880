// Package policy converts risk assessments into binding access-control
// decisions.
package policy

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/events"
)

const mfaTokenBytes = 32

// Resolver maps each risk level to an adaptive action. One-shot per request:
// there is no retry state, the next request gets a fresh assessment.
type Resolver struct {
	sink   events.SecurityEventSink
	logger *slog.Logger
}

// NewResolver creates a policy resolver.
func NewResolver(sink events.SecurityEventSink, logger *slog.Logger) *Resolver {
	return &Resolver{sink: sink, logger: logger}
}

// Resolve builds the complete decision for one request. For CRITICAL the
// returned error is the block itself (domain.ErrRiskBlocked); any other
// non-nil error means a collaborator failed and the request must abort.
// The decision value is fully built before the caller attaches it anywhere.
func (r *Resolver) Resolve(ctx context.Context, assessment domain.RiskAssessment, factors domain.RiskFactors) (*domain.AdaptiveDecision, error) {
	decision := &domain.AdaptiveDecision{
		Assessment: assessment,
		UserID:     factors.UserID,
	}

	switch assessment.Level {
	case domain.RiskCritical:
		decision.Action = domain.ActionBlock
		if err := r.recordAuthEvent(ctx, domain.SeverityCritical, assessment, factors); err != nil {
			return nil, domain.ErrRiskUnavailable("record security event", err)
		}
		r.logger.Warn("critical risk blocked",
			"user_id", factors.UserID,
			"ip", factors.IPAddress,
			"score", assessment.Score,
			"factors", assessment.Factors,
		)
		return decision, domain.ErrRiskBlocked(assessment.Factors)

	case domain.RiskHigh:
		token, err := newMFAToken()
		if err != nil {
			return nil, domain.ErrRiskUnavailable("generate mfa token", err)
		}
		decision.Action = domain.ActionRequireMFA
		decision.MFAToken = token
		if err := r.recordAuthEvent(ctx, domain.SeverityHigh, assessment, factors); err != nil {
			return nil, domain.ErrRiskUnavailable("record security event", err)
		}
		return decision, nil

	case domain.RiskMedium:
		decision.Action = domain.ActionSuggestMFA
		if err := r.recordAuthEvent(ctx, domain.SeverityMedium, assessment, factors); err != nil {
			return nil, domain.ErrRiskUnavailable("record security event", err)
		}
		return decision, nil

	default:
		decision.Action = domain.ActionAllow
		r.logger.Debug("low risk allowed", "user_id", factors.UserID, "score", assessment.Score)
		return decision, nil
	}
}

func (r *Resolver) recordAuthEvent(ctx context.Context, severity string, assessment domain.RiskAssessment, factors domain.RiskFactors) error {
	event := domain.NewSecurityEvent(domain.EventAuthentication, severity, factors.UserID)
	event.IPAddress = factors.IPAddress
	event.UserAgent = factors.UserAgent
	event.Factors = assessment.Factors
	event.Score = assessment.Score
	return r.sink.RecordSecurityEvent(ctx, event)
}

// newMFAToken mints a single-use opaque challenge handle: 32 bytes of
// cryptographically secure randomness, hex-encoded.
func newMFAToken() (string, error) {
	buf := make([]byte, mfaTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
