package auth

import (
	"context"

	"github.com/veyra/adaptive-auth/internal/domain"
)

type contextKey string

const (
	claimsKey   contextKey = "auth_claims"
	subjectKey  contextKey = "auth_subject"
	adaptiveKey contextKey = "adaptive_auth"
)

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// SubjectFromContext extracts the subject ID string from request context.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}

// WithAdaptiveDecision binds the complete decision to the context in a single
// write. The decision must be fully built before calling this; there is no
// way to attach the assessment and the adaptive state separately, so readers
// can never observe a half-built decision.
func WithAdaptiveDecision(ctx context.Context, decision *domain.AdaptiveDecision) context.Context {
	return context.WithValue(ctx, adaptiveKey, decision)
}

// GetAdaptiveAuthResult returns the decision bound to the request context, or
// nil when the request did not pass through the adaptive middleware.
func GetAdaptiveAuthResult(ctx context.Context) *domain.AdaptiveDecision {
	decision, _ := ctx.Value(adaptiveKey).(*domain.AdaptiveDecision)
	return decision
}
