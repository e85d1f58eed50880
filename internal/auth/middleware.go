package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/events"
	"github.com/veyra/adaptive-auth/internal/policy"
	"github.com/veyra/adaptive-auth/internal/risk"
)

// DeviceRegistrar marks a device fingerprint as seen for a user. Enrollment
// happens after a request survives risk assessment, so a device stops
// scoring as new once it has been accepted.
type DeviceRegistrar interface {
	MarkSeen(ctx context.Context, userID, fingerprint string) error
}

// AdaptiveAuthenticator runs the full request pipeline: verify bearer token,
// collect risk factors, score, resolve the adaptive action, and bind the
// decision to the request context. Any collaborator failure aborts the
// request; defaulting to low risk on failure would be an authentication
// bypass.
type AdaptiveAuthenticator struct {
	jwtMgr    *JWTManager
	collector *risk.Collector
	engine    *risk.Engine
	resolver  *policy.Resolver
	sink      events.SecurityEventSink
	devices   DeviceRegistrar
	logger    *slog.Logger
}

// NewAdaptiveAuthenticator wires the pipeline. devices may be nil to disable
// enrollment.
func NewAdaptiveAuthenticator(
	jwtMgr *JWTManager,
	collector *risk.Collector,
	engine *risk.Engine,
	resolver *policy.Resolver,
	sink events.SecurityEventSink,
	devices DeviceRegistrar,
	logger *slog.Logger,
) *AdaptiveAuthenticator {
	return &AdaptiveAuthenticator{
		jwtMgr:    jwtMgr,
		collector: collector,
		engine:    engine,
		resolver:  resolver,
		sink:      sink,
		devices:   devices,
		logger:    logger,
	}
}

// Middleware returns the chi-compatible middleware.
func (a *AdaptiveAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := extractAndValidate(r, a.jwtMgr, RealmUser)
		if err != nil {
			writeError(w, domain.ErrUnauthorized(err.Error()))
			return
		}

		factors, err := a.collector.Collect(ctx, r, claims.Subject)
		if err != nil {
			a.logger.Error("risk factor collection failed", "user_id", claims.Subject, "error", err)
			writeError(w, domain.ErrRiskUnavailable("risk signals unavailable", err))
			return
		}

		assessment := a.engine.Score(factors)

		if assessment.RequiresMFA {
			confidence := float64(assessment.Score) / 100.0
			if err := a.sink.RecordAnomalyDetection(ctx, "high_risk_login", confidence, claims.Subject, assessment.Factors); err != nil {
				a.logger.Error("anomaly recording failed", "user_id", claims.Subject, "error", err)
				writeError(w, domain.ErrRiskUnavailable("security event delivery failed", err))
				return
			}
		}

		decision, err := a.resolver.Resolve(ctx, assessment, factors)
		if err != nil {
			// Covers both the CRITICAL block and collaborator failures.
			writeError(w, err)
			return
		}

		setRiskHeaders(w, decision)

		if a.devices != nil && factors.NewDevice {
			// Enrollment is post-decision bookkeeping, not a risk signal read.
			if err := a.devices.MarkSeen(ctx, claims.Subject, factors.DeviceFingerprint); err != nil {
				a.logger.Warn("device enrollment failed", "user_id", claims.Subject, "error", err)
			}
		}

		ctx = context.WithValue(ctx, claimsKey, claims)
		ctx = context.WithValue(ctx, subjectKey, claims.Subject)
		ctx = WithAdaptiveDecision(ctx, decision)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateAdmin returns middleware that validates admin tokens without
// running risk assessment.
func AuthenticateAdmin(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, RealmAdmin)
			if err != nil {
				writeError(w, domain.ErrUnauthorized(err.Error()))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that checks the authenticated role.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, domain.ErrUnauthorized("no auth context"))
				return
			}
			if !roleSet[claims.Role] {
				writeError(w, domain.ErrForbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager, realm Realm) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateTokenForRealm(parts[1], realm)
}

// setRiskHeaders writes the response signaling for non-blocking elevated
// outcomes. LOW requests get no extra headers.
func setRiskHeaders(w http.ResponseWriter, decision *domain.AdaptiveDecision) {
	level := decision.Assessment.Level
	if level != domain.RiskHigh && level != domain.RiskMedium {
		return
	}

	if level == domain.RiskHigh {
		w.Header().Set("X-MFA-Required", "true")
	} else {
		w.Header().Set("X-MFA-Suggested", "true")
	}
	w.Header().Set("X-Risk-Level", string(level))

	factors := decision.Assessment.Factors
	if factors == nil {
		factors = []string{}
	}
	if encoded, err := json.Marshal(factors); err == nil {
		w.Header().Set("X-Risk-Factors", string(encoded))
	}
}

type errorPayload struct {
	ErrorCode   string   `json:"errorCode"`
	Message     string   `json:"message"`
	RiskFactors []string `json:"riskFactors,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		appErr = domain.ErrInternal("internal server error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(errorPayload{
		ErrorCode:   appErr.Code,
		Message:     appErr.Message,
		RiskFactors: appErr.Factors,
	})
}
