package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"-"`
	Cause   error    `json:"-"`
	Factors []string `json:"-"` // populated for risk-block errors
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// ErrRiskBlocked is the terminal outcome for CRITICAL risk. Carries the
// triggered factor labels for the response payload. Never retried — the same
// signals produce the same block.
func ErrRiskBlocked(factors []string) *AppError {
	return &AppError{
		Code:    "CRITICAL_RISK_BLOCKED",
		Message: "access blocked due to critical risk level",
		Status:  403,
		Factors: factors,
	}
}

// ErrRiskUnavailable wraps a collaborator failure during risk assessment.
// The request must abort: substituting a low-risk default on failure would
// fail open.
func ErrRiskUnavailable(msg string, cause error) *AppError {
	return &AppError{Code: "RISK_UNAVAILABLE", Message: msg, Status: 500, Cause: cause}
}
