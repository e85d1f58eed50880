package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	err := ErrValidation("bad input")
	assert.Equal(t, "VALIDATION_ERROR: bad input", err.Error())

	cause := fmt.Errorf("connection refused")
	wrapped := ErrInternal("query users", cause)
	assert.Contains(t, wrapped.Error(), "INTERNAL_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrRiskBlocked_CarriesFactors(t *testing.T) {
	factors := []string{"Unusual location detected", "Automated tool detected"}
	err := ErrRiskBlocked(factors)

	assert.Equal(t, "CRITICAL_RISK_BLOCKED", err.Code)
	assert.Equal(t, 403, err.Status)
	assert.Equal(t, factors, err.Factors)
}

func TestErrRiskUnavailable_IsServerError(t *testing.T) {
	err := ErrRiskUnavailable("login history lookup failed", fmt.Errorf("timeout"))
	assert.Equal(t, "RISK_UNAVAILABLE", err.Code)
	assert.Equal(t, 500, err.Status)
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("trailing@"))
	assert.Error(t, ValidateEmail("@leading.com"))
	assert.Error(t, ValidateEmail("user@nodot"))
}
