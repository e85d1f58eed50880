package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veyra/adaptive-auth/internal/auth"
	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/guard"
)

// --- RespondJSON ---

func TestRespondJSON(t *testing.T) {
	t.Run("200 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("204 with nil body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

// --- RespondError ---

func TestRespondError(t *testing.T) {
	t.Run("AppError maps to correct status", func(t *testing.T) {
		tests := []struct {
			err        *domain.AppError
			wantStatus int
			wantCode   string
		}{
			{domain.ErrNotFound("user", "123"), 404, "NOT_FOUND"},
			{domain.ErrValidation("bad input"), 400, "VALIDATION_ERROR"},
			{domain.ErrUnauthorized("no token"), 401, "UNAUTHORIZED"},
			{domain.ErrForbidden("not allowed"), 403, "FORBIDDEN"},
			{domain.ErrConflict("duplicate"), 409, "CONFLICT"},
			{domain.ErrRateLimited("slow down"), 429, "RATE_LIMITED"},
			{domain.ErrRiskBlocked([]string{"New device detected"}), 403, "CRITICAL_RISK_BLOCKED"},
			{domain.ErrRiskUnavailable("history down", nil), 500, "RISK_UNAVAILABLE"},
			{domain.ErrInternal("oops", nil), 500, "INTERNAL_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.wantCode, func(t *testing.T) {
				w := httptest.NewRecorder()
				RespondError(w, tt.err)
				assert.Equal(t, tt.wantStatus, w.Code)

				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body["code"])
			})
		}
	})

	t.Run("generic error returns 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "INTERNAL_ERROR", body["code"])
	})
}

// --- DecodeJSON ---

func TestDecodeJSON(t *testing.T) {
	t.Run("valid JSON body", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name":"test","value":42}`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, "test", dst.Name)
		assert.Equal(t, 42, dst.Value)
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		body := bytes.NewBufferString(`{invalid`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst map[string]interface{}
		require.Error(t, DecodeJSON(r, &dst))
	})

	t.Run("body exceeding 1MiB returns error", func(t *testing.T) {
		bigBody := strings.Repeat("x", 1<<20+1)
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(bigBody))
		var dst map[string]interface{}
		require.Error(t, DecodeJSON(r, &dst))
	})
}

// --- SessionHandler ---

func TestSessionHandler_GetRisk(t *testing.T) {
	h := NewSessionHandler()

	decision := &domain.AdaptiveDecision{
		Action: domain.ActionSuggestMFA,
		Assessment: domain.RiskAssessment{
			Score:   39,
			Level:   domain.RiskMedium,
			Factors: []string{"Unusual location detected"},
		},
		UserID: "user-1",
	}

	r := httptest.NewRequest(http.MethodGet, "/session/risk", nil)
	r = r.WithContext(auth.WithAdaptiveDecision(r.Context(), decision))
	w := httptest.NewRecorder()
	h.GetRisk(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var body domain.AdaptiveDecision
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, domain.ActionSuggestMFA, body.Action)
	assert.Equal(t, 39, body.Assessment.Score)
	assert.Equal(t, "user-1", body.UserID)
}

func TestSessionHandler_GetRisk_NoDecision(t *testing.T) {
	h := NewSessionHandler()

	r := httptest.NewRequest(http.MethodGet, "/session/risk", nil).WithContext(context.Background())
	w := httptest.NewRecorder()
	h.GetRisk(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- AuthHandler guard paths (no DB needed: both fire before the service) ---

func TestAuthHandler_LoginRateLimited(t *testing.T) {
	h := NewAuthHandler(nil, guard.NewRateLimiter(1, time.Minute))

	body := `{"email":"user@test.com","password":"password123"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	r.RemoteAddr = "203.0.113.7:1000"
	w := httptest.NewRecorder()
	h.allow(w, r) // consume the single slot

	r = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	r.RemoteAddr = "203.0.113.7:1001"
	w = httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAuthHandler_LoginRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(nil, guard.NewRateLimiter(100, time.Minute))

	r := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{broken`))
	w := httptest.NewRecorder()
	h.Login(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
