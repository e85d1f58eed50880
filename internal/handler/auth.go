package handler

import (
	"net/http"

	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/guard"
	"github.com/veyra/adaptive-auth/internal/risk"
	"github.com/veyra/adaptive-auth/internal/service"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	svc     *service.AuthService
	limiter *guard.RateLimiter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, limiter *guard.RateLimiter) *AuthHandler {
	return &AuthHandler{svc: svc, limiter: limiter}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	var input service.RegisterInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.svc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	input.IP = risk.ClientIP(r)
	input.Location = r.Header.Get("X-User-Location")

	result, err := h.svc.Login(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request) bool {
	result := h.limiter.Check(r.Context(), risk.ClientIP(r))
	if !result.Allowed {
		RespondError(w, domain.ErrRateLimited(result.Reason))
		return false
	}
	return true
}
