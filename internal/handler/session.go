package handler

import (
	"net/http"

	"github.com/veyra/adaptive-auth/internal/auth"
	"github.com/veyra/adaptive-auth/internal/domain"
)

// SessionHandler exposes the adaptive decision bound to the current request.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// GetRisk handles GET /session/risk. It reads the decision the adaptive
// middleware bound to the request context; a downstream MFA controller uses
// the same accessor to pick up the pending challenge token.
func (h *SessionHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	decision := auth.GetAdaptiveAuthResult(r.Context())
	if decision == nil {
		RespondError(w, domain.ErrInternal("no adaptive decision bound to request", nil))
		return
	}
	RespondJSON(w, http.StatusOK, decision)
}
