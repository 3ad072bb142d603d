package handler

import (
	"encoding/json"
	"net/http"

	"github.com/drughub-api/internal/application/user"
	"github.com/drughub-api/internal/domain"
	"github.com/drughub-api/internal/pkg/validate"
)

// PasswordRecoveryHandler handles the forgotten-password flow: a recovery
// code is emailed, then exchanged together with a new password.
type PasswordRecoveryHandler struct {
	svc user.Service
}

func NewPasswordRecoveryHandler(svc user.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

// Recover acknowledges with 202 whether or not the account exists; the code
// is only dispatched when it does.
func (h *PasswordRecoveryHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req domain.RecoverPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RecoverPassword(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "Password recovery email sent"})
}

func (h *PasswordRecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password updated successfully"})
}
