package handler

import (
	"encoding/json"
	"net/http"

	"github.com/drughub-api/internal/application/auth"
	"github.com/drughub-api/internal/application/otp"
	"github.com/drughub-api/internal/pkg/validate"
	"github.com/drughub-api/internal/transport/http/middleware"
)

// AuthHandler handles sign-in, OTP and session endpoints.
type AuthHandler struct {
	svc auth.Service
	otp otp.Service
}

func NewAuthHandler(svc auth.Service, otpSvc otp.Service) *AuthHandler {
	return &AuthHandler{svc: svc, otp: otpSvc}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req auth.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.svc.AuthenticateWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{AccessToken: token, TokenType: "bearer"})
}

// SendOTP acknowledges with 202 as soon as the challenge secret is stored;
// email delivery happens out-of-band.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.otp.IssueChallenge(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "OTP sent"})
}

func (h *AuthHandler) OTPSignIn(w http.ResponseWriter, r *http.Request) {
	var req auth.OTPSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.svc.AuthenticateWithOTP(r.Context(), req.Email, req.OTP, middleware.RealIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Message: "OTP verified successfully", Session: sess})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), middleware.BearerFromRequest(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "signed out"})
}

func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessions, err := h.svc.Sessions(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionsEnvelope{Count: len(sessions), Sessions: sessions})
}
