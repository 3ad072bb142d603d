package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drughub-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenEnvelope wraps a successful password sign-in.
type TokenEnvelope struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SessionEnvelope wraps a successful OTP sign-in.
type SessionEnvelope struct {
	Message string          `json:"message,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
}

// SessionsEnvelope wraps the caller's live session list.
type SessionsEnvelope struct {
	Count    int              `json:"count"`
	Sessions []domain.Session `json:"sessions"`
}

// UserEnvelope wraps a single user record.
type UserEnvelope struct {
	User *domain.User `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps a sentinel from the error taxonomy to an HTTP status
// and a non-revealing message. Credential failures come out identical no
// matter which step failed.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "invalid OTP")
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusUnauthorized, "expired")
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrMalformed),
		errors.Is(err, domain.ErrBadSignature):
		writeError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad request")
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
