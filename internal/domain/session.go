package domain

import "time"

// Session is the ephemeral proof of a logged-in device or browser. It lives
// in Redis under the owning account's session hash and is addressable through
// a reverse index keyed by the opaque token. Each login adds a session to the
// account's collection; earlier sessions stay valid until TTL or logout.
type Session struct {
	SessionToken string     `json:"session_token"`
	AccountID    string     `json:"account_id"`
	IP           string     `json:"ip"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
