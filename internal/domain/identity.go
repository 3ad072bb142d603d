package domain

// Identity is the authenticated caller handed to protected handlers.
// Permissions are a snapshot: taken from the access token when the bearer
// was a signed token, re-resolved from roles when it was a session token.
type Identity struct {
	UserID      string   `json:"id"`
	Permissions []string `json:"permissions"`
	Verified    bool     `json:"is_verified"`
	Active      bool     `json:"is_active"`
}

// HasPermissions reports whether the identity carries every required tag.
func (i *Identity) HasPermissions(required ...string) bool {
	for _, want := range required {
		found := false
		for _, have := range i.Permissions {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
