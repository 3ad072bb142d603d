package domain

// Role bundles a set of permission tags under a name.
// Permission strings are opaque capability tags compared by exact match.
type Role struct {
	RoleID      string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}
