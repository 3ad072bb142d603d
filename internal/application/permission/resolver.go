package permission

import (
	"context"
	"log/slog"
	"sort"

	"github.com/drughub-api/internal/domain"
)

// UserStore is the minimal identity lookup the resolver needs.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

// RoleStore fetches role records by id.
type RoleStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Role, error)
}

// Resolver turns an account id into the union of its roles' permission tags.
type Resolver struct {
	users UserStore
	roles RoleStore
}

func NewResolver(users UserStore, roles RoleStore) *Resolver {
	return &Resolver{users: users, roles: roles}
}

// Resolve returns the deduplicated, sorted permission set for an account.
// An unknown account, an account with no roles, and a store failure all
// degrade to the empty set so authentication can still succeed with zero
// privileges; failures are logged, never returned.
func (r *Resolver) Resolve(ctx context.Context, accountID string) []string {
	u, err := r.users.GetByID(ctx, accountID)
	if err != nil {
		slog.Warn("permission resolution degraded to empty set", "account_id", accountID, "err", err)
		return []string{}
	}
	if u == nil || len(u.RoleIDs) == 0 {
		return []string{}
	}

	roles, err := r.roles.GetByIDs(ctx, u.RoleIDs)
	if err != nil {
		slog.Warn("permission resolution degraded to empty set", "account_id", accountID, "err", err)
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, p := range role.Permissions {
			seen[p] = struct{}{}
		}
	}
	perms := make([]string, 0, len(seen))
	for p := range seen {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}
