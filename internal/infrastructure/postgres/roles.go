package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/drughub-api/internal/domain"
)

// RoleRepo reads role records. Permission lists are stored as jsonb arrays
// of opaque capability tags.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// GetByIDs returns the roles matching ids. Unknown ids are simply absent
// from the result, not an error.
func (r *RoleRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, permissions FROM roles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query roles: %v: %w", err, domain.ErrStoreUnavailable)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var (
			role  domain.Role
			perms []byte
		)
		if err := rows.Scan(&role.RoleID, &role.Name, &perms); err != nil {
			return nil, fmt.Errorf("scan role: %v: %w", err, domain.ErrStoreUnavailable)
		}
		if len(perms) > 0 {
			if err := json.Unmarshal(perms, &role.Permissions); err != nil {
				return nil, fmt.Errorf("decode permissions: %v: %w", err, domain.ErrStoreUnavailable)
			}
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return roles, nil
}
