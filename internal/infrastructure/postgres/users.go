package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drughub-api/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// UserRepo reads and writes identity records. Lookups return (nil, nil) on
// missing rows; an error always means the database itself failed.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, user_name, email, phone, hashed_password, role_ids, is_verified, is_active, last_login, created_at, updated_at`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// Create persists the user. The user must have UserID set; it is not
// assigned here. Email collisions map to domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	roleIDs, err := json.Marshal(u.RoleIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, user_name, email, phone, hashed_password, role_ids, is_verified, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.UserID, u.UserName, u.Email, u.Phone, u.PasswordHash, roleIDs, u.Verified, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert user: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, userName, email, phone *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET
		   user_name = COALESCE($2, user_name),
		   email     = COALESCE($3, email),
		   phone     = COALESCE($4, phone),
		   updated_at = $5
		 WHERE id = $1`,
		userID, userName, email, phone, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update user: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

func (r *UserRepo) SetLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("set last login: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

func (r *UserRepo) SetVerified(ctx context.Context, userID string, verified bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_verified = $2, updated_at = $3 WHERE id = $1`,
		userID, verified, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set verified: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u        domain.User
		roleIDs  []byte
		phone    sql.NullString
		lastSeen sql.NullTime
	)
	err := row.Scan(&u.UserID, &u.UserName, &u.Email, &phone, &u.PasswordHash,
		&roleIDs, &u.Verified, &u.Active, &lastSeen, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %v: %w", err, domain.ErrStoreUnavailable)
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		u.LastLogin = &t
	}
	if len(roleIDs) > 0 {
		if err := json.Unmarshal(roleIDs, &u.RoleIDs); err != nil {
			return nil, fmt.Errorf("decode role_ids: %v: %w", err, domain.ErrStoreUnavailable)
		}
	}
	return &u, nil
}
