package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/drughub-api/internal/domain"
	"github.com/drughub-api/internal/pkg/id"
	"github.com/drughub-api/internal/pkg/password"
)

// UserStore is the persistence surface for registration and profile changes.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateProfile(ctx context.Context, userID string, userName, email, phone *string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// ChallengeService is the slice of the OTP service the recovery flow needs.
type ChallengeService interface {
	IssueRecovery(ctx context.Context, email string) error
	VerifyChallenge(ctx context.Context, email, code string) error
}

// Service covers the account-write operations that live outside the
// authentication core: registration, profile updates, password changes and
// forgotten-password recovery.
type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, req domain.UpdatePasswordRequest) error
	RecoverPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
}

type service struct {
	users      UserStore
	hasher     *password.Hasher
	challenges ChallengeService
}

func NewService(users UserStore, hasher *password.Hasher, challenges ChallengeService) Service {
	return &service{users: users, hasher: hasher, challenges: challenges}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		UserName:     req.UserName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		RoleIDs:      req.RoleIDs,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, req.UserName, req.Email, req.Phone); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user vanished after update: %w", domain.ErrNotFound)
	}
	return u, nil
}

// ChangePassword requires the current password to match before accepting a
// new one.
func (s *service) ChangePassword(ctx context.Context, userID string, req domain.UpdatePasswordRequest) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if !s.hasher.Verify(req.CurrentPassword, u.PasswordHash) {
		return fmt.Errorf("current password mismatch: %w", domain.ErrInvalidCredentials)
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// RecoverPassword emails a recovery code to the account's address. An
// unknown email gets the same acknowledgment with no code issued, so the
// endpoint cannot be used to enumerate accounts.
func (s *service) RecoverPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		slog.Info("password recovery requested for unknown email", "email", email)
		return nil
	}
	return s.challenges.IssueRecovery(ctx, email)
}

// ResetPassword sets a new password for the holder of a valid recovery code.
// The current password is not required; proving control of the mailbox
// stands in for it.
func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := s.challenges.VerifyChallenge(ctx, req.Email, req.OTP); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("reset password: %w", domain.ErrInvalidCredentials)
	}
	if !u.Active {
		return fmt.Errorf("inactive account: %w", domain.ErrForbidden)
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.UserID, hash)
}
