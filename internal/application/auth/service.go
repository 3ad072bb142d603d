package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/drughub-api/internal/domain"
	jwtinfra "github.com/drughub-api/internal/infrastructure/jwt"
	"github.com/drughub-api/internal/pkg/password"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPSignInRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// UserStore is the identity lookup surface the orchestrator needs. Both
// lookups return (nil, nil) on a miss; errors are infrastructure failures.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	SetLastLogin(ctx context.Context, userID string, at time.Time) error
	SetVerified(ctx context.Context, userID string, verified bool) error
}

// SessionStore persists session records and their token reverse index.
type SessionStore interface {
	Create(ctx context.Context, accountID, clientAddr string) (*domain.Session, error)
	Get(ctx context.Context, accountID, sessionToken string) (*domain.Session, error)
	ResolveAccount(ctx context.Context, sessionToken string) (string, error)
	Destroy(ctx context.Context, sessionToken string) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.Session, error)
}

// TokenCodec mints and verifies signed access tokens.
type TokenCodec interface {
	Mint(subject string, ttl time.Duration, permissions []string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

// PermissionResolver computes an account's permission set, degrading to
// empty on any failure.
type PermissionResolver interface {
	Resolve(ctx context.Context, accountID string) []string
}

// OTPVerifier validates emailed one-time codes.
type OTPVerifier interface {
	VerifyChallenge(ctx context.Context, email, code string) error
}

// Service is the authentication orchestrator: it owns the full credential →
// identity round trip across the relational store, the key-value store, the
// hasher and the token codec.
type Service interface {
	AuthenticateWithPassword(ctx context.Context, email, plain string) (accessToken string, err error)
	AuthenticateWithOTP(ctx context.Context, email, code, clientAddr string) (*domain.Session, error)
	AuthenticateRequest(ctx context.Context, bearer string) (*domain.Identity, error)
	Logout(ctx context.Context, bearer string) error
	Sessions(ctx context.Context, accountID string) ([]domain.Session, error)
}

type service struct {
	users    UserStore
	sessions SessionStore
	codec    TokenCodec
	resolver PermissionResolver
	otp      OTPVerifier
	hasher   *password.Hasher

	// dummyDigest absorbs a bcrypt comparison when the account does not
	// exist, keeping the unknown-email and wrong-password paths in the
	// same timing class.
	dummyDigest string
}

func NewService(users UserStore, sessions SessionStore, codec TokenCodec, resolver PermissionResolver, otp OTPVerifier, hasher *password.Hasher) (Service, error) {
	dummy, err := hasher.Hash("drughub-timing-equalizer")
	if err != nil {
		return nil, err
	}
	return &service{
		users:       users,
		sessions:    sessions,
		codec:       codec,
		resolver:    resolver,
		otp:         otp,
		hasher:      hasher,
		dummyDigest: dummy,
	}, nil
}

// AuthenticateWithPassword verifies a credential pair and mints a signed
// access token with the account's permission snapshot baked in. Unknown
// email and wrong password collapse to the same outcome so responses cannot
// be used to enumerate accounts.
func (s *service) AuthenticateWithPassword(ctx context.Context, email, plain string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		s.hasher.Verify(plain, s.dummyDigest)
		slog.Info("failed login attempt", "email", email)
		return "", fmt.Errorf("signin: %w", domain.ErrInvalidCredentials)
	}
	if !s.hasher.Verify(plain, u.PasswordHash) {
		slog.Info("failed login attempt", "email", email)
		return "", fmt.Errorf("signin: %w", domain.ErrInvalidCredentials)
	}

	perms := s.resolver.Resolve(ctx, u.UserID)
	token, err := s.codec.Mint(u.UserID, 0, perms)
	if err != nil {
		return "", err
	}

	if err := s.users.SetLastLogin(ctx, u.UserID, time.Now().UTC()); err != nil {
		slog.Warn("failed to record last login", "user_id", u.UserID, "err", err)
	}
	return token, nil
}

// AuthenticateWithOTP validates an emailed one-time code and opens a
// session. An unknown account collapses to the same invalid-credentials
// outcome as the password path.
func (s *service) AuthenticateWithOTP(ctx context.Context, email, code, clientAddr string) (*domain.Session, error) {
	if err := s.otp.VerifyChallenge(ctx, email, code); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("otp signin: %w", domain.ErrInvalidCredentials)
	}

	sess, err := s.sessions.Create(ctx, u.UserID, clientAddr)
	if err != nil {
		return nil, err
	}
	// Proving control of the mailbox doubles as email verification.
	if !u.Verified {
		if err := s.users.SetVerified(ctx, u.UserID, true); err != nil {
			slog.Warn("failed to mark account verified", "user_id", u.UserID, "err", err)
		}
	}
	if err := s.users.SetLastLogin(ctx, u.UserID, sess.CreatedAt); err != nil {
		slog.Warn("failed to record last login", "user_id", u.UserID, "err", err)
	}
	return sess, nil
}

// AuthenticateRequest recovers an identity from a bearer credential. An
// opaque session token resolves through the reverse index with permissions
// re-resolved from roles; anything else must verify as a signed access token
// whose permission snapshot is trusted as minted. Account status is always
// loaded fresh from the relational store so deactivation takes effect
// before token expiry.
func (s *service) AuthenticateRequest(ctx context.Context, bearer string) (*domain.Identity, error) {
	accountID, err := s.sessions.ResolveAccount(ctx, bearer)
	if err != nil {
		return nil, err
	}

	if accountID != "" {
		sess, err := s.sessions.Get(ctx, accountID, bearer)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, fmt.Errorf("session record missing: %w", domain.ErrUnauthenticated)
		}
		return s.identityFor(ctx, accountID, nil)
	}

	claims, err := s.codec.Verify(bearer)
	if err != nil {
		if errors.Is(err, domain.ErrExpired) || errors.Is(err, domain.ErrMalformed) || errors.Is(err, domain.ErrBadSignature) {
			return nil, err
		}
		return nil, fmt.Errorf("unresolvable bearer credential: %w", domain.ErrUnauthenticated)
	}
	return s.identityFor(ctx, claims.Subject, claims.Permissions)
}

// identityFor loads fresh account status and builds the identity. A nil
// permission snapshot means the permissions must be re-resolved.
func (s *service) identityFor(ctx context.Context, accountID string, snapshot []string) (*domain.Identity, error) {
	u, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("account missing: %w", domain.ErrUnauthenticated)
	}
	if !u.Active {
		return nil, fmt.Errorf("inactive account: %w", domain.ErrForbidden)
	}
	if !u.Verified {
		return nil, fmt.Errorf("unverified account: %w", domain.ErrForbidden)
	}

	perms := snapshot
	if perms == nil {
		perms = s.resolver.Resolve(ctx, accountID)
	}
	return &domain.Identity{
		UserID:      u.UserID,
		Permissions: perms,
		Verified:    u.Verified,
		Active:      u.Active,
	}, nil
}

// Logout destroys the session behind a bearer token. Destroying a session
// that is already gone is not an error.
func (s *service) Logout(ctx context.Context, bearer string) error {
	return s.sessions.Destroy(ctx, bearer)
}

// Sessions lists the caller's live sessions.
func (s *service) Sessions(ctx context.Context, accountID string) ([]domain.Session, error) {
	return s.sessions.ListByAccount(ctx, accountID)
}
