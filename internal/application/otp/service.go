package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/drughub-api/internal/domain"
	"github.com/drughub-api/internal/infrastructure/smtp"
)

// SecretStore persists challenge secrets keyed by email with a short TTL.
type SecretStore interface {
	Save(ctx context.Context, email, secret string) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// Service issues and verifies emailed one-time codes. Sign-in and password
// recovery share the same secret per email; issuing either kind replaces any
// outstanding challenge.
type Service interface {
	IssueChallenge(ctx context.Context, email string) error
	IssueRecovery(ctx context.Context, email string) error
	VerifyChallenge(ctx context.Context, email, code string) error
}

type service struct {
	secrets SecretStore
	mailer  smtp.Mailer
	now     func() time.Time
}

func NewService(secrets SecretStore, mailer smtp.Mailer) Service {
	return &service{secrets: secrets, mailer: mailer, now: time.Now}
}

// IssueChallenge stores a fresh secret and dispatches the current code by
// email. The send happens out-of-band: the caller gets an acknowledgment as
// soon as the secret is persisted, and a delivery failure is only logged.
func (s *service) IssueChallenge(ctx context.Context, email string) error {
	return s.issue(ctx, email, "DrugHub - Verify Your Email")
}

// IssueRecovery is the password-recovery flavor of IssueChallenge; only the
// email subject differs.
func (s *service) IssueRecovery(ctx context.Context, email string) error {
	return s.issue(ctx, email, "DrugHub - Password Recovery")
}

func (s *service) issue(ctx context.Context, email, subject string) error {
	secret, err := generateSecret()
	if err != nil {
		return err
	}
	if err := s.secrets.Save(ctx, email, secret); err != nil {
		return err
	}
	code, err := codeAt(secret, s.now())
	if err != nil {
		return err
	}

	go func() {
		if err := s.mailer.SendEmail(email, subject, "Your OTP code is: "+code); err != nil {
			slog.Warn("otp email dispatch failed", "email", email, "err", err)
		}
	}()
	return nil
}

// VerifyChallenge checks a submitted code against the stored secret.
// An absent or expired secret fails Expired. A matching code consumes the
// secret immediately so it cannot verify twice; a mismatch leaves the secret
// in place for retry until its TTL runs out.
func (s *service) VerifyChallenge(ctx context.Context, email, code string) error {
	secret, err := s.secrets.Get(ctx, email)
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("otp challenge not found: %w", domain.ErrExpired)
	}

	ok, err := verifyCode(secret, code, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("otp mismatch: %w", domain.ErrInvalidOTP)
	}

	if err := s.secrets.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete consumed otp secret", "email", email, "err", err)
	}
	return nil
}
