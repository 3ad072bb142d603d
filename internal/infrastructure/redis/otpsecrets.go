package redisinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drughub-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// OTPSecretStore keeps short-lived TOTP secrets keyed by email under
// otp-secret:{email}. A secret outlives at most the challenge TTL and is
// deleted the moment a code derived from it verifies.
type OTPSecretStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOTPSecretStore(rdb *redis.Client, ttl time.Duration) *OTPSecretStore {
	return &OTPSecretStore{rdb: rdb, ttl: ttl}
}

func otpKey(email string) string {
	return "otp-secret:" + email
}

func (s *OTPSecretStore) Save(ctx context.Context, email, secret string) error {
	if err := s.rdb.Set(ctx, otpKey(email), secret, s.ttl).Err(); err != nil {
		return fmt.Errorf("write otp secret: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Get returns the stored secret, or "" when none exists or it has expired.
func (s *OTPSecretStore) Get(ctx context.Context, email string) (string, error) {
	secret, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("read otp secret: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return secret, nil
}

func (s *OTPSecretStore) Delete(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("delete otp secret: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}
