package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/drughub-api/internal/domain"
	"github.com/drughub-api/internal/pkg/token"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps session records in Redis. An account's sessions live in
// the hash sessions:{accountId} with one field per opaque token; the string
// key sessions:account:{token} is the reverse index from token to account.
// Both carry the same TTL. The forward and reverse writes are two separate
// operations: a crash between them leaves an orphan that the TTL clears
// within the same window, and a creation reporting failure must not be
// treated as valid even though the first write may have landed.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(accountID string) string {
	return "sessions:" + accountID
}

func reverseKey(sessionToken string) string {
	return "sessions:account:" + sessionToken
}

// Create generates a fresh token and writes the session record plus its
// reverse-index entry. Each login accumulates a new field in the account's
// hash; existing sessions from other devices stay untouched.
func (s *SessionStore) Create(ctx context.Context, accountID, clientAddr string) (*domain.Session, error) {
	tok, err := token.NewSessionToken()
	if err != nil {
		return nil, err
	}
	sess := &domain.Session{
		SessionToken: tok,
		AccountID:    accountID,
		IP:           clientAddr,
		CreatedAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, sessionKey(accountID), tok, payload)
	pipe.Expire(ctx, sessionKey(accountID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("write session: %v: %w", err, domain.ErrStoreUnavailable)
	}
	if err := s.rdb.Set(ctx, reverseKey(tok), accountID, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("write session reverse index: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return sess, nil
}

// Get reads one session record. A miss, an expired key and a corrupt payload
// all return (nil, nil); only a Redis failure is an error.
func (s *SessionStore) Get(ctx context.Context, accountID, sessionToken string) (*domain.Session, error) {
	data, err := s.rdb.HGet(ctx, sessionKey(accountID), sessionToken).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %v: %w", err, domain.ErrStoreUnavailable)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		slog.Warn("discarding corrupt session payload", "account_id", accountID, "err", err)
		return nil, nil
	}
	return &sess, nil
}

// ResolveAccount maps an opaque token back to its account id, or "" on miss.
func (s *SessionStore) ResolveAccount(ctx context.Context, sessionToken string) (string, error) {
	accountID, err := s.rdb.Get(ctx, reverseKey(sessionToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("resolve session token: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return accountID, nil
}

// Destroy removes the forward entry and the reverse index for a token.
// Deleting a token that no longer exists is not an error.
func (s *SessionStore) Destroy(ctx context.Context, sessionToken string) error {
	accountID, err := s.ResolveAccount(ctx, sessionToken)
	if err != nil {
		return err
	}
	if accountID != "" {
		if err := s.rdb.HDel(ctx, sessionKey(accountID), sessionToken).Err(); err != nil {
			return fmt.Errorf("delete session: %v: %w", err, domain.ErrStoreUnavailable)
		}
	}
	if err := s.rdb.Del(ctx, reverseKey(sessionToken)).Err(); err != nil {
		return fmt.Errorf("delete session reverse index: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// ListByAccount returns the account's live sessions. Corrupt fields are
// skipped, not surfaced.
func (s *SessionStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Session, error) {
	fields, err := s.rdb.HGetAll(ctx, sessionKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %v: %w", err, domain.ErrStoreUnavailable)
	}
	sessions := make([]domain.Session, 0, len(fields))
	for _, data := range fields {
		var sess domain.Session
		if err := json.Unmarshal([]byte(data), &sess); err != nil {
			slog.Warn("skipping corrupt session payload", "account_id", accountID, "err", err)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}
