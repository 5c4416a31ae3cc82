package bridge

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionVersion   = 2
)

var (
	// ErrNoSession means the cookie names no live session.
	ErrNoSession = errors.New("no session")
	// ErrLegacySession means the stored record predates the current layout and cannot be used.
	ErrLegacySession = errors.New("legacy session record")
)

// Session is what the bridge remembers about a signed-in browser.
type Session struct {
	ID             string
	UserID         uint
	Name           string
	Email          string
	Token          string
	TokenExpiresAt time.Time
}

// record is the stored JSON. UserID stays raw so records that kept an email there can be recognised.
type record struct {
	Version        int             `json:"version"`
	UserID         json.RawMessage `json:"user_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Token          string          `json:"token"`
	TokenExpiresAt time.Time       `json:"token_expires_at"`
}

type SessionStore struct {
	rdb  redis.Cmdable
	idle time.Duration
	now  func() time.Time
}

func NewSessionStore(rdb redis.Cmdable, idle time.Duration, now func() time.Time) *SessionStore {
	return &SessionStore{rdb: rdb, idle: idle, now: now}
}

// ttl is the idle timeout, cut short by the token's expiry.
func (s *SessionStore) ttl(tokenExpiresAt time.Time) time.Duration {
	return min(s.idle, tokenExpiresAt.Sub(s.now()))
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create stores sess under a fresh id and returns it with the id set.
func (s *SessionStore) Create(ctx context.Context, sess Session) (Session, error) {
	ttl := s.ttl(sess.TokenExpiresAt)
	if ttl <= 0 {
		return Session{}, errors.New("session token already expired")
	}
	id, err := newSessionID()
	if err != nil {
		return Session{}, fmt.Errorf("session id: %w", err)
	}
	data, err := json.Marshal(record{
		Version:        sessionVersion,
		UserID:         json.RawMessage(strconv.FormatUint(uint64(sess.UserID), 10)),
		Name:           sess.Name,
		Email:          sess.Email,
		Token:          sess.Token,
		TokenExpiresAt: sess.TokenExpiresAt.UTC(),
	})
	if err != nil {
		return Session{}, err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, data, ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("session store: %w", err)
	}
	sess.ID = id
	return sess, nil
}

// Load returns the session stored under id and extends its idle timeout.
// It fails with ErrNoSession when nothing usable is stored and ErrLegacySession for records
// in an older layout; the caller is expected to delete the latter.
func (s *SessionStore) Load(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNoSession
	}
	key := sessionKeyPrefix + id
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("session store: %w", err)
	}
	sess, err := decodeRecord(data)
	if err != nil {
		return Session{}, err
	}
	sess.ID = id
	ttl := s.ttl(sess.TokenExpiresAt)
	if ttl <= 0 {
		_ = s.rdb.Del(ctx, key).Err()
		return Session{}, ErrNoSession
	}
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("session store: %w", err)
	}
	return sess, nil
}

func decodeRecord(data []byte) (Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrLegacySession, err)
	}
	if rec.Version != sessionVersion {
		return Session{}, fmt.Errorf("%w: version %d", ErrLegacySession, rec.Version)
	}
	var userID uint
	if err := json.Unmarshal(rec.UserID, &userID); err != nil || userID == 0 {
		return Session{}, fmt.Errorf("%w: user id %s", ErrLegacySession, rec.UserID)
	}
	if rec.Token == "" {
		return Session{}, fmt.Errorf("%w: no token", ErrLegacySession)
	}
	return Session{
		UserID:         userID,
		Name:           rec.Name,
		Email:          rec.Email,
		Token:          rec.Token,
		TokenExpiresAt: rec.TokenExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}
