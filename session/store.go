package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport and operational failures from Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionCorrupt is returned when a stored session blob cannot be decoded.
var ErrSessionCorrupt = errors.New("session record corrupt")

// ErrSessionMissing is returned by Update when the session key no longer exists.
var ErrSessionMissing = errors.New("session record missing")

// Store is a Redis-backed session store. Each session is a single string key
// holding the binary record produced by [Encode].
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save writes sess unconditionally. A ttl of zero stores the key without expiry.
//
//	Performance: 1 Redis SET.
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sess.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Get retrieves a session by ID. A missing key yields (nil, nil).
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCorrupt, err)
	}
	if sess.SessionID != sessionID {
		return nil, fmt.Errorf("%w: stored id %q does not match key", ErrSessionCorrupt, sess.SessionID)
	}

	return sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Update overwrites an existing session record and keeps its remaining TTL.
// It fails with [ErrSessionMissing] when the key has been removed in the
// meantime; Redis stays the arbiter of concurrent writers.
//
//	Performance: 1 Redis SET XX KEEPTTL.
func (s *Store) Update(ctx context.Context, sess *Session) (*Session, error) {
	data, err := Encode(sess)
	if err != nil {
		return nil, err
	}

	err = s.redis.SetArgs(ctx, s.key(sess.SessionID), data, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionMissing
		}
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}

	return sess.Clone(), nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
