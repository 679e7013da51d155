package auditlog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StoredEntry is an Entry read back from a persistent backend.
type StoredEntry struct {
	EntryID string `json:"entry_id"`
	Entry
}

// RedisLog appends entries to a Redis stream.
type RedisLog struct {
	redis  redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisLog creates a stream-backed logger. maxLen caps the stream length
// when positive; zero keeps every entry.
func NewRedisLog(client redis.UniversalClient, stream string, maxLen int64) *RedisLog {
	return &RedisLog{
		redis:  client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Append writes entry with a fresh entry_id.
//
//	Performance: 1 Redis XADD.
func (l *RedisLog) Append(ctx context.Context, entry Entry) error {
	args := &redis.XAddArgs{
		Stream: l.stream,
		MaxLen: l.maxLen,
		Values: map[string]interface{}{
			"entry_id":      uuid.NewString(),
			"session_id":    entry.SessionID,
			"log_timestamp": strconv.FormatInt(entry.Timestamp, 10),
			"message":       entry.Message,
		},
	}
	if err := l.redis.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (l *RedisLog) Recent(ctx context.Context, n int64) ([]StoredEntry, error) {
	msgs, err := l.redis.XRevRangeN(ctx, l.stream, "+", "-", n).Result()
	if err != nil {
		return nil, err
	}

	out := make([]StoredEntry, 0, len(msgs))
	for _, msg := range msgs {
		e, err := storedEntryFromValues(msg.Values)
		if err != nil {
			return nil, fmt.Errorf("stream entry %s: %w", msg.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Len returns the number of entries in the stream.
func (l *RedisLog) Len(ctx context.Context) (int64, error) {
	return l.redis.XLen(ctx, l.stream).Result()
}

func storedEntryFromValues(values map[string]interface{}) (StoredEntry, error) {
	str := func(key string) string {
		v, _ := values[key].(string)
		return v
	}

	ts, err := strconv.ParseInt(str("log_timestamp"), 10, 64)
	if err != nil {
		return StoredEntry{}, fmt.Errorf("invalid log_timestamp: %w", err)
	}

	return StoredEntry{
		EntryID: str("entry_id"),
		Entry: Entry{
			SessionID: str("session_id"),
			Timestamp: ts,
			Message:   str("message"),
		},
	}, nil
}
