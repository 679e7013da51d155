package auditlog

import (
	"context"
	"errors"
)

// Messages recorded by the lifecycle handler.
const (
	MessageSessionExpired = "Session expired"
	MessageSessionUpdated = "Session updated"
)

// ErrAppendFailed wraps backend failures from Append.
var ErrAppendFailed = errors.New("audit log append failed")

// Entry is a single audit record. Timestamp is epoch milliseconds.
type Entry struct {
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"log_timestamp"`
	Message   string `json:"message"`
}

// Logger appends audit entries.
type Logger interface {
	Append(ctx context.Context, entry Entry) error
}

// LoggerFunc adapts a function to [Logger].
type LoggerFunc func(ctx context.Context, entry Entry) error

// Append calls f.
func (f LoggerFunc) Append(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}
