package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// JSONWriterLog writes one JSON object per line.
type JSONWriterLog struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterLog(w io.Writer) *JSONWriterLog {
	return &JSONWriterLog{
		writer: w,
	}
}

func (l *JSONWriterLog) Append(ctx context.Context, entry Entry) error {
	if l == nil || l.writer == nil {
		return fmt.Errorf("%w: nil writer", ErrAppendFailed)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	return nil
}
