package auditlog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_audit_log (
	entry_id      TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	log_timestamp INTEGER NOT NULL,
	message       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_audit_log_session
	ON session_audit_log (session_id, log_timestamp);
`

// SQLiteLog appends entries to a SQLite table.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLiteLog opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a process-local log.
func OpenSQLiteLog(ctx context.Context, path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Append inserts entry with a fresh entry_id.
func (l *SQLiteLog) Append(ctx context.Context, entry Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO session_audit_log (entry_id, session_id, log_timestamp, message) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), entry.SessionID, entry.Timestamp, entry.Message,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	return nil
}

// BySession returns the entries for sessionID in timestamp order.
func (l *SQLiteLog) BySession(ctx context.Context, sessionID string) ([]StoredEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT entry_id, session_id, log_timestamp, message
		   FROM session_audit_log
		  WHERE session_id = ?
		  ORDER BY log_timestamp, rowid`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		var e StoredEntry
		if err := rows.Scan(&e.EntryID, &e.SessionID, &e.Timestamp, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (l *SQLiteLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
