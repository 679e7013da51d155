package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/auditlog"
	"github.com/MrEthical07/goSession/session"
)

// LifecycleSessionStore is the store capability the lifecycle flow needs.
// Get returns (nil, nil) when the session does not exist.
type LifecycleSessionStore interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
	Update(ctx context.Context, sess *session.Session) (*session.Session, error)
}

// LifecycleDeps captures session lifecycle dependencies.
type LifecycleDeps struct {
	Store    LifecycleSessionStore
	AuditLog auditlog.Logger
	Now      func() time.Time
	Timeout  time.Duration
}

// Outcome records which terminal path a handled session took.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeExpired
	OutcomeAlreadyInactive
	OutcomeRefreshed
)

// LifecycleResult is the outcome of one RunHandleSession call. Err is a
// *Failure when set.
type LifecycleResult struct {
	SessionID string
	Outcome   Outcome
	Timestamp int64
	Session   *session.Session
	Err       error
}

// LoadSession fetches sessionID. An empty id is reported as not found without
// touching the store.
func LoadSession(ctx context.Context, store LifecycleSessionStore, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, notFound(sessionID)
	}

	sess, err := store.Get(ctx, sessionID)
	if err != nil {
		return nil, &Failure{Kind: FailureRetrieval, SessionID: sessionID, Err: err}
	}
	if sess == nil {
		return nil, notFound(sessionID)
	}
	return sess, nil
}

// IsExpired reports whether sess was last active more than timeout before
// nowMillis. A session exactly at the boundary is not expired, and neither
// is one whose last activity lies in the future.
func IsExpired(sess *session.Session, timeout time.Duration, nowMillis int64) bool {
	if sess.LastActivity >= nowMillis {
		return false
	}
	elapsed := nowMillis - sess.LastActivity
	if elapsed < 0 {
		// the gap does not fit in int64, so it exceeds any timeout
		return true
	}
	return elapsed > timeout.Milliseconds()
}

// ExpireSession deletes sess and records "Session expired". Sessions already
// marked inactive are skipped without any store or log call.
func ExpireSession(
	ctx context.Context,
	sess *session.Session,
	store LifecycleSessionStore,
	log auditlog.Logger,
	nowMillis int64,
) (Outcome, error) {
	if !sess.IsActive {
		return OutcomeAlreadyInactive, nil
	}

	if err := store.Delete(ctx, sess.SessionID); err != nil {
		return OutcomeNone, &Failure{Kind: FailureClear, SessionID: sess.SessionID, Err: err}
	}
	sess.IsActive = false

	entry := auditlog.Entry{
		SessionID: sess.SessionID,
		Timestamp: nowMillis,
		Message:   auditlog.MessageSessionExpired,
	}
	if err := log.Append(ctx, entry); err != nil {
		return OutcomeNone, &Failure{Kind: FailureClear, SessionID: sess.SessionID, Err: err}
	}

	return OutcomeExpired, nil
}

// RefreshSession stamps sess with nowMillis, persists it and records
// "Session updated". It returns the record as persisted.
func RefreshSession(
	ctx context.Context,
	sess *session.Session,
	store LifecycleSessionStore,
	log auditlog.Logger,
	nowMillis int64,
) (*session.Session, error) {
	sess.LastActivity = nowMillis

	updated, err := store.Update(ctx, sess)
	if err != nil {
		return nil, &Failure{Kind: FailureRefresh, SessionID: sess.SessionID, Err: err}
	}
	if updated == nil {
		updated = sess
	}

	entry := auditlog.Entry{
		SessionID: sess.SessionID,
		Timestamp: nowMillis,
		Message:   auditlog.MessageSessionUpdated,
	}
	if err := log.Append(ctx, entry); err != nil {
		return nil, &Failure{Kind: FailureRefresh, SessionID: sess.SessionID, Err: err}
	}

	return updated, nil
}

// RunHandleSession loads sessionID and either expires or refreshes it. The
// clock is read once; the same timestamp drives the decision and every write.
func RunHandleSession(ctx context.Context, sessionID string, deps LifecycleDeps) LifecycleResult {
	result := LifecycleResult{SessionID: sessionID}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	sess, err := LoadSession(ctx, deps.Store, sessionID)
	if err != nil {
		result.Err = err
		return result
	}
	if sess == nil {
		result.Err = notFound(sessionID)
		return result
	}

	now := deps.Now().UnixMilli()
	result.Timestamp = now

	if IsExpired(sess, deps.Timeout, now) {
		outcome, err := ExpireSession(ctx, sess, deps.Store, deps.AuditLog, now)
		result.Outcome = outcome
		result.Session = sess
		result.Err = err
		return result
	}

	updated, err := RefreshSession(ctx, sess, deps.Store, deps.AuditLog, now)
	if err != nil {
		result.Session = sess
		result.Err = err
		return result
	}
	result.Outcome = OutcomeRefreshed
	result.Session = updated
	return result
}
