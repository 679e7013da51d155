package flows

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/auditlog"
	"github.com/MrEthical07/goSession/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	sessions map[string]*session.Session

	getErr    error
	deleteErr error
	updateErr error

	gets    []string
	deletes []string
	updates []session.Session
}

func newRecordingStore(sessions ...*session.Session) *recordingStore {
	s := &recordingStore{sessions: map[string]*session.Session{}}
	for _, sess := range sessions {
		s.sessions[sess.SessionID] = sess.Clone()
	}
	return s
}

func (s *recordingStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.gets = append(s.gets, id)
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.sessions[id].Clone(), nil
}

func (s *recordingStore) Delete(_ context.Context, id string) error {
	s.deletes = append(s.deletes, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.sessions, id)
	return nil
}

func (s *recordingStore) Update(_ context.Context, sess *session.Session) (*session.Session, error) {
	s.updates = append(s.updates, *sess)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.sessions[sess.SessionID] = sess.Clone()
	return sess.Clone(), nil
}

type recordingLog struct {
	err     error
	entries []auditlog.Entry
}

func (l *recordingLog) Append(_ context.Context, e auditlog.Entry) error {
	l.entries = append(l.entries, e)
	return l.err
}

func fixedNow(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func s1() *session.Session {
	return &session.Session{SessionID: "s1", LastActivity: 1000, IsActive: true}
}

func deps(store *recordingStore, log *recordingLog, timeout time.Duration, now int64) LifecycleDeps {
	return LifecycleDeps{
		Store:    store,
		AuditLog: log,
		Now:      fixedNow(now),
		Timeout:  timeout,
	}
}

func requireFailure(t *testing.T, err error, kind FailureKind) *Failure {
	t.Helper()
	var f *Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, kind, f.Kind)
	return f
}

func TestRunHandleSessionExpiryScenario(t *testing.T) {
	store := newRecordingStore(s1())
	log := &recordingLog{}

	res := RunHandleSession(context.Background(), "s1", deps(store, log, 500*time.Millisecond, 2000))

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeExpired, res.Outcome)
	assert.Equal(t, int64(2000), res.Timestamp)
	assert.Equal(t, []string{"s1"}, store.gets)
	assert.Equal(t, []string{"s1"}, store.deletes)
	assert.Empty(t, store.updates)
	assert.Equal(t, []auditlog.Entry{{SessionID: "s1", Timestamp: 2000, Message: "Session expired"}}, log.entries)
	assert.False(t, res.Session.IsActive)
}

func TestRunHandleSessionRefreshScenario(t *testing.T) {
	store := newRecordingStore(s1())
	log := &recordingLog{}

	res := RunHandleSession(context.Background(), "s1", deps(store, log, 5000*time.Millisecond, 2000))

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeRefreshed, res.Outcome)
	assert.Empty(t, store.deletes)
	require.Len(t, store.updates, 1)
	assert.Equal(t, int64(2000), store.updates[0].LastActivity)
	assert.True(t, store.updates[0].IsActive)
	assert.Equal(t, []auditlog.Entry{{SessionID: "s1", Timestamp: 2000, Message: "Session updated"}}, log.entries)
	assert.Equal(t, int64(2000), res.Session.LastActivity)
}

func TestRunHandleSessionBoundaryRefreshes(t *testing.T) {
	cases := []struct {
		last    int64
		timeout time.Duration
		now     int64
	}{
		{last: 1000, timeout: 1000 * time.Millisecond, now: 2000},
		{last: 0, timeout: 0, now: 0},
		{last: 1_700_000_000_000, timeout: 24 * time.Hour, now: 1_700_000_000_000 + (24 * time.Hour).Milliseconds()},
	}

	for _, tc := range cases {
		store := newRecordingStore(&session.Session{SessionID: "s1", LastActivity: tc.last, IsActive: true})
		log := &recordingLog{}

		res := RunHandleSession(context.Background(), "s1", deps(store, log, tc.timeout, tc.now))

		require.NoError(t, res.Err)
		assert.Equal(t, OutcomeRefreshed, res.Outcome, "last=%d timeout=%v now=%d", tc.last, tc.timeout, tc.now)
		assert.Empty(t, store.deletes)
		assert.Len(t, store.updates, 1)
	}
}

func TestRunHandleSessionNotFound(t *testing.T) {
	store := newRecordingStore()
	log := &recordingLog{}
	calledNow := false
	d := deps(store, log, time.Second, 2000)
	d.Now = func() time.Time {
		calledNow = true
		return time.UnixMilli(2000)
	}

	res := RunHandleSession(context.Background(), "missing", d)

	requireFailure(t, res.Err, FailureNotFound)
	assert.Equal(t, []string{"missing"}, store.gets)
	assert.Empty(t, store.deletes)
	assert.Empty(t, store.updates)
	assert.Empty(t, log.entries)
	assert.False(t, calledNow)
}

func TestRunHandleSessionEmptyIDSkipsStore(t *testing.T) {
	store := newRecordingStore()
	log := &recordingLog{}

	res := RunHandleSession(context.Background(), "", deps(store, log, time.Second, 2000))

	requireFailure(t, res.Err, FailureNotFound)
	assert.Empty(t, store.gets)
}

func TestRunHandleSessionStoreFailure(t *testing.T) {
	transport := errors.New("connection reset")
	store := newRecordingStore(s1())
	store.getErr = transport
	log := &recordingLog{}

	res := RunHandleSession(context.Background(), "s1", deps(store, log, time.Second, 2000))

	f := requireFailure(t, res.Err, FailureRetrieval)
	assert.ErrorIs(t, f, transport)
	assert.Empty(t, store.deletes)
	assert.Empty(t, store.updates)
	assert.Empty(t, log.entries)
}

func TestExpireSessionSkipsInactive(t *testing.T) {
	store := newRecordingStore()
	log := &recordingLog{}
	sess := &session.Session{SessionID: "s1", LastActivity: 1000, IsActive: false}

	outcome, err := ExpireSession(context.Background(), sess, store, log, 2000)

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyInactive, outcome)
	assert.Empty(t, store.deletes)
	assert.Empty(t, log.entries)
}

func TestExpireSessionDeleteFailureSkipsLog(t *testing.T) {
	cause := errors.New("delete refused")
	store := newRecordingStore(s1())
	store.deleteErr = cause
	log := &recordingLog{}

	_, err := ExpireSession(context.Background(), s1(), store, log, 2000)

	f := requireFailure(t, err, FailureClear)
	assert.ErrorIs(t, f, cause)
	assert.Len(t, store.deletes, 1)
	assert.Empty(t, log.entries)
}

func TestExpireSessionLogFailureIsClearFailure(t *testing.T) {
	cause := errors.New("log down")
	store := newRecordingStore(s1())
	log := &recordingLog{err: cause}

	_, err := ExpireSession(context.Background(), s1(), store, log, 2000)

	f := requireFailure(t, err, FailureClear)
	assert.ErrorIs(t, f, cause)
	assert.Len(t, store.deletes, 1)
	assert.Len(t, log.entries, 1)
}

func TestRefreshSessionUpdateFailureSkipsLog(t *testing.T) {
	cause := session.ErrSessionMissing
	store := newRecordingStore(s1())
	store.updateErr = cause
	log := &recordingLog{}

	_, err := RefreshSession(context.Background(), s1(), store, log, 2000)

	f := requireFailure(t, err, FailureRefresh)
	assert.ErrorIs(t, f, cause)
	assert.Len(t, store.updates, 1)
	assert.Empty(t, log.entries)
}

func TestRefreshSessionLogFailure(t *testing.T) {
	cause := errors.New("log down")
	store := newRecordingStore(s1())
	log := &recordingLog{err: cause}

	_, err := RefreshSession(context.Background(), s1(), store, log, 2000)

	f := requireFailure(t, err, FailureRefresh)
	assert.ErrorIs(t, f, cause)
	assert.Len(t, store.updates, 1)
	assert.Len(t, log.entries, 1)
}

func TestIsExpiredStrictComparison(t *testing.T) {
	sess := &session.Session{LastActivity: 1000}

	assert.False(t, IsExpired(sess, 500*time.Millisecond, 1500))
	assert.True(t, IsExpired(sess, 500*time.Millisecond, 1501))
	assert.False(t, IsExpired(sess, time.Second, 1999))
	assert.True(t, IsExpired(sess, 86400*time.Second, 1000+86400*1000+1))
}

func TestIsExpiredExtremeTimestamps(t *testing.T) {
	far := &session.Session{LastActivity: math.MaxInt64 - 10}
	assert.False(t, IsExpired(far, 24*time.Hour, 1_700_000_000_000))
	assert.False(t, IsExpired(far, 24*time.Hour, math.MaxInt64-10))
	assert.True(t, IsExpired(far, time.Millisecond, math.MaxInt64))

	ancient := &session.Session{LastActivity: math.MinInt64}
	assert.True(t, IsExpired(ancient, 24*time.Hour, math.MaxInt64))
	assert.True(t, IsExpired(ancient, time.Duration(math.MaxInt64), 1))

	future := &session.Session{LastActivity: 5000}
	assert.False(t, IsExpired(future, 0, 4000))
}

func TestFailureErrorMessage(t *testing.T) {
	f := &Failure{Kind: FailureRetrieval, SessionID: "s1", Err: errors.New("boom")}
	assert.Equal(t, `session "s1": retrieval: boom`, f.Error())
	assert.Equal(t, `session "s1": not_found`, notFound("s1").Error())
}
