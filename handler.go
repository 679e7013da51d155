package goSession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goSession/auditlog"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

// SessionStore is the persistence capability the handler depends on.
// Get returns (nil, nil) when the session does not exist.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
	Update(ctx context.Context, sess *session.Session) (*session.Session, error)
}

// Outcome reports which terminal path HandleSession took.
type Outcome int

const (
	// OutcomeExpired means the session was deleted and its expiry logged.
	OutcomeExpired Outcome = iota + 1
	// OutcomeAlreadyInactive means the session was expired but already inactive; nothing was written.
	OutcomeAlreadyInactive
	// OutcomeRefreshed means the session's last activity was moved to now and logged.
	OutcomeRefreshed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExpired:
		return "expired"
	case OutcomeAlreadyInactive:
		return "already_inactive"
	case OutcomeRefreshed:
		return "refreshed"
	default:
		return "unknown"
	}
}

// HandleResult describes one handled session. Err is only populated by
// HandleSessions.
type HandleResult struct {
	SessionID string
	Outcome   Outcome
	Timestamp int64
	Session   *session.Session
	Err       error
}

// Handler runs the session lifecycle against its store and audit log.
//
// Handler instances are built through [Builder.Build] and are safe for
// concurrent use when the store and audit log are. Concurrent calls for the
// same session id are not coordinated; the store arbitrates conflicting writes.
type Handler struct {
	config   Config
	store    SessionStore
	auditLog auditlog.Logger
	clock    Clock
	metrics  *Metrics
	logger   *slog.Logger
	tokens   *jwt.Manager
}

// HandleSession fetches sessionID and either expires or refreshes it.
//
// It returns nil or an error matching exactly one of ErrSessionNotFound,
// ErrSessionRetrieval, ErrSessionClear or ErrSessionRefresh. The underlying
// cause stays reachable through errors.Is / errors.As.
func (h *Handler) HandleSession(ctx context.Context, sessionID string) error {
	_, err := h.HandleSessionWithResult(ctx, sessionID)
	return err
}

// HandleSessionWithResult is HandleSession returning the path taken.
func (h *Handler) HandleSessionWithResult(ctx context.Context, sessionID string) (*HandleResult, error) {
	if h == nil || h.store == nil || h.auditLog == nil {
		return nil, ErrHandlerNotReady
	}

	var start time.Time
	if h.metrics.LatencyEnabled() {
		start = time.Now()
	}

	res := flows.RunHandleSession(ctx, sessionID, h.lifecycleDeps())

	if h.metrics.LatencyEnabled() {
		h.metrics.Observe(MetricHandleLatency, time.Since(start))
	}

	if res.Err != nil {
		return nil, h.failure(ctx, sessionID, res.Err)
	}

	out := &HandleResult{
		SessionID: res.SessionID,
		Timestamp: res.Timestamp,
		Session:   res.Session,
	}
	switch res.Outcome {
	case flows.OutcomeExpired:
		out.Outcome = OutcomeExpired
		h.metricInc(MetricSessionExpired)
	case flows.OutcomeAlreadyInactive:
		out.Outcome = OutcomeAlreadyInactive
		h.metricInc(MetricSessionAlreadyInactive)
	case flows.OutcomeRefreshed:
		out.Outcome = OutcomeRefreshed
		h.metricInc(MetricSessionRefreshed)
	}

	h.logger.DebugContext(ctx, "session handled",
		slog.String("session_id", sessionID),
		slog.String("outcome", out.Outcome.String()),
		slog.Int64("timestamp", out.Timestamp),
	)

	return out, nil
}

// HandleSessions runs HandleSession for each id in order and returns one
// result per id. Failures are reported in HandleResult.Err and do not stop
// the batch.
func (h *Handler) HandleSessions(ctx context.Context, sessionIDs []string) []HandleResult {
	results := make([]HandleResult, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		res, err := h.HandleSessionWithResult(ctx, id)
		if err != nil {
			results = append(results, HandleResult{SessionID: id, Err: err})
			continue
		}
		results = append(results, *res)
	}
	return results
}

// HandleAccessToken verifies a signed session token and runs HandleSession
// for the session id it carries.
func (h *Handler) HandleAccessToken(ctx context.Context, token string) error {
	_, err := h.HandleAccessTokenWithResult(ctx, token)
	return err
}

// HandleAccessTokenWithResult is HandleAccessToken returning the path taken.
func (h *Handler) HandleAccessTokenWithResult(ctx context.Context, token string) (*HandleResult, error) {
	if h == nil {
		return nil, ErrHandlerNotReady
	}
	if h.tokens == nil {
		return nil, ErrTokenManagerMissing
	}

	claims, err := h.tokens.ParseSessionToken(token)
	if err != nil {
		h.metricInc(MetricTokenInvalid)
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	return h.HandleSessionWithResult(ctx, claims.SID)
}

// Config returns the handler's configuration.
func (h *Handler) Config() Config {
	if h == nil {
		return Config{}
	}
	return h.config
}

// MetricsSnapshot returns a copy of the current counters and histograms.
func (h *Handler) MetricsSnapshot() MetricsSnapshot {
	if h == nil || h.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return h.metrics.Snapshot()
}

// HandleSession runs the lifecycle once without building a long-lived
// Handler. cfg is validated first. Metrics and diagnostic logging are
// disabled.
func HandleSession(
	ctx context.Context,
	store SessionStore,
	log auditlog.Logger,
	clock Clock,
	sessionID string,
	cfg Config,
) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if clock == nil {
		clock = SystemClock()
	}
	h := &Handler{
		config:   cfg,
		store:    store,
		auditLog: log,
		clock:    clock,
		logger:   slog.New(slog.DiscardHandler),
	}
	return h.HandleSession(ctx, sessionID)
}

func (h *Handler) lifecycleDeps() flows.LifecycleDeps {
	return flows.LifecycleDeps{
		Store:    h.store,
		AuditLog: h.auditLog,
		Now:      h.clock.Now,
		Timeout:  h.config.Session.Timeout,
	}
}

func (h *Handler) metricInc(id MetricID) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.Inc(id)
}

func (h *Handler) failure(ctx context.Context, sessionID string, err error) error {
	var f *flows.Failure
	if !errors.As(err, &f) {
		h.metricInc(MetricSessionRetrievalFailure)
		return fmt.Errorf("%w: %w", ErrSessionRetrieval, err)
	}

	var mapped error
	switch f.Kind {
	case flows.FailureNotFound:
		h.metricInc(MetricSessionNotFound)
		h.logger.DebugContext(ctx, "session not found", slog.String("session_id", sessionID))
		return fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	case flows.FailureRetrieval:
		h.metricInc(MetricSessionRetrievalFailure)
		mapped = fmt.Errorf("%w: %w", ErrSessionRetrieval, f.Err)
	case flows.FailureClear:
		h.metricInc(MetricSessionClearFailure)
		mapped = fmt.Errorf("%w: %w", ErrSessionClear, f.Err)
	case flows.FailureRefresh:
		h.metricInc(MetricSessionRefreshFailure)
		mapped = fmt.Errorf("%w: %w", ErrSessionRefresh, f.Err)
	default:
		h.metricInc(MetricSessionRetrievalFailure)
		mapped = fmt.Errorf("%w: %w", ErrSessionRetrieval, err)
	}

	h.logger.WarnContext(ctx, "session lifecycle failed",
		slog.String("session_id", sessionID),
		slog.String("stage", f.Kind.String()),
		slog.Any("error", f.Err),
	)
	return mapped
}
