package goSession

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/goSession/auditlog"
	"github.com/MrEthical07/goSession/jwt"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store    SessionStore
	auditLog auditlog.Logger
	clock    Clock
	logger   *slog.Logger
	tokens   *jwt.Manager

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(store SessionStore) *Builder {
	b.store = store
	return b
}

// WithAuditLog sets the logger that receives "Session expired" and
// "Session updated" entries.
func (b *Builder) WithAuditLog(log auditlog.Logger) *Builder {
	b.auditLog = log
	return b
}

// WithClock overrides the time source. Defaults to SystemClock.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithLogger sets the diagnostic logger. Defaults to a discarding logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithTokenManager enables HandleAccessToken.
func (b *Builder) WithTokenManager(m *jwt.Manager) *Builder {
	b.tokens = m
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Handler. A Builder
// can be used once.
func (b *Builder) Build() (*Handler, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("session store required")
	}
	if b.auditLog == nil {
		return nil, errors.New("audit log required")
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b.built = true

	return &Handler{
		config:   cfg,
		store:    b.store,
		auditLog: b.auditLog,
		clock:    clock,
		metrics:  NewMetrics(cfg.Metrics),
		logger:   logger,
		tokens:   b.tokens,
	}, nil
}
