package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/auditlog"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("session-sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "TOML config file; SESSION_TIMEOUT still overrides it")
		redisAddr   = fs.String("redis-addr", "", "redis address; if empty, config, REDIS_ADDR or miniredis is used")
		prefix      = fs.String("prefix", "", "session key prefix (overrides config)")
		auditKind   = fs.String("audit", "redis", "audit log backend: redis, sqlite or stdout")
		sqlitePath  = fs.String("sqlite-path", "session-audit.db", "sqlite database for -audit sqlite")
		seed        = fs.Int("seed", 0, "seed N demo sessions before sweeping")
		concurrency = fs.Int("concurrency", 1, "number of concurrent workers")
		withMetrics = fs.Bool("metrics", false, "print Prometheus metrics after the sweep")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *seed < 0 || *concurrency <= 0 {
		fmt.Fprintln(stderr, "seed must be >= 0 and concurrency > 0")
		return 2
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	cfg := goSession.ResolveConfigFromEnv()
	if *configPath != "" {
		loaded, err := goSession.LoadConfigFile(*configPath, os.LookupEnv)
		if err != nil {
			logger.Error("load config", slog.Any("error", err))
			return 2
		}
		cfg = loaded
	}
	if *prefix != "" {
		cfg.Session.RedisPrefix = *prefix
	}
	if *withMetrics {
		cfg.Metrics.Enabled = true
		cfg.Metrics.EnableLatencyHistograms = true
	}

	addr := *redisAddr
	if addr == "" {
		addr = cfg.Redis.Addr
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			logger.Error("start miniredis", slog.Any("error", err))
			return 1
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		logger.Info("using miniredis", slog.String("addr", addr))
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup = func() { _ = client.Close() }
		logger.Info("using redis", slog.String("addr", addr))
	}
	defer cleanup()

	store := session.NewStore(client, cfg.Session.RedisPrefix)
	latency, err := store.Ping(ctx)
	if err != nil {
		logger.Error("redis ping", slog.String("addr", addr), slog.Any("error", err))
		return 1
	}
	logger.Debug("redis ping", slog.Duration("latency", latency))

	var auditLog auditlog.Logger
	switch *auditKind {
	case "redis":
		auditLog = auditlog.NewRedisLog(client, cfg.AuditLog.StreamKey, cfg.AuditLog.MaxLen)
	case "sqlite":
		sqliteLog, err := auditlog.OpenSQLiteLog(ctx, *sqlitePath)
		if err != nil {
			logger.Error("open sqlite audit log", slog.Any("error", err))
			return 1
		}
		defer sqliteLog.Close()
		auditLog = sqliteLog
	case "stdout":
		auditLog = auditlog.NewJSONWriterLog(stdout)
	default:
		fmt.Fprintf(stderr, "unknown audit backend %q\n", *auditKind)
		return 2
	}

	handler, err := goSession.New().
		WithConfig(cfg).
		WithStore(store).
		WithAuditLog(auditLog).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Error("build handler", slog.Any("error", err))
		return 2
	}

	ids := fs.Args()
	if *seed > 0 {
		seeded, err := seedSessions(ctx, store, *seed, cfg.Session.Timeout)
		if err != nil {
			logger.Error("seed sessions", slog.Any("error", err))
			return 1
		}
		logger.Info("seeded sessions", slog.Int("count", len(seeded)))
		ids = append(ids, seeded...)
	}
	if len(ids) == 0 {
		fmt.Fprintln(stderr, "no session ids given; pass ids as arguments or use -seed")
		return 2
	}

	stats := sweep(ctx, handler, ids, *concurrency, logger)
	logger.Info("sweep complete",
		slog.Int("sessions", len(ids)),
		slog.Int64("expired", stats.expired),
		slog.Int64("refreshed", stats.refreshed),
		slog.Int64("already_inactive", stats.inactive),
		slog.Int64("not_found", stats.notFound),
		slog.Int64("failures", stats.failures),
		slog.Duration("total", stats.total.Round(time.Millisecond)),
		slog.Duration("p50", stats.p50),
		slog.Duration("p95", stats.p95),
		slog.Duration("p99", stats.p99),
	)

	if *withMetrics {
		fmt.Fprint(stdout, prometheus.NewPrometheusExporter(handler).Render())
	}

	if stats.failures > 0 {
		return 1
	}
	return 0
}

// seedSessions writes n sessions whose last activity is spread over twice the
// timeout, so roughly half of them are expired.
func seedSessions(ctx context.Context, store *session.Store, n int, timeout time.Duration) ([]string, error) {
	now := time.Now().UnixMilli()
	span := 2 * timeout.Milliseconds()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sess := &session.Session{
			SessionID:    session.NewID(),
			LastActivity: now - r.Int63n(span+1),
			IsActive:     r.Intn(10) != 0,
		}
		if err := store.Save(ctx, sess, 0); err != nil {
			return nil, err
		}
		ids = append(ids, sess.SessionID)
	}
	return ids, nil
}

type sweepStats struct {
	expired   int64
	refreshed int64
	inactive  int64
	notFound  int64
	failures  int64
	total     time.Duration
	p50       time.Duration
	p95       time.Duration
	p99       time.Duration
}

func sweep(ctx context.Context, h *goSession.Handler, ids []string, concurrency int, logger *slog.Logger) sweepStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		stats     sweepStats
		latencies = make([]time.Duration, 0, len(ids))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(ids) {
					return
				}
				id := ids[i]
				t0 := time.Now()
				res, err := h.HandleSessionWithResult(ctx, id)
				d := time.Since(t0)

				switch {
				case errors.Is(err, goSession.ErrSessionNotFound):
					atomic.AddInt64(&stats.notFound, 1)
					logger.Info("session not found", slog.String("session_id", id))
				case err != nil:
					atomic.AddInt64(&stats.failures, 1)
					logger.Error("session failed", slog.String("session_id", id), slog.Any("error", err))
				default:
					switch res.Outcome {
					case goSession.OutcomeExpired:
						atomic.AddInt64(&stats.expired, 1)
					case goSession.OutcomeRefreshed:
						atomic.AddInt64(&stats.refreshed, 1)
					case goSession.OutcomeAlreadyInactive:
						atomic.AddInt64(&stats.inactive, 1)
					}
					logger.Info("session handled",
						slog.String("session_id", id),
						slog.String("outcome", res.Outcome.String()),
						slog.Int64("timestamp", res.Timestamp),
					)
				}

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	stats.total = time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	stats.p50 = percentile(latencies, 0.50)
	stats.p95 = percentile(latencies, 0.95)
	stats.p99 = percentile(latencies, 0.99)
	return stats
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
