package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef binds a lifecycle counter to its exported name.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef binds a latency histogram to its exported name.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionExpired, Name: "gosession_session_expired_total", Help: "Sessions deleted after exceeding the inactivity timeout."},
	{ID: goSession.MetricSessionAlreadyInactive, Name: "gosession_session_already_inactive_total", Help: "Expired sessions skipped because they were already inactive."},
	{ID: goSession.MetricSessionRefreshed, Name: "gosession_session_refreshed_total", Help: "Sessions whose last activity was refreshed."},
	{ID: goSession.MetricSessionNotFound, Name: "gosession_session_not_found_total", Help: "Lookups for unknown session ids."},
	{ID: goSession.MetricSessionRetrievalFailure, Name: "gosession_session_retrieval_failure_total", Help: "Session store fetch failures."},
	{ID: goSession.MetricSessionClearFailure, Name: "gosession_session_clear_failure_total", Help: "Failures while deleting or logging an expired session."},
	{ID: goSession.MetricSessionRefreshFailure, Name: "gosession_session_refresh_failure_total", Help: "Failures while updating or logging a refreshed session."},
	{ID: goSession.MetricTokenInvalid, Name: "gosession_token_invalid_total", Help: "Rejected session tokens."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricHandleLatency, Name: "gosession_handle_latency_seconds", Help: "HandleSession latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names each bucket for exporters that cannot carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling
// missing buckets and dropping extras.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
