// Package otel provides OpenTelemetry metric exporter bindings for goSession
// counters and histograms.
//
// [NewOTelExporter] registers an Int64ObservableCounter per lifecycle counter
// and an Int64ObservableGauge per histogram bucket. A single callback reads
// [goSession.Handler.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate handler state.
package otel
