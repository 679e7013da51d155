// Package prometheus renders goSession lifecycle metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [goSession.Handler] and exposes an
// [http.Handler]. Counter names are prefixed gosession_*_total; the single
// histogram is gosession_handle_latency_seconds and is only emitted when
// latency histograms are enabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate handler state.
package prometheus
