package otel

import (
	"context"
	"errors"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goSession.MetricsSnapshot
}

// counterBinding ties a lifecycle counter to its observable instrument.
type counterBinding struct {
	id  goSession.MetricID
	ins metric.Int64ObservableCounter
}

// histogramBinding exposes one latency histogram as cumulative bucket gauges.
type histogramBinding struct {
	id      goSession.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter mirrors Handler metrics into an OpenTelemetry meter. Values are
// read from a snapshot on every collection; the exporter holds no counts.
type OTelExporter struct {
	source       metricsSource
	counters     []counterBinding
	histograms   []histogramBinding
	registration metric.Registration
}

// NewOTelExporter binds h to meter.
func NewOTelExporter(meter metric.Meter, h *goSession.Handler) (*OTelExporter, error) {
	if h == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, h)
}

// NewOTelExporterFromSource binds any MetricsSnapshot provider to meter.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}

	var observables []metric.Observable
	for _, def := range internaldefs.CounterDefs {
		b, err := bindCounter(meter, def)
		if err != nil {
			return nil, err
		}
		e.counters = append(e.counters, b)
		observables = append(observables, b.ins)
	}
	for _, def := range internaldefs.HistogramDefs {
		b, err := bindHistogram(meter, def)
		if err != nil {
			return nil, err
		}
		e.histograms = append(e.histograms, b)
		for _, g := range b.buckets {
			observables = append(observables, g)
		}
		observables = append(observables, b.count)
	}

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func bindCounter(meter metric.Meter, def internaldefs.CounterDef) (counterBinding, error) {
	ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
	if err != nil {
		return counterBinding{}, fmt.Errorf("counter %s: %w", def.Name, err)
	}
	return counterBinding{id: def.ID, ins: ins}, nil
}

func bindHistogram(meter metric.Meter, def internaldefs.HistogramDef) (histogramBinding, error) {
	b := histogramBinding{id: def.ID}
	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		g, err := meter.Int64ObservableGauge(name, metric.WithDescription(def.Help+" Cumulative bucket."))
		if err != nil {
			return histogramBinding{}, fmt.Errorf("histogram bucket %s: %w", name, err)
		}
		b.buckets[i] = g
	}
	count, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription(def.Help+" Sample count."))
	if err != nil {
		return histogramBinding{}, fmt.Errorf("histogram count %s: %w", def.Name, err)
	}
	b.count = count
	return b, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.ins, int64(snap.Counters[c.id]))
	}
	for _, h := range e.histograms {
		raw, ok := snap.Histograms[h.id]
		if !ok {
			continue
		}
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, g := range h.buckets {
			o.ObserveInt64(g, int64(cum[i]))
		}
		o.ObserveInt64(h.count, int64(cum[len(cum)-1]))
	}
	return nil
}

// Close stops collection. Safe to call on a nil exporter.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
