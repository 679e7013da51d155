package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

type metricsSource interface {
	MetricsSnapshot() goSession.MetricsSnapshot
}

// PrometheusExporter serves a lifecycle metrics snapshot as Prometheus text.
// Every scrape takes a fresh snapshot; nothing is cached between scrapes.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter reads from h.
func NewPrometheusExporter(h *goSession.Handler) *PrometheusExporter {
	return &PrometheusExporter{source: h}
}

// NewPrometheusExporterFromSource reads from any MetricsSnapshot provider.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler is the scrape endpoint.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the exposition text, or "" while metrics are disabled.
// Counters are always emitted in definition order; the latency histogram
// only when the snapshot carries it.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snap := p.source.MetricsSnapshot()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 {
		return ""
	}

	var out exposition
	for _, c := range internaldefs.CounterDefs {
		out.family(c.Name, c.Help, "counter")
		out.sample(c.Name, "", snap.Counters[c.ID])
	}
	for _, h := range internaldefs.HistogramDefs {
		raw, ok := snap.Histograms[h.ID]
		if !ok {
			continue
		}
		out.histogram(h.Name, h.Help, internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw)))
	}
	return out.String()
}

// exposition accumulates text-format lines.
type exposition struct {
	strings.Builder
}

func (e *exposition) family(name, help, kind string) {
	e.WriteString("# HELP " + name + " " + escapeHelp(help) + "\n")
	e.WriteString("# TYPE " + name + " " + kind + "\n")
}

func (e *exposition) sample(name, labels string, v uint64) {
	e.WriteString(name)
	e.WriteString(labels)
	e.WriteByte(' ')
	e.WriteString(strconv.FormatUint(v, 10))
	e.WriteByte('\n')
}

func (e *exposition) histogram(name, help string, cumulative [8]uint64) {
	e.family(name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		e.sample(name+"_bucket", `{le="`+le+`"}`, cumulative[i])
	}
	e.sample(name+"_count", "", cumulative[len(cumulative)-1])
	// bucket counts only; no duration sum is tracked
	e.sample(name+"_sum", "", 0)
}

func escapeHelp(help string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(help)
}
