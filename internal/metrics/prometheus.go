package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg          *prom.Registry
	runDuration  prom.Histogram
	runOutcomes  *prom.CounterVec
	documents    *prom.GaugeVec
	artifactsOut *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "decisionlog",
			Name:      "run_duration_seconds",
			Help:      "Duration of regeneration passes",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "decisionlog",
			Name:      "runs_total",
			Help:      "Regeneration passes by outcome",
		}, []string{"outcome"}),
		documents: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "decisionlog",
			Name:      "documents",
			Help:      "Documents loaded in the last pass by kind",
		}, []string{"kind"}),
		artifactsOut: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "decisionlog",
			Name:      "artifacts_written_total",
			Help:      "Generated files written by name",
		}, []string{"artifact"}),
	}
	reg.MustRegister(pr.runDuration, pr.runOutcomes, pr.documents, pr.artifactsOut)
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome Outcome) {
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetDocuments(kind string, n int) {
	p.documents.WithLabelValues(kind).Set(float64(n))
}

func (p *PrometheusRecorder) IncArtifactWritten(name string) {
	p.artifactsOut.WithLabelValues(name).Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
