package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	attempts      *prom.CounterVec
	retries       *prom.CounterVec
	fallbacks     *prom.CounterVec
	generations   *prom.HistogramVec
	writeFailures *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		attempts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "scribe",
			Name:      "provider_attempts_total",
			Help:      "Content provider calls, including retries",
		}, []string{"provider", "kind"}),
		retries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "scribe",
			Name:      "provider_retries_total",
			Help:      "Content provider retries after a failed call",
		}, []string{"provider", "kind"}),
		fallbacks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "scribe",
			Name:      "provider_fallbacks_total",
			Help:      "Content kinds served by the placeholder provider after a provider failure",
		}, []string{"provider", "kind"}),
		generations: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "scribe",
			Name:      "generation_duration_seconds",
			Help:      "Duration of documentation generation calls",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		writeFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "scribe",
			Name:      "write_failures_total",
			Help:      "Output file write failures by file kind",
		}, []string{"file_kind"}),
	}
	reg.MustRegister(pr.attempts, pr.retries, pr.fallbacks, pr.generations, pr.writeFailures)
	return pr
}

func (p *PrometheusRecorder) IncProviderAttempt(provider, kind string) {
	if p == nil {
		return
	}
	p.attempts.WithLabelValues(provider, kind).Inc()
}

func (p *PrometheusRecorder) IncProviderRetry(provider, kind string) {
	if p == nil {
		return
	}
	p.retries.WithLabelValues(provider, kind).Inc()
}

func (p *PrometheusRecorder) IncFallback(provider, kind string) {
	if p == nil {
		return
	}
	p.fallbacks.WithLabelValues(provider, kind).Inc()
}

func (p *PrometheusRecorder) ObserveGeneration(result string, d time.Duration) {
	if p == nil {
		return
	}
	p.generations.WithLabelValues(result).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncWriteFailure(fileKind string) {
	if p == nil {
		return
	}
	p.writeFailures.WithLabelValues(fileKind).Inc()
}

// HTTPHandler serves the metrics gathered by g.
func HTTPHandler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

var _ Recorder = (*PrometheusRecorder)(nil)
