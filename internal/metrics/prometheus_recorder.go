package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration  *prom.HistogramVec
	buildResults   *prom.CounterVec
	syncDuration   *prom.HistogramVec
	publishOutcome *prom.CounterVec
	lastSuccess    *prom.GaugeVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docpublish",
			Name:      "build_duration_seconds",
			Help:      "Duration of documentation generator runs",
			Buckets:   prom.DefBuckets,
		}, []string{"package", "result"}),
		buildResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "build_results_total",
			Help:      "Documentation generator runs by result",
		}, []string{"package", "result"}),
		syncDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docpublish",
			Name:      "sync_duration_seconds",
			Help:      "Duration of rsync transfers",
			Buckets:   prom.ExponentialBuckets(0.5, 2, 10),
		}, []string{"result"}),
		publishOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "publish_outcomes_total",
			Help:      "Publish operations by final outcome",
		}, []string{"outcome"}),
		lastSuccess: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "docpublish",
			Name:      "last_deploy_timestamp_seconds",
			Help:      "Unix time of the last successful deploy per package",
		}, []string{"package"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildResults, pr.syncDuration, pr.publishOutcome, pr.lastSuccess)
	return pr
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveBuild(pkg string, d time.Duration, ok bool) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(pkg, resultLabel(ok)).Observe(d.Seconds())
	p.buildResults.WithLabelValues(pkg, resultLabel(ok)).Inc()
}

func (p *PrometheusRecorder) ObserveSync(d time.Duration, ok bool) {
	if p == nil {
		return
	}
	p.syncDuration.WithLabelValues(resultLabel(ok)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome string) {
	if p == nil {
		return
	}
	p.publishOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetLastSuccess(pkg string, t time.Time) {
	if p == nil {
		return
	}
	p.lastSuccess.WithLabelValues(pkg).Set(float64(t.Unix()))
}
