package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stageDuration   *prom.HistogramVec
	runDuration     prom.Histogram
	stageResults    *prom.CounterVec
	runOutcome      *prom.CounterVec
	pageDuration    prom.Histogram
	pageResults     *prom.CounterVec
	pagesDiscovered prom.Gauge
	controls        *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics under
// the given namespace (idempotent).
func NewPrometheusRecorder(reg *prom.Registry, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if namespace == "" {
		namespace = "docenhance"
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual run stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total enhancement run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"})
		pr.pageDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Duration of individual page enhancements",
			Buckets:   prom.DefBuckets,
		})
		pr.pageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_results_total",
			Help:      "Per-page results by outcome",
		}, []string{"result"})
		pr.pagesDiscovered = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_discovered",
			Help:      "Pages discovered in the last run",
		})
		pr.controls = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "controls_total",
			Help:      "Controls injected into pages by kind",
		}, []string{"kind"})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults,
			pr.runOutcome, pr.pageDuration, pr.pageResults, pr.pagesDiscovered,
			pr.controls)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result PageResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetPagesDiscovered(n int) {
	if p == nil || p.pagesDiscovered == nil {
		return
	}
	p.pagesDiscovered.Set(float64(n))
}

func (p *PrometheusRecorder) AddControls(buttons, tables, anchors int) {
	if p == nil || p.controls == nil {
		return
	}
	p.controls.WithLabelValues("buttons").Add(float64(buttons))
	p.controls.WithLabelValues("tables").Add(float64(tables))
	p.controls.WithLabelValues("anchors").Add(float64(anchors))
}
