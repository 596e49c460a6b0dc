package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageResultLabel enumerates per-page outcomes.
type PageResultLabel string

const (
	PageEnhanced PageResultLabel = "enhanced"
	PageSkipped  PageResultLabel = "skipped"
	PageFailed   PageResultLabel = "failed"
)

// Recorder defines observability hooks for run, stage and page metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome string) // outcome: success|partial|failed|canceled
	ObservePageDuration(d time.Duration)
	IncPageResult(result PageResultLabel)
	SetPagesDiscovered(n int)
	AddControls(buttons, tables, anchors int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) ObservePageDuration(time.Duration)          {}
func (NoopRecorder) IncPageResult(PageResultLabel)              {}
func (NoopRecorder) SetPagesDiscovered(int)                     {}
func (NoopRecorder) AddControls(int, int, int)                  {}
