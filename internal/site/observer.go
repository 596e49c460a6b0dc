package site

import (
	"time"

	"git.home.luguber.info/inful/docenhance/internal/metrics"
)

// RunObserver receives callbacks around stage execution and run lifecycle.
// It intentionally abstracts away the metrics.Recorder so future observers
// (logging, tracing, notifications) can hook in without changing stage code.
type RunObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnRunComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(stage StageName)                                    {}
func (NoopObserver) OnStageComplete(stage StageName, d time.Duration, r StageResult) {}
func (NoopObserver) OnRunComplete(report *Report)                                    {}

// recorderObserver adapts metrics.Recorder into a RunObserver.
type recorderObserver struct{ rec metrics.Recorder }

func (r recorderObserver) OnStageStart(stage StageName) {}
func (r recorderObserver) OnStageComplete(stage StageName, d time.Duration, _ StageResult) {
	if r.rec != nil {
		r.rec.ObserveStageDuration(string(stage), d)
	}
}

// OnRunComplete does not observe run duration; the processor records
// run-level metrics itself so aborted runs are counted too.
func (r recorderObserver) OnRunComplete(report *Report) {}
