package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	runDurations   int
	runOutcomes    map[string]int
	pageResults    map[PageResultLabel]int
	discovered     int
	controls       map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		runOutcomes:    map[string]int{},
		pageResults:    map[PageResultLabel]int{},
		controls:       map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveRunDuration(_ time.Duration) { t.runDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncRunOutcome(outcome string)        { t.runOutcomes[outcome]++ }
func (t *testRecorder) ObservePageDuration(_ time.Duration) {}
func (t *testRecorder) IncPageResult(result PageResultLabel) {
	t.pageResults[result]++
}
func (t *testRecorder) SetPagesDiscovered(n int) { t.discovered = n }
func (t *testRecorder) AddControls(buttons, tables, anchors int) {
	t.controls["buttons"] += buttons
	t.controls["tables"] += tables
	t.controls["anchors"] += anchors
}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestRecorderAccounting(t *testing.T) {
	rec := newTestRecorder()

	rec.ObserveStageDuration("enhance_pages", 10*time.Millisecond)
	rec.IncStageResult("enhance_pages", ResultSuccess)
	rec.IncStageResult("enhance_pages", ResultWarning)
	rec.IncRunOutcome("partial")
	rec.IncPageResult(PageEnhanced)
	rec.IncPageResult(PageSkipped)
	rec.SetPagesDiscovered(7)
	rec.AddControls(3, 2, 5)
	rec.AddControls(1, 0, 0)

	if rec.stageDurations["enhance_pages"] != 1 {
		t.Errorf("stage durations = %d, want 1", rec.stageDurations["enhance_pages"])
	}
	if rec.stageResults["enhance_pages"][ResultSuccess] != 1 ||
		rec.stageResults["enhance_pages"][ResultWarning] != 1 {
		t.Errorf("stage results = %v", rec.stageResults["enhance_pages"])
	}
	if rec.runOutcomes["partial"] != 1 {
		t.Errorf("run outcomes = %v", rec.runOutcomes)
	}
	if rec.pageResults[PageEnhanced] != 1 || rec.pageResults[PageSkipped] != 1 {
		t.Errorf("page results = %v", rec.pageResults)
	}
	if rec.discovered != 7 {
		t.Errorf("discovered = %d, want 7", rec.discovered)
	}
	if rec.controls["buttons"] != 4 || rec.controls["tables"] != 2 || rec.controls["anchors"] != 5 {
		t.Errorf("controls = %v", rec.controls)
	}
}
