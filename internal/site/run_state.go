package site

import "time"

// PageFile is one discovered HTML page inside the site root.
type PageFile struct {
	Path string // absolute filesystem path
	Rel  string // slash-separated path relative to the site root
}

// RunState carries mutable state and metrics across stages.
type RunState struct {
	Processor *Processor
	Pages     []PageFile
	Report    *Report
	start     time.Time
}

// newRunState constructs a RunState.
func newRunState(p *Processor, report *Report) *RunState {
	return &RunState{Processor: p, Report: report, start: time.Now()}
}
