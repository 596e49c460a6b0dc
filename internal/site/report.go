package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docenhance/internal/gitinfo"
)

// RunOutcome is the typed enumeration of final run result states.
type RunOutcome string

const (
	OutcomeSuccess  RunOutcome = "success"
	OutcomePartial  RunOutcome = "partial"
	OutcomeFailed   RunOutcome = "failed"
	OutcomeCanceled RunOutcome = "canceled"
)

// ControlCount totals the page controls injected across a run.
type ControlCount struct {
	Buttons int `json:"buttons"`
	Tables  int `json:"tables"`
	Anchors int `json:"anchors"`
}

// Report captures high-level metrics about one enhancement run.
type Report struct {
	SchemaVersion int    // explicit schema version for forward-compatible consumers
	RunID         string // unique run identifier
	SiteRoot      string
	Pages         int // pages discovered
	EnhancedPages int // pages enhanced and written back
	SkippedPages  int // pages skipped because their fingerprint was unchanged
	FailedPages   int // pages that failed to parse or write
	AssetsWritten int // asset files written alongside the site
	Controls      ControlCount
	DryRun        bool // true when the run computed enhancements without writing
	Start         time.Time
	End           time.Time
	Errors        []error // fatal errors causing run abortion (at most one today)
	Warnings      []error // non-fatal issues (partial failures, persist problems)

	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	Outcome  string     // derived overall outcome (string form for JSON)
	OutcomeT RunOutcome // typed outcome mirror (source of truth)

	// Issues captures structured machine-parsable issue taxonomy entries.
	Issues []ReportIssue

	// Provenance records the git position of the site root when available.
	Provenance *gitinfo.Provenance
}

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are stable contract and should only be appended (no reuse on removal).
type ReportIssueCode string

const (
	IssueNoPages           ReportIssueCode = "NO_PAGES"
	IssueDiscoveryFailure  ReportIssueCode = "DISCOVERY_FAILURE"
	IssuePageEnhance       ReportIssueCode = "PAGE_ENHANCE_FAILURE"
	IssuePartialEnhance    ReportIssueCode = "PARTIAL_ENHANCE"
	IssueAllPagesFailed    ReportIssueCode = "ALL_PAGES_FAILED"
	IssueEnhanceFailure    ReportIssueCode = "ENHANCE_FAILURE"
	IssueAssetWrite        ReportIssueCode = "ASSET_WRITE_FAILURE"
	IssueStatePersist      ReportIssueCode = "STATE_PERSIST_FAILURE"
	IssueEventPublish      ReportIssueCode = "EVENT_PUBLISH_FAILURE"
	IssueFinalizeFailure   ReportIssueCode = "FINALIZE_FAILURE"
	IssueCanceled          ReportIssueCode = "RUN_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete problem.
// Message is human-friendly; Code + Stage allow automated handling;
// Transient hints retry suitability. Page is set for per-page issues.
type ReportIssue struct {
	Code      ReportIssueCode `json:"code"`
	Stage     StageName       `json:"stage"`
	Severity  IssueSeverity   `json:"severity"`
	Message   string          `json:"message"`
	Transient bool            `json:"transient"`
	Page      string          `json:"page,omitempty"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

func newReport(runID, siteRoot string) *Report {
	return &Report{
		SchemaVersion:   1,
		RunID:           runID,
		SiteRoot:        siteRoot,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// AddIssue appends a structured issue and mirrors it into the
// Errors/Warnings slices based on severity. Provide err=nil for purely
// informational issues.
func (r *Report) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, transient bool, err error) {
	issue := ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg, Transient: transient}
	r.Issues = append(r.Issues, issue)
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// AddPageIssue appends a structured issue bound to a specific page.
func (r *Report) AddPageIssue(code ReportIssueCode, stage StageName, page, msg string) {
	r.Issues = append(r.Issues, ReportIssue{
		Code:     code,
		Stage:    stage,
		Severity: SeverityWarning,
		Message:  msg,
		Page:     page,
	})
}

func (r *Report) finish() {
	if r.End.IsZero() {
		r.End = time.Now()
	}
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("run=%s pages=%d enhanced=%d skipped=%d failed=%d assets=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.RunID, r.Pages, r.EnhancedPages, r.SkippedPages, r.FailedPages, r.AssetsWritten,
		dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// deriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *Report) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.setOutcome(OutcomeCanceled)
				return
			}
		}
		r.setOutcome(OutcomeFailed)
		return
	}
	if len(r.Warnings) > 0 {
		r.setOutcome(OutcomePartial)
		return
	}
	r.setOutcome(OutcomeSuccess)
}

// setOutcome sets both typed and string forms.
func (r *Report) setOutcome(o RunOutcome) {
	r.OutcomeT = o
	r.Outcome = string(o)
}

// Persist writes the report atomically into the provided directory:
//
//	enhance-report.json  (machine readable)
//	enhance-report.txt   (human summary)
//
// Best effort; errors are returned for caller logging but do not change
// run outcome.
func (r *Report) Persist(dir string) error {
	if r.End.IsZero() {
		r.finish()
		r.deriveOutcome()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}

	jb, err := json.MarshalIndent(r.sanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(dir, "enhance-report.json")
	tmpJSON := jsonPath + ".tmp"
	// #nosec G306 -- report files are world readable site artifacts
	if err := os.WriteFile(tmpJSON, jb, 0o644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}

	summaryPath := filepath.Join(dir, "enhance-report.txt")
	tmpTxt := summaryPath + ".tmp"
	// #nosec G306 -- report files are world readable site artifacts
	if err := os.WriteFile(tmpTxt, []byte(r.Summary()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// Serializable returns a JSON-friendly copy of the report, as persisted
// and as served by the daemon's report endpoint.
func (r *Report) Serializable() *ReportSerializable {
	return r.sanitizedCopy()
}

// sanitizedCopy returns a copy with error fields converted to strings for
// JSON friendliness.
func (r *Report) sanitizedCopy() *ReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}

	if r.StageDurations == nil {
		r.StageDurations = map[string]time.Duration{}
	}

	s := &ReportSerializable{
		SchemaVersion:   r.SchemaVersion,
		RunID:           r.RunID,
		SiteRoot:        r.SiteRoot,
		Pages:           r.Pages,
		EnhancedPages:   r.EnhancedPages,
		SkippedPages:    r.SkippedPages,
		FailedPages:     r.FailedPages,
		AssetsWritten:   r.AssetsWritten,
		Controls:        r.Controls,
		DryRun:          r.DryRun,
		Start:           r.Start,
		End:             r.End,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		StageDurations:  r.StageDurations,
		StageErrorKinds: sek,
		StageCounts:     stageCounts,
		Outcome:         r.Outcome,
		Issues:          r.Issues,
		Provenance:      r.Provenance,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// ReportSerializable mirrors Report but with string errors for JSON output.
type ReportSerializable struct {
	SchemaVersion   int                      `json:"schema_version"`
	RunID           string                   `json:"run_id"`
	SiteRoot        string                   `json:"site_root"`
	Pages           int                      `json:"pages"`
	EnhancedPages   int                      `json:"enhanced_pages"`
	SkippedPages    int                      `json:"skipped_pages"`
	FailedPages     int                      `json:"failed_pages"`
	AssetsWritten   int                      `json:"assets_written"`
	Controls        ControlCount             `json:"controls"`
	DryRun          bool                     `json:"dry_run,omitempty"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Errors          []string                 `json:"errors"`
	Warnings        []string                 `json:"warnings"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds map[string]string        `json:"stage_error_kinds"`
	StageCounts     map[string]StageCount    `json:"stage_counts"`
	Outcome         string                   `json:"outcome"`
	Issues          []ReportIssue            `json:"issues"`
	Provenance      *gitinfo.Provenance      `json:"provenance,omitempty"`
}
