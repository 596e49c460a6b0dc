package site

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReportAddIssueMirrorsSeverity(t *testing.T) {
	r := newReport("run-1", "/srv/site")
	r.AddIssue(IssueAssetWrite, StageWriteAssets, SeverityWarning, "disk hiccup", true, errors.New("disk hiccup"))
	r.AddIssue(IssueDiscoveryFailure, StageDiscoverPages, SeverityError, "walk failed", false, errors.New("walk failed"))
	r.AddIssue(IssueNoPages, StageDiscoverPages, SeverityWarning, "informational", false, nil)

	if len(r.Issues) != 3 {
		t.Fatalf("issues = %d, want 3", len(r.Issues))
	}
	if len(r.Warnings) != 1 || len(r.Errors) != 1 {
		t.Fatalf("warnings=%d errors=%d, want 1/1", len(r.Warnings), len(r.Errors))
	}
}

func TestReportDeriveOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := newReport("r", "/s")
		r.deriveOutcome()
		if r.OutcomeT != OutcomeSuccess || r.Outcome != "success" {
			t.Fatalf("outcome = %s", r.Outcome)
		}
	})
	t.Run("partial on warnings", func(t *testing.T) {
		r := newReport("r", "/s")
		r.Warnings = append(r.Warnings, errors.New("w"))
		r.deriveOutcome()
		if r.OutcomeT != OutcomePartial {
			t.Fatalf("outcome = %s, want partial", r.Outcome)
		}
	})
	t.Run("failed on errors", func(t *testing.T) {
		r := newReport("r", "/s")
		r.Errors = append(r.Errors, errors.New("e"))
		r.Warnings = append(r.Warnings, errors.New("w"))
		r.deriveOutcome()
		if r.OutcomeT != OutcomeFailed {
			t.Fatalf("outcome = %s, want failed", r.Outcome)
		}
	})
	t.Run("canceled wins over failed", func(t *testing.T) {
		r := newReport("r", "/s")
		r.Errors = append(r.Errors, newCanceledStageError(StageEnhancePages, errors.New("ctx")))
		r.deriveOutcome()
		if r.OutcomeT != OutcomeCanceled {
			t.Fatalf("outcome = %s, want canceled", r.Outcome)
		}
	})
}

func TestReportSummary(t *testing.T) {
	r := newReport("run-7", "/srv/site")
	r.Pages = 10
	r.EnhancedPages = 7
	r.SkippedPages = 2
	r.FailedPages = 1
	r.AssetsWritten = 2
	r.finish()
	r.deriveOutcome()

	s := r.Summary()
	for _, want := range []string{"run=run-7", "pages=10", "enhanced=7", "skipped=2", "failed=1", "assets=2", "outcome=success"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q: %s", want, s)
		}
	}
}

func TestReportFinishIdempotent(t *testing.T) {
	r := newReport("r", "/s")
	r.finish()
	end := r.End
	time.Sleep(time.Millisecond)
	r.finish()
	if !r.End.Equal(end) {
		t.Fatalf("finish moved the end time")
	}
}

func TestReportPersist(t *testing.T) {
	dir := t.TempDir()
	r := newReport("run-9", "/srv/site")
	r.Pages = 3
	r.EnhancedPages = 2
	r.SkippedPages = 1
	r.StageDurations[string(StageEnhancePages)] = 42 * time.Millisecond
	r.StageCounts[StageEnhancePages] = StageCount{Success: 1}
	r.AddIssue(IssueEventPublish, StageFinalize, SeverityWarning, "nats unavailable", true, errors.New("nats unavailable"))
	r.finish()
	r.deriveOutcome()

	if err := r.Persist(dir); err != nil {
		t.Fatalf("persist: %v", err)
	}

	jsonPath := filepath.Join(dir, "enhance-report.json")
	// #nosec G304 -- test reads from its own temp directory
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("expected report json: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(b, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed["outcome"] != "partial" {
		t.Fatalf("expected outcome=partial got %v", parsed["outcome"])
	}
	if parsed["run_id"] != "run-9" {
		t.Fatalf("run_id = %v", parsed["run_id"])
	}
	if n, ok := parsed["enhanced_pages"].(float64); !ok || n != 2 {
		t.Fatalf("enhanced_pages = %v", parsed["enhanced_pages"])
	}
	warnings, ok := parsed["warnings"].([]any)
	if !ok || len(warnings) != 1 {
		t.Fatalf("warnings not serialized as strings: %v", parsed["warnings"])
	}

	txt, err := os.ReadFile(filepath.Join(dir, "enhance-report.txt"))
	if err != nil {
		t.Fatalf("expected report txt: %v", err)
	}
	if !strings.Contains(string(txt), "run=run-9") {
		t.Fatalf("summary file content unexpected: %s", txt)
	}

	// No temp files may survive the atomic rename.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestReportPersistCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	r := newReport("run-10", "/srv/site")
	r.finish()
	r.deriveOutcome()
	if err := r.Persist(dir); err != nil {
		t.Fatalf("persist into missing directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "enhance-report.json")); err != nil {
		t.Fatalf("report json missing: %v", err)
	}
}
