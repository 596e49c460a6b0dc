package state

import (
	"path/filepath"
	"testing"
	"time"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPageRoundTrip(t *testing.T) {
	store := openMemoryStore(t)
	ctx := t.Context()

	_, known, err := store.Fingerprint(ctx, "docs/index.html")
	if err != nil {
		t.Fatalf("fingerprint lookup failed: %v", err)
	}
	if known {
		t.Fatal("page should be unknown before first record")
	}

	record := PageRecord{
		Path:        "docs/index.html",
		Fingerprint: ContentFingerprint([]byte("<html><body>hi</body></html>")),
		RunID:       "run-1",
		EnhancedAt:  time.Now(),
		Buttons:     2,
		Tables:      1,
		Anchors:     3,
	}
	if err := store.RecordPage(ctx, record); err != nil {
		t.Fatalf("failed to record page: %v", err)
	}

	got, known, err := store.Fingerprint(ctx, "docs/index.html")
	if err != nil {
		t.Fatalf("fingerprint lookup failed: %v", err)
	}
	if !known {
		t.Fatal("page should be known after record")
	}
	if got != record.Fingerprint {
		t.Errorf("fingerprint = %s, want %s", got, record.Fingerprint)
	}

	unchanged, err := store.Unchanged(ctx, "docs/index.html", record.Fingerprint)
	if err != nil {
		t.Fatalf("unchanged check failed: %v", err)
	}
	if !unchanged {
		t.Error("page with matching fingerprint should report unchanged")
	}

	unchanged, err = store.Unchanged(ctx, "docs/index.html", "other")
	if err != nil {
		t.Fatalf("unchanged check failed: %v", err)
	}
	if unchanged {
		t.Error("page with different fingerprint should not report unchanged")
	}

	pages, err := store.Pages(ctx)
	if err != nil {
		t.Fatalf("failed to list pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Buttons != 2 || pages[0].Tables != 1 || pages[0].Anchors != 3 {
		t.Errorf("control counts not preserved: %+v", pages[0])
	}
}

func TestRecordPageUpserts(t *testing.T) {
	store := openMemoryStore(t)
	ctx := t.Context()

	first := PageRecord{Path: "a.html", Fingerprint: "fp-1", RunID: "run-1", EnhancedAt: time.Now(), Buttons: 1}
	second := PageRecord{Path: "a.html", Fingerprint: "fp-2", RunID: "run-2", EnhancedAt: time.Now(), Buttons: 4}

	if err := store.RecordPage(ctx, first); err != nil {
		t.Fatalf("failed to record page: %v", err)
	}
	if err := store.RecordPage(ctx, second); err != nil {
		t.Fatalf("failed to re-record page: %v", err)
	}

	pages, err := store.Pages(ctx)
	if err != nil {
		t.Fatalf("failed to list pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page after upsert, got %d", len(pages))
	}
	if pages[0].Fingerprint != "fp-2" || pages[0].RunID != "run-2" || pages[0].Buttons != 4 {
		t.Errorf("upsert did not replace record: %+v", pages[0])
	}
}

func TestForgetPage(t *testing.T) {
	store := openMemoryStore(t)
	ctx := t.Context()

	record := PageRecord{Path: "a.html", Fingerprint: "fp", RunID: "run", EnhancedAt: time.Now()}
	if err := store.RecordPage(ctx, record); err != nil {
		t.Fatalf("failed to record page: %v", err)
	}

	if err := store.ForgetPage(ctx, "a.html"); err != nil {
		t.Fatalf("failed to forget page: %v", err)
	}

	_, known, err := store.Fingerprint(ctx, "a.html")
	if err != nil {
		t.Fatalf("fingerprint lookup failed: %v", err)
	}
	if known {
		t.Error("forgotten page should be unknown")
	}
}

func TestRunHistory(t *testing.T) {
	store := openMemoryStore(t)
	ctx := t.Context()

	last, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("last run lookup failed: %v", err)
	}
	if last != nil {
		t.Fatal("empty store should have no last run")
	}

	base := time.Now().Add(-time.Hour)
	for i := range 3 {
		run := Run{
			ID:         string(rune('a' + i)),
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Total:      10,
			Enhanced:   8,
			Skipped:    1,
			Failed:     1,
			Outcome:    "partial",
		}
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	last, err = store.LastRun(ctx)
	if err != nil {
		t.Fatalf("last run lookup failed: %v", err)
	}
	if last == nil || last.ID != "c" {
		t.Fatalf("last run = %+v, want id c", last)
	}
	if last.Enhanced != 8 || last.Outcome != "partial" {
		t.Errorf("run fields not preserved: %+v", last)
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs lookup failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("recent runs = %+v, want [c b]", runs)
	}
}

func TestPruneRuns(t *testing.T) {
	store := openMemoryStore(t)
	ctx := t.Context()

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		run := Run{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Outcome:   "success",
		}
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	removed, err := store.PruneRuns(ctx, 2)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("pruned %d runs, want 3", removed)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs lookup failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "e" || runs[1].ID != "d" {
		t.Errorf("kept runs = %+v, want [e d]", runs)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store at %s: %v", path, err)
	}
	defer func() { _ = store.Close() }()

	record := PageRecord{Path: "a.html", Fingerprint: "fp", RunID: "run", EnhancedAt: time.Now()}
	if err := store.RecordPage(t.Context(), record); err != nil {
		t.Fatalf("failed to record page in file-backed store: %v", err)
	}
}

func TestContentFingerprintStability(t *testing.T) {
	a := ContentFingerprint([]byte("<p>same</p>"))
	b := ContentFingerprint([]byte("<p>same</p>"))
	c := ContentFingerprint([]byte("<p>different</p>"))

	if a != b {
		t.Error("identical content should produce identical fingerprints")
	}
	if a == c {
		t.Error("different content should produce different fingerprints")
	}
}
