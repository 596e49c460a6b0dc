package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/enhance"
	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/gitinfo"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/metrics"
	"git.home.luguber.info/inful/docenhance/internal/state"
)

// PageStatus describes what happened to a single page.
type PageStatus string

const (
	PageEnhanced PageStatus = "enhanced"
	PageSkipped  PageStatus = "skipped"
)

// Processor runs enhancement over a site root. One Processor serves many
// runs; per-run state lives in RunState.
type Processor struct {
	cfg       *config.Config
	enhancer  *enhance.Enhancer
	store     *state.Store
	recorder  metrics.Recorder
	observer  RunObserver
	publisher EventPublisher
	dryRun    bool
}

// Option customizes a Processor.
type Option func(*Processor)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) { p.recorder = r }
}

// WithStore injects the state store enabling unchanged-page skips and run
// history. Without a store every page is enhanced on every run.
func WithStore(s *state.Store) Option {
	return func(p *Processor) { p.store = s }
}

// WithPublisher injects the run event publisher.
func WithPublisher(pub EventPublisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithObserver injects a run observer replacing the default
// recorder-backed one.
func WithObserver(obs RunObserver) Option {
	return func(p *Processor) { p.observer = obs }
}

// WithDryRun makes runs compute and report enhancements without writing
// pages, assets, state or events.
func WithDryRun(on bool) Option {
	return func(p *Processor) { p.dryRun = on }
}

// NewProcessor creates a Processor for the configured site.
func NewProcessor(cfg *config.Config, opts ...Option) *Processor {
	p := &Processor{
		cfg:      cfg,
		enhancer: enhance.New(OptionsFromConfig(cfg)),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.recorder == nil {
		p.recorder = metrics.NoopRecorder{}
	}
	if p.observer == nil {
		p.observer = recorderObserver{rec: p.recorder}
	}
	return p
}

// EnhanceSite runs the full staged pipeline over the site root and returns
// the run report. The returned error is the first fatal stage error; the
// report is always populated, also on failure.
func (p *Processor) EnhanceSite(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	slog.Info("Starting site enhancement",
		logfields.RunID(runID), logfields.Path(p.cfg.Site.Root))

	report := newReport(runID, p.cfg.Site.Root)
	report.DryRun = p.dryRun
	if prov, err := gitinfo.Resolve(p.cfg.Site.Root); err == nil {
		report.Provenance = prov
	} else {
		slog.Debug("Site provenance unavailable", logfields.Error(err))
	}

	rs := newRunState(p, report)
	stages := NewPipeline().
		Add(StageDiscoverPages, stageDiscoverPages).
		Add(StageEnhancePages, stageEnhancePages).
		AddIf(!p.dryRun && p.cfg.Enhance.AssetsEnabled(), StageWriteAssets, stageWriteAssets).
		Add(StageFinalize, stageFinalize).
		Build()

	runErr := runStages(ctx, rs, stages)

	report.finish()
	report.deriveOutcome()

	if dir := p.cfg.Report.Directory; dir != "" && !p.dryRun {
		if err := report.Persist(dir); err != nil {
			slog.Warn("Failed to persist enhancement report", logfields.Error(err))
		}
	}
	p.recorder.ObserveRunDuration(report.End.Sub(report.Start))
	p.recorder.IncRunOutcome(report.Outcome)

	slog.Info("Site enhancement completed",
		logfields.RunID(runID),
		slog.String("outcome", report.Outcome),
		slog.Int("pages", report.Pages),
		slog.Int("enhanced", report.EnhancedPages),
		slog.Int("skipped", report.SkippedPages),
		slog.Int("failed", report.FailedPages))
	return report, runErr
}

// EnhancePage enhances a single page in place, outside a full run. Used by
// the daemon's file watcher. The path may be absolute or relative to the
// site root.
func (p *Processor) EnhancePage(ctx context.Context, path string) (PageStatus, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.cfg.Site.Root, path)
	}
	absRoot, err := filepath.Abs(p.cfg.Site.Root)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve site root").Build()
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryValidation, "page outside site root").
			WithContext("path", path).
			Build()
	}

	t0 := time.Now()
	status, stats, err := p.enhancePage(ctx, PageFile{Path: abs, Rel: filepath.ToSlash(rel)}, "")
	p.recorder.ObservePageDuration(time.Since(t0))
	if err != nil {
		p.recorder.IncPageResult(metrics.PageFailed)
		return "", err
	}
	if status == PageSkipped {
		p.recorder.IncPageResult(metrics.PageSkipped)
		return status, nil
	}
	p.recorder.IncPageResult(metrics.PageEnhanced)
	p.publishPageEvent(ctx, filepath.ToSlash(rel), status, stats)
	return status, nil
}

// publishPageEvent emits a page_enhanced notification, best effort.
func (p *Processor) publishPageEvent(ctx context.Context, rel string, status PageStatus, stats enhance.Stats) {
	if p.publisher == nil || p.dryRun {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := p.publisher.PublishPage(pubCtx, PageEvent{
		Page:       rel,
		Status:     string(status),
		Buttons:    stats.CopyButtons,
		Tables:     stats.TablesWrapped,
		Anchors:    stats.AnchorsBound,
		EnhancedAt: time.Now(),
	})
	if err != nil {
		slog.Warn("Failed to publish page event", logfields.Page(rel), logfields.Error(err))
	}
}

// enhancePage reads, enhances and atomically rewrites one page. The
// recorded fingerprint is taken from the written output, so a later pass
// over the enhanced file recognizes it as unchanged, and output identical
// to the input is never written. In dry-run mode the enhancement is
// computed but nothing is written or recorded.
func (p *Processor) enhancePage(ctx context.Context, page PageFile, runID string) (PageStatus, enhance.Stats, error) {
	var none enhance.Stats

	content, err := os.ReadFile(page.Path)
	if err != nil {
		return "", none, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read page").
			WithContext("page", page.Rel).
			Build()
	}

	fingerprint := state.ContentFingerprint(content)
	if p.store != nil {
		unchanged, err := p.store.Unchanged(ctx, page.Rel, fingerprint)
		if err != nil {
			slog.Warn("Fingerprint lookup failed, enhancing anyway",
				logfields.Page(page.Rel), logfields.Error(err))
		} else if unchanged {
			return PageSkipped, none, nil
		}
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", none, ferrors.WrapError(err, ferrors.CategoryParse, "parse page").
			WithContext("page", page.Rel).
			Build()
	}

	pg, err := p.enhancer.Apply(doc)
	if err != nil {
		return "", none, fmt.Errorf("enhance %s: %w", page.Rel, err)
	}
	stats := pg.Stats()

	var buf bytes.Buffer
	if err := pg.Render(&buf); err != nil {
		return "", none, fmt.Errorf("render %s: %w", page.Rel, err)
	}
	if p.dryRun {
		return PageEnhanced, stats, nil
	}
	if bytes.Equal(buf.Bytes(), content) {
		// The page was already enhanced and re-applying changed nothing.
		// Record the fingerprint so the next pass stops at the cheap check;
		// not writing here is what lets watch mode settle after our own
		// writes come back as filesystem events.
		if p.store != nil {
			rec := state.PageRecord{
				Path:        page.Rel,
				Fingerprint: fingerprint,
				RunID:       runID,
				EnhancedAt:  time.Now(),
				Buttons:     stats.CopyButtons,
				Tables:      stats.TablesWrapped,
				Anchors:     stats.AnchorsBound,
			}
			if err := p.store.RecordPage(ctx, rec); err != nil {
				slog.Warn("Failed to record page state", logfields.Page(page.Rel), logfields.Error(err))
			}
		}
		return PageSkipped, stats, nil
	}
	if err := writeFileAtomic(page.Path, buf.Bytes()); err != nil {
		return "", none, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write page").
			WithContext("page", page.Rel).
			Build()
	}
	p.recorder.AddControls(stats.CopyButtons, stats.TablesWrapped, stats.AnchorsBound)

	if p.store != nil {
		rec := state.PageRecord{
			Path:        page.Rel,
			Fingerprint: state.ContentFingerprint(buf.Bytes()),
			RunID:       runID,
			EnhancedAt:  time.Now(),
			Buttons:     stats.CopyButtons,
			Tables:      stats.TablesWrapped,
			Anchors:     stats.AnchorsBound,
		}
		if err := p.store.RecordPage(ctx, rec); err != nil {
			slog.Warn("Failed to record page state", logfields.Page(page.Rel), logfields.Error(err))
		}
	}
	return PageEnhanced, stats, nil
}
