package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/metrics"
	"git.home.luguber.info/inful/docenhance/internal/state"
)

func stageDiscoverPages(_ context.Context, rs *RunState) error {
	p := rs.Processor
	pages, err := discoverPages(p.cfg.Site.Root, p.cfg.Site.Exclude, p.cfg.Site.AssetBase)
	if err != nil {
		return newFatalStageError(StageDiscoverPages,
			ferrors.WrapError(err, ferrors.CategoryFileSystem, "page discovery failed").
				WithContext("root", p.cfg.Site.Root).
				Build())
	}

	rs.Pages = pages
	rs.Report.Pages = len(pages)
	p.recorder.SetPagesDiscovered(len(pages))

	if len(pages) == 0 {
		return newWarnStageError(StageDiscoverPages,
			ferrors.WrapError(ErrDiscovery, ferrors.CategoryValidation,
				"no pages found under site root").
				WithSeverity(ferrors.SeverityWarning).
				WithContext("root", p.cfg.Site.Root).
				Build())
	}
	return nil
}

func stageEnhancePages(ctx context.Context, rs *RunState) error {
	p := rs.Processor
	for _, page := range rs.Pages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageEnhancePages, ctx.Err())
		default:
		}

		t0 := time.Now()
		status, stats, err := p.enhancePage(ctx, page, rs.Report.RunID)
		p.recorder.ObservePageDuration(time.Since(t0))

		switch {
		case err != nil:
			rs.Report.FailedPages++
			rs.Report.AddPageIssue(IssuePageEnhance, StageEnhancePages, page.Rel, err.Error())
			p.recorder.IncPageResult(metrics.PageFailed)
			slog.Warn("Page enhancement failed", logfields.Page(page.Rel), logfields.Error(err))
		case status == PageSkipped:
			rs.Report.SkippedPages++
			p.recorder.IncPageResult(metrics.PageSkipped)
			slog.Debug("Page unchanged, skipped", logfields.Page(page.Rel))
		default:
			rs.Report.EnhancedPages++
			rs.Report.Controls.Buttons += stats.CopyButtons
			rs.Report.Controls.Tables += stats.TablesWrapped
			rs.Report.Controls.Anchors += stats.AnchorsBound
			p.recorder.IncPageResult(metrics.PageEnhanced)
			slog.Debug("Page enhanced", logfields.Page(page.Rel))
		}
	}

	if rs.Report.FailedPages == 0 {
		return nil
	}
	if rs.Report.EnhancedPages == 0 && rs.Report.SkippedPages == 0 {
		return newFatalStageError(StageEnhancePages,
			ferrors.WrapError(ErrEnhance, ferrors.CategoryEnhance,
				"every page failed enhancement").
				WithContext("failed", rs.Report.FailedPages).
				Build())
	}
	return newWarnStageError(StageEnhancePages,
		ferrors.WrapError(ErrEnhance, ferrors.CategoryEnhance,
			fmt.Sprintf("%d of %d pages failed enhancement", rs.Report.FailedPages, rs.Report.Pages)).
			WithSeverity(ferrors.SeverityWarning).
			Build())
}

func stageWriteAssets(ctx context.Context, rs *RunState) error {
	select {
	case <-ctx.Done():
		return newCanceledStageError(StageWriteAssets, ctx.Err())
	default:
	}

	p := rs.Processor
	written, err := writeAssets(p.cfg.Site.Root, p.cfg.Site.AssetBase, p.enhancer)
	rs.Report.AssetsWritten = written
	if err != nil {
		return newWarnStageError(StageWriteAssets,
			ferrors.WrapError(fmt.Errorf("%w: %w", ErrAssets, err), ferrors.CategoryFileSystem,
				"asset write failed").
				WithSeverity(ferrors.SeverityWarning).
				Retryable().
				Build())
	}
	slog.Debug("Enhancement assets written", logfields.Count(written))
	return nil
}

// stageFinalize closes the report, persists the run to the state store and
// publishes the completion event. Persistence and publish problems degrade
// the run to partial instead of failing it. Dry runs record and publish
// nothing.
func stageFinalize(ctx context.Context, rs *RunState) error {
	p := rs.Processor
	rs.Report.finish()
	rs.Report.deriveOutcome()
	if p.dryRun {
		return nil
	}

	var probs []error
	if p.store != nil {
		run := state.Run{
			ID:         rs.Report.RunID,
			StartedAt:  rs.Report.Start,
			FinishedAt: rs.Report.End,
			Total:      rs.Report.Pages,
			Enhanced:   rs.Report.EnhancedPages,
			Skipped:    rs.Report.SkippedPages,
			Failed:     rs.Report.FailedPages,
			Outcome:    rs.Report.Outcome,
		}
		if err := p.store.RecordRun(ctx, run); err != nil {
			probs = append(probs, fmt.Errorf("record run: %w", err))
			rs.Report.AddIssue(IssueStatePersist, StageFinalize, SeverityWarning,
				fmt.Sprintf("record run: %v", err), true, nil)
		}
	}
	if p.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.publisher.PublishRun(pubCtx, RunEvent{
			RunID:       rs.Report.RunID,
			SiteRoot:    rs.Report.SiteRoot,
			Outcome:     rs.Report.Outcome,
			Pages:       rs.Report.Pages,
			Enhanced:    rs.Report.EnhancedPages,
			Skipped:     rs.Report.SkippedPages,
			Failed:      rs.Report.FailedPages,
			CompletedAt: rs.Report.End,
		})
		cancel()
		if err != nil {
			probs = append(probs, fmt.Errorf("publish run event: %w", err))
			rs.Report.AddIssue(IssueEventPublish, StageFinalize, SeverityWarning,
				fmt.Sprintf("publish run event: %v", err), true, nil)
		}
	}

	if len(probs) > 0 {
		return newWarnStageError(StageFinalize,
			ferrors.WrapError(fmt.Errorf("%w: %w", ErrFinalize, errors.Join(probs...)),
				ferrors.CategoryState, "finalize completed with problems").
				WithSeverity(ferrors.SeverityWarning).
				Retryable().
				Build())
	}
	return nil
}
