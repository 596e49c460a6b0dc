package site

import (
	"context"
	"fmt"
	"time"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning classifications are recorded on the report and
// execution continues with the next stage.
func runStages(ctx context.Context, rs *RunState, stages []StageDef) error {
	p := rs.Processor
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			rs.Report.StageErrorKinds[st.Name] = se.Kind
			rs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), false, se)
			rs.Report.recordStageResult(st.Name, StageResultCanceled, p.recorder)
			if p.observer != nil {
				p.observer.OnStageComplete(st.Name, 0, StageResultCanceled)
			}
			return se
		default:
		}

		if p.observer != nil {
			p.observer.OnStageStart(st.Name)
		}
		t0 := time.Now()
		err := st.Fn(ctx, rs)
		dur := time.Since(t0)
		rs.Report.StageDurations[string(st.Name)] = dur

		out := classifyStageResult(st.Name, err, rs)
		if out.Error != nil {
			rs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			rs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Error.Error(), out.Transient, out.Error)
		}
		rs.Report.recordStageResult(st.Name, out.Result, p.recorder)
		if p.observer != nil {
			p.observer.OnStageComplete(st.Name, dur, out.Result)
		}
		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	if p.observer != nil {
		p.observer.OnRunComplete(rs.Report)
	}
	return nil
}
