package site

import (
	"errors"
	"fmt"

	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
)

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether the underlying error condition is likely
// transient and the run worth repeating without operator action.
func (e *StageError) Transient() bool {
	if e == nil {
		return false
	}
	if e.Kind == StageErrorCanceled {
		return false
	}
	cause := e.Err
	if classified, ok := ferrors.AsClassified(cause); ok && classified.CanRetry() {
		return true
	}
	switch e.Stage {
	case StageDiscoverPages:
		if errors.Is(cause, ErrDiscovery) {
			// An empty site may fill up; a walk failure will not fix itself.
			return e.Kind == StageErrorWarning
		}
	case StageWriteAssets:
		if errors.Is(cause, ErrAssets) {
			return true
		}
	case StageFinalize:
		if errors.Is(cause, ErrFinalize) {
			return true
		}
	}
	return false
}

// StageOutcome normalized result of stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Transient bool
	Abort     bool
}

// resultFromStageErrorKind maps a StageErrorKind to a StageResult.
func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}

// severityFromStageErrorKind maps StageErrorKind to IssueSeverity.
func severityFromStageErrorKind(k StageErrorKind) IssueSeverity {
	if k == StageErrorWarning {
		return SeverityWarning
	}
	return SeverityError
}

// classifyStageResult converts a raw error from a stage into a StageOutcome.
func classifyStageResult(stage StageName, err error, rs *RunState) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = newFatalStageError(stage, err)
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    StageResultFatal,
			IssueCode: IssueGenericStageError,
			Severity:  SeverityError,
			Abort:     true,
		}
	}

	if se.Kind == StageErrorCanceled {
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    StageResultCanceled,
			IssueCode: IssueCanceled,
			Severity:  SeverityError,
			Abort:     true,
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: classifyIssueCode(se, rs),
		Severity:  severityFromStageErrorKind(se.Kind),
		Transient: se.Transient(),
		Abort:     se.Kind == StageErrorFatal,
	}
}

// classifyIssueCode determines the issue code based on stage type and error.
func classifyIssueCode(se *StageError, rs *RunState) ReportIssueCode {
	switch se.Stage {
	case StageDiscoverPages:
		if se.Kind == StageErrorWarning && errors.Is(se.Err, ErrDiscovery) && len(rs.Pages) == 0 {
			return IssueNoPages
		}
		return IssueDiscoveryFailure
	case StageEnhancePages:
		if !errors.Is(se.Err, ErrEnhance) {
			return IssueEnhanceFailure
		}
		if rs.Report.EnhancedPages == 0 && rs.Report.FailedPages > 0 {
			return IssueAllPagesFailed
		}
		if rs.Report.FailedPages > 0 {
			return IssuePartialEnhance
		}
		return IssueEnhanceFailure
	case StageWriteAssets:
		return IssueAssetWrite
	case StageFinalize:
		if errors.Is(se.Err, ErrFinalize) {
			return IssueFinalizeFailure
		}
		return IssueGenericStageError
	default:
		return IssueGenericStageError
	}
}

// Helper constructors.
func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}
