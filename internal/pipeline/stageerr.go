package pipeline

import "fmt"

// Stage identifies the pipeline stage a failure is attributed to.
type Stage string

const (
	StageInit      Stage = "init"
	StageBuild     Stage = "build"
	StageVersion   Stage = "version"
	StageChangelog Stage = "changelog"
	StagePublish   Stage = "publish"
	StageCleanup   Stage = "cleanup"
)

// Severity classifies how a stage failure affects the run.
type Severity int

const (
	// SeverityAdvisory failures are reported but the run continues.
	SeverityAdvisory Severity = iota
	// SeverityFatal failures abort the run after cleanup.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	default:
		return "advisory"
	}
}

// StageError attributes a failure to a pipeline stage with a severity. The
// coordinator dispatches on severity in exactly one place; stages never
// decide control flow themselves.
type StageError struct {
	Stage    Stage
	Severity Severity
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a run-aborting failure of the given stage.
func Fatal(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Severity: SeverityFatal, Err: err}
}

// Advisory wraps err as a reported-but-tolerated failure of the given stage.
func Advisory(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Severity: SeverityAdvisory, Err: err}
}
