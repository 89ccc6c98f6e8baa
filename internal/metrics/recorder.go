package metrics

import "time"

// Outcome labels for publish operations.
const (
	OutcomeDeployed    = "deployed"
	OutcomeSkipped     = "skipped"
	OutcomeSyncFailed  = "sync_failed"
	OutcomeBuildError  = "build_error"
	OutcomeInvalidArgs = "invalid"
)

// Recorder defines observability hooks for docpublish operations.
type Recorder interface {
	ObserveBuild(pkg string, d time.Duration, ok bool)
	ObserveSync(d time.Duration, ok bool)
	IncPublishOutcome(outcome string)
	SetLastSuccess(pkg string, t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuild(string, time.Duration, bool) {}
func (NoopRecorder) ObserveSync(time.Duration, bool)          {}
func (NoopRecorder) IncPublishOutcome(string)                 {}
func (NoopRecorder) SetLastSuccess(string, time.Time)         {}
