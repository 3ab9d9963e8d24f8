// Package metrics records regeneration metrics. Components receive a
// Recorder and default to NoopRecorder, so no nil checks are needed.
package metrics

import "time"

// Outcome labels a finished regeneration pass.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeStale   Outcome = "stale"
)

// Recorder defines observability hooks for regeneration passes.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome Outcome)
	SetDocuments(kind string, n int)
	IncArtifactWritten(name string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not served).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration) {}
func (NoopRecorder) IncRunOutcome(Outcome)            {}
func (NoopRecorder) SetDocuments(string, int)         {}
func (NoopRecorder) IncArtifactWritten(string)        {}
