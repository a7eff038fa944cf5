// Package metrics defines the observability hooks used by the content manager
// and the generator. Components default to NoopRecorder so no nil checks are
// needed; PrometheusRecorder is swapped in when metrics are wanted.
package metrics

import "time"

// Result labels for generation outcomes.
const (
	ResultSuccess   = "success"
	ResultFailed    = "failed"
	ResultCancelled = "cancelled"
)

// Recorder receives provider and generation events.
type Recorder interface {
	IncProviderAttempt(provider, kind string)
	IncProviderRetry(provider, kind string)
	IncFallback(provider, kind string)
	ObserveGeneration(result string, d time.Duration)
	IncWriteFailure(fileKind string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncProviderAttempt(string, string)       {}
func (NoopRecorder) IncProviderRetry(string, string)         {}
func (NoopRecorder) IncFallback(string, string)              {}
func (NoopRecorder) ObserveGeneration(string, time.Duration) {}
func (NoopRecorder) IncWriteFailure(string)                  {}

var _ Recorder = NoopRecorder{}
