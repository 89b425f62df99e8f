// Package report collects execution results and aggregates them into a run summary.
package report

import (
	"time"

	"github.com/ethpandaops/uimatrix/internal/assertion"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// Outcome is the classification of one executed scenario.
type Outcome string

const (
	OutcomePassed                  Outcome = "passed"
	OutcomeFailed                  Outcome = "failed"
	OutcomeXFailConfirmed          Outcome = "expected-failure-confirmed"
	OutcomeXFailUnexpectedlyPassed Outcome = "expected-failure-unexpectedly-passed"
	OutcomeSkipped                 Outcome = "skipped"
	OutcomeSkippedTimeout          Outcome = "skipped-timeout"
)

// Outcomes lists every outcome kind in display order.
var Outcomes = []Outcome{
	OutcomePassed,
	OutcomeFailed,
	OutcomeXFailConfirmed,
	OutcomeXFailUnexpectedlyPassed,
	OutcomeSkipped,
	OutcomeSkippedTimeout,
}

// NeedsAttention reports whether the outcome fails the run.
func (o Outcome) NeedsAttention() bool {
	return o == OutcomeFailed || o == OutcomeXFailUnexpectedlyPassed
}

// State is the terminal state of the per-scenario state machine.
type State string

const (
	StatePending        State = "pending"
	StateRunning        State = "running"
	StateCompleted      State = "completed"
	StateErrored        State = "errored"
	StateSkippedTimeout State = "skipped-timeout"
)

// Classify maps assertion satisfaction and the declared outcome to an outcome kind.
func Classify(satisfied bool, expected scenario.ExpectedOutcome) Outcome {
	switch {
	case expected == scenario.OutcomeExpectedFailure && satisfied:
		return OutcomeXFailUnexpectedlyPassed
	case expected == scenario.OutcomeExpectedFailure:
		return OutcomeXFailConfirmed
	case satisfied:
		return OutcomePassed
	default:
		return OutcomeFailed
	}
}

// Result is the immutable record of one expanded scenario.
type Result struct {
	// Index is the scenario's position in the expanded plan.
	Index              int                      `json:"index"`
	Key                string                   `json:"key"`
	Scenario           string                   `json:"scenario"`
	Device             string                   `json:"device"`
	Page               string                   `json:"page"`
	ExpectedOutcome    scenario.ExpectedOutcome `json:"expected_outcome"`
	Reason             string                   `json:"reason,omitempty"`
	Outcome            Outcome                  `json:"outcome"`
	State              State                    `json:"state"`
	Assertions         []assertion.Result       `json:"assertions"`
	Artifact           string                   `json:"artifact,omitempty"`
	Error              string                   `json:"error,omitempty"`
	NavigationAttempts int                      `json:"navigation_attempts"`
	StartedAt          time.Time                `json:"started_at"`
	Duration           time.Duration            `json:"duration_ns"`
}

// FailedAssertions returns the unsatisfied assertion results.
func (r *Result) FailedAssertions() []assertion.Result {
	var out []assertion.Result

	for _, a := range r.Assertions {
		if !a.Satisfied {
			out = append(out, a)
		}
	}

	return out
}
