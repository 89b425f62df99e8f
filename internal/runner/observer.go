package runner

import "github.com/ethpandaops/uimatrix/internal/report"

// Observer receives driver events, e.g. to export metrics. Methods are called
// concurrently from lanes.
type Observer interface {
	ScenarioFinished(res *report.Result)
	NavigationRetried()
	ArtifactCaptured(ok bool)
}

type nopObserver struct{}

func (nopObserver) ScenarioFinished(*report.Result) {}
func (nopObserver) NavigationRetried()              {}
func (nopObserver) ArtifactCaptured(bool)           {}

var _ Observer = nopObserver{}
