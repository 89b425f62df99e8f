package actions

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/matrix"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// Plan is a run configuration expanded into its scenario matrix.
type Plan struct {
	Config  *scenario.RunConfig
	Targets *page.Targets
	Matrix  *matrix.Plan
}

// Prepare loads the run configuration at path and expands it. The file's
// base_url takes precedence over baseURL.
func Prepare(log logrus.FieldLogger, path, baseURL string, filter matrix.Filter) (*Plan, error) {
	rc, err := scenario.NewLoader(log, page.DefaultTargets).LoadFile(path)
	if err != nil {
		return nil, err
	}

	if rc.BaseURL != "" {
		baseURL = rc.BaseURL
	}

	targets, err := page.NewTargets(baseURL, rc.Pages)
	if err != nil {
		return nil, fmt.Errorf("resolving pages: %w", err)
	}

	plan, err := matrix.NewExpander(log, rc.Catalog, targets).Expand(rc.Descriptors, filter)
	if err != nil {
		return nil, fmt.Errorf("expanding scenarios: %w", err)
	}

	return &Plan{Config: rc, Targets: targets, Matrix: plan}, nil
}
