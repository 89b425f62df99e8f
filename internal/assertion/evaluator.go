// Package assertion evaluates scenario assertions against a page's observable state.
package assertion

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// Result is the outcome of one assertion. Actual is nil when the observed
// element does not exist.
type Result struct {
	Predicate string      `json:"predicate"`
	Selector  string      `json:"selector,omitempty"`
	Operator  string      `json:"operator"`
	Expected  interface{} `json:"expected"`
	Actual    interface{} `json:"actual"`
	Satisfied bool        `json:"satisfied"`
	Error     string      `json:"error,omitempty"`
}

// Evaluator evaluates assertions in order.
type Evaluator interface {
	// Evaluate returns one result per assertion. A capability failure stops
	// evaluation and is returned as an *page.ActionError alongside the results
	// gathered so far.
	Evaluate(ctx context.Context, p page.Page, assertions []scenario.Assertion) ([]Result, error)
}

type evaluator struct {
	log logrus.FieldLogger
}

// NewEvaluator creates an assertion evaluator.
func NewEvaluator(log logrus.FieldLogger) Evaluator {
	return &evaluator{
		log: log.WithField("component", "assertion"),
	}
}

func (e *evaluator) Evaluate(ctx context.Context, p page.Page, assertions []scenario.Assertion) ([]Result, error) {
	results := make([]Result, 0, len(assertions))

	for _, a := range assertions {
		op, _ := scenario.CanonicalOperator(a.Operator)

		res := Result{
			Predicate: a.Predicate,
			Selector:  a.Selector,
			Operator:  op,
			Expected:  a.Expected,
		}

		actual, found, err := observe(ctx, p, a)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)

			return results, &page.ActionError{Action: a.Predicate, Selector: a.Selector, Err: err}
		}

		switch {
		case !found:
			res.Error = fmt.Sprintf("no element matches %s", describe(a))
		default:
			res.Actual = actual

			ok, cmpErr := compare(op, actual, a.Expected)
			if cmpErr != nil {
				res.Error = cmpErr.Error()
			}

			res.Satisfied = ok
		}

		e.log.WithFields(logrus.Fields{
			"predicate": a.Predicate,
			"selector":  a.Selector,
			"operator":  op,
			"expected":  a.Expected,
			"actual":    res.Actual,
			"satisfied": res.Satisfied,
		}).Debug("evaluated assertion")

		results = append(results, res)
	}

	return results, nil
}

// AllSatisfied reports whether every result is satisfied. An empty list is satisfied.
func AllSatisfied(results []Result) bool {
	for _, r := range results {
		if !r.Satisfied {
			return false
		}
	}

	return true
}

// Failed counts unsatisfied results.
func Failed(results []Result) int {
	n := 0

	for _, r := range results {
		if !r.Satisfied {
			n++
		}
	}

	return n
}

func describe(a scenario.Assertion) string {
	if a.Selector != "" {
		return a.Selector
	}

	return a.Predicate
}

// observe reads the value a predicate refers to. found is false when the
// element (or the container for container_width) does not exist.
//
//nolint:gocyclo // one case per predicate.
func observe(ctx context.Context, p page.Page, a scenario.Assertion) (interface{}, bool, error) {
	switch a.Predicate {
	case scenario.PredicateIsVisible:
		v, err := p.IsVisible(ctx, a.Selector)

		return v, true, err

	case scenario.PredicateIsEnabled:
		n, err := p.Count(ctx, a.Selector)
		if err != nil || n == 0 {
			return false, true, err
		}

		_, disabled, err := p.Attribute(ctx, a.Selector, "disabled")

		return !disabled, true, err

	case scenario.PredicateElementWidth, scenario.PredicateElementHeight:
		box, found, err := p.BoundingBox(ctx, a.Selector)
		if err != nil || !found {
			return nil, found, err
		}

		if a.Predicate == scenario.PredicateElementWidth {
			return box.Width, true, nil
		}

		return box.Height, true, nil

	case scenario.PredicateText:
		return p.Text(ctx, a.Selector)

	case scenario.PredicateAttribute:
		return p.Attribute(ctx, a.Selector, a.Attribute)

	case scenario.PredicateElementCount:
		n, err := p.Count(ctx, a.Selector)

		return n, true, err

	case scenario.PredicateNonEmptyCount:
		n, err := p.CountWithText(ctx, a.Selector)

		return n, true, err

	case scenario.PredicateComputedStyle:
		return p.ComputedStyle(ctx, a.Selector, a.Attribute)

	case scenario.PredicateTitle:
		title, err := p.Title(ctx)

		return title, true, err

	case scenario.PredicateActiveElementID:
		id, err := p.ActiveElementID(ctx)

		return id, true, err
	}

	metrics, err := p.EvaluateLayoutMetrics(ctx)
	if err != nil {
		return nil, false, err
	}

	switch a.Predicate {
	case scenario.PredicateHasHorizontalScroll:
		return metrics.HasHorizontalScroll, true, nil
	case scenario.PredicateViewportWidth:
		return metrics.ViewportWidth, true, nil
	case scenario.PredicateViewportHeight:
		return metrics.ViewportHeight, true, nil
	case scenario.PredicateBodyWidth:
		return metrics.BodyWidth, true, nil
	case scenario.PredicateScrollWidth:
		return metrics.ScrollWidth, true, nil
	case scenario.PredicateContainerWidth:
		if metrics.ContainerWidth == nil {
			return nil, false, nil
		}

		return *metrics.ContainerWidth, true, nil
	default:
		return nil, false, fmt.Errorf("unknown predicate %q", a.Predicate) //nolint:err113 // Dynamic error with predicate name
	}
}
