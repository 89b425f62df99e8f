package assertion

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/uimatrix/internal/device"
	"github.com/ethpandaops/uimatrix/internal/page"
	"github.com/ethpandaops/uimatrix/internal/page/pagetest"
	"github.com/ethpandaops/uimatrix/internal/scenario"
)

func fixture(t *testing.T) *pagetest.Page {
	t.Helper()

	p := pagetest.New()
	p.Set("#userName", &pagetest.Element{Visible: true, Box: page.Box{Width: 300, Height: 38}, Text: ""})
	p.Set("#submit", &pagetest.Element{
		Visible: true,
		Text:    "Submit",
		Attrs:   map[string]string{"type": "button"},
		Styles:  map[string]string{"color": "rgb(255, 255, 255)", "background-color": "rgb(0, 123, 255)"},
	})
	p.Set("#locked", &pagetest.Element{Visible: true, Attrs: map[string]string{"disabled": ""}})
	p.Set("label[for='userName']", &pagetest.Element{Visible: true, Text: "Full Name"})
	p.Counts[".rt-tr-group"] = 10
	p.TextCounts[".rt-tr-group"] = 3
	p.PageTitle = "DEMOQA"

	require.NoError(t, p.SetViewport(context.Background(), device.Profile{ID: "mobile_small", Width: 375, Height: 667}))

	return p
}

func TestEvaluate_Predicates(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	e := NewEvaluator(log)

	tests := []struct {
		name      string
		assertion scenario.Assertion
		satisfied bool
		actual    interface{}
	}{
		{"visible", scenario.Assertion{Predicate: scenario.PredicateIsVisible, Selector: "#userName", Expected: true}, true, true},
		{"absent is not visible", scenario.Assertion{Predicate: scenario.PredicateIsVisible, Selector: "#ghost", Expected: false}, true, false},
		{"enabled", scenario.Assertion{Predicate: scenario.PredicateIsEnabled, Selector: "#submit", Expected: true}, true, true},
		{"disabled", scenario.Assertion{Predicate: scenario.PredicateIsEnabled, Selector: "#locked", Expected: true}, false, false},
		{"no horizontal scroll", scenario.Assertion{Predicate: scenario.PredicateHasHorizontalScroll, Expected: false}, true, false},
		{"viewport width", scenario.Assertion{Predicate: scenario.PredicateViewportWidth, Expected: 375}, true, 375},
		{"viewport height alias", scenario.Assertion{Predicate: scenario.PredicateViewportHeight, Operator: "gte", Expected: 600}, true, 667},
		{"scroll within viewport", scenario.Assertion{Predicate: scenario.PredicateScrollWidth, Operator: "lte", Expected: 375}, true, 375},
		{"element width", scenario.Assertion{Predicate: scenario.PredicateElementWidth, Selector: "#userName", Operator: "lt", Expected: 375}, true, 300.0},
		{"element height", scenario.Assertion{Predicate: scenario.PredicateElementHeight, Selector: "#userName", Operator: "gt", Expected: 40}, false, 38.0},
		{"text contains", scenario.Assertion{Predicate: scenario.PredicateText, Selector: "label[for='userName']", Operator: "contains", Expected: "Name"}, true, "Full Name"},
		{"text not contains", scenario.Assertion{Predicate: scenario.PredicateText, Selector: "#submit", Operator: "not_contains", Expected: "Cancel"}, true, "Submit"},
		{"attribute", scenario.Assertion{Predicate: scenario.PredicateAttribute, Selector: "#submit", Attribute: "type", Expected: "button"}, true, "button"},
		{"count", scenario.Assertion{Predicate: scenario.PredicateElementCount, Selector: ".rt-tr-group", Operator: "gt", Expected: 0}, true, 10},
		{"count of nothing", scenario.Assertion{Predicate: scenario.PredicateElementCount, Selector: ".missing", Expected: 0}, true, 0},
		{"padded rows are not counted", scenario.Assertion{Predicate: scenario.PredicateNonEmptyCount, Selector: ".rt-tr-group", Expected: 3}, true, 3},
		{"element with text counts once", scenario.Assertion{Predicate: scenario.PredicateNonEmptyCount, Selector: "#submit", Expected: 1}, true, 1},
		{"blank element is not counted", scenario.Assertion{Predicate: scenario.PredicateNonEmptyCount, Selector: "#userName", Operator: "gte", Expected: 1}, false, 0},
		{"title", scenario.Assertion{Predicate: scenario.PredicateTitle, Expected: "DEMOQA"}, true, "DEMOQA"},
		{"title contains", scenario.Assertion{Predicate: scenario.PredicateTitle, Operator: "contains", Expected: "TOOLS"}, false, "DEMOQA"},
		{"computed color", scenario.Assertion{Predicate: scenario.PredicateComputedStyle, Selector: "#submit", Attribute: "color", Operator: "ne", Expected: ""}, true, "rgb(255, 255, 255)"},
		{"computed background", scenario.Assertion{Predicate: scenario.PredicateComputedStyle, Selector: "#submit", Attribute: "background-color", Expected: "rgb(0, 123, 255)"}, true, "rgb(0, 123, 255)"},
		{"unset style is empty", scenario.Assertion{Predicate: scenario.PredicateComputedStyle, Selector: "#userName", Attribute: "color", Operator: "ne", Expected: ""}, false, ""},
		{"no active element", scenario.Assertion{Predicate: scenario.PredicateActiveElementID, Operator: "ne", Expected: "userName"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.Evaluate(ctx, fixture(t), []scenario.Assertion{tt.assertion})
			require.NoError(t, err)
			require.Len(t, results, 1)

			assert.Equal(t, tt.satisfied, results[0].Satisfied, results[0].Error)
			assert.Equal(t, tt.actual, results[0].Actual)
		})
	}
}

func TestEvaluate_AbsentElementIsUnsatisfied(t *testing.T) {
	log, _ := test.NewNullLogger()

	results, err := NewEvaluator(log).Evaluate(context.Background(), fixture(t), []scenario.Assertion{
		{Predicate: scenario.PredicateText, Selector: "#output", Expected: "Test User"},
		{Predicate: scenario.PredicateElementWidth, Selector: "#output", Expected: 10},
		{Predicate: scenario.PredicateContainerWidth, Operator: "lte", Expected: 375},
		{Predicate: scenario.PredicateComputedStyle, Selector: "#output", Attribute: "color", Operator: "ne", Expected: ""},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.False(t, r.Satisfied)
		assert.Nil(t, r.Actual)
		assert.NotEmpty(t, r.Error)
	}

	assert.False(t, AllSatisfied(results))
	assert.Equal(t, 4, Failed(results))
}

func TestEvaluate_EveryAssertionIsEvaluated(t *testing.T) {
	log, _ := test.NewNullLogger()

	results, err := NewEvaluator(log).Evaluate(context.Background(), fixture(t), []scenario.Assertion{
		{Predicate: scenario.PredicateIsVisible, Selector: "#ghost", Expected: true},
		{Predicate: scenario.PredicateIsVisible, Selector: "#userName", Expected: true},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Satisfied)
	assert.True(t, results[1].Satisfied)
	assert.Equal(t, 1, Failed(results))
}

func TestEvaluate_CapabilityFailureStops(t *testing.T) {
	log, _ := test.NewNullLogger()

	p := fixture(t)
	require.NoError(t, p.Close())

	results, err := NewEvaluator(log).Evaluate(context.Background(), p, []scenario.Assertion{
		{Predicate: scenario.PredicateIsVisible, Selector: "#userName", Expected: true},
		{Predicate: scenario.PredicateBodyWidth, Expected: 375},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, page.ErrAction)
	assert.True(t, errors.Is(err, pagetest.ErrClosed))
	require.Len(t, results, 1)
	assert.False(t, results[0].Satisfied)
}

func TestAllSatisfied_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, AllSatisfied(nil))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op       string
		actual   interface{}
		expected interface{}
		want     bool
		wantErr  bool
	}{
		{op: scenario.OpEquals, actual: 375, expected: 375.0, want: true},
		{op: scenario.OpEquals, actual: 375, expected: "375", want: true},
		{op: scenario.OpEquals, actual: true, expected: true, want: true},
		{op: scenario.OpNotEquals, actual: "a", expected: "b", want: true},
		{op: scenario.OpGreaterThan, actual: 10, expected: 0, want: true},
		{op: scenario.OpLessThanOrEqual, actual: 376, expected: 375, want: false},
		{op: scenario.OpGreaterThan, actual: "wide", expected: 1, wantErr: true},
		{op: "approx", actual: 1, expected: 1, wantErr: true},
	}

	for _, tt := range tests {
		got, err := compare(tt.op, tt.actual, tt.expected)
		if tt.wantErr {
			assert.Error(t, err, "%s %v %v", tt.op, tt.actual, tt.expected)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %v %v", tt.op, tt.actual, tt.expected)
	}
}
