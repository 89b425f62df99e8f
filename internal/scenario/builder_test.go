package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() Spec {
	return Spec{
		Name:   "fill_user_name",
		Device: "mobile_small",
		Page:   "text_box",
		Actions: []Action{
			{Name: ActionNavigate},
			{Name: ActionFill, Args: map[string]string{"userName": "Test User"}},
		},
		Assertions: []Assertion{
			{Predicate: PredicateIsVisible, Selector: "#userName", Expected: true},
		},
	}
}

func TestBuild_Valid(t *testing.T) {
	d, err := Build(validSpec())
	require.NoError(t, err)

	assert.Equal(t, "fill_user_name", d.Name())
	assert.Equal(t, "mobile_small", d.Device())
	assert.Equal(t, "mobile_small", d.DeviceAxis())
	assert.Equal(t, OutcomeNormal, d.ExpectedOutcome())
	require.Len(t, d.Assertions(), 1)
	assert.Equal(t, OpEquals, d.Assertions()[0].Operator)
}

func TestBuild_DescriptorIsImmutable(t *testing.T) {
	spec := validSpec()
	d, err := Build(spec)
	require.NoError(t, err)

	spec.Actions[1].Args["userName"] = "changed"
	d.Actions()[1].Args["userName"] = "changed again"
	d.Assertions()[0].Selector = "#other"

	assert.Equal(t, "Test User", d.Actions()[1].Args["userName"])
	assert.Equal(t, "#userName", d.Assertions()[0].Selector)
}

func TestBuild_ReportsEveryProblem(t *testing.T) {
	spec := Spec{
		Device:      "desktop",
		DeviceGroup: "mobile",
		Actions: []Action{
			{Name: "teleport"},
			{Name: ActionClick},
		},
		Assertions: []Assertion{
			{Predicate: "is_shiny", Expected: true},
			{Predicate: PredicateText, Operator: "roughly", Expected: "x"},
			{Predicate: PredicateElementWidth, Selector: "#a"},
		},
		ExpectedOutcome: "maybe",
	}

	_, err := Build(spec)
	require.Error(t, err)

	var invalid *InvalidScenarioError
	require.True(t, errors.As(err, &invalid))
	assert.ErrorIs(t, err, ErrInvalidScenario)

	for _, want := range []error{
		ErrEmptyName,
		ErrEmptyPage,
		ErrBothDeviceAxes,
		ErrUnknownAction,
		ErrMissingArg,
		ErrUnknownPredicate,
		ErrMissingSelector,
		ErrUnknownOperator,
		ErrMissingExpected,
		ErrUnknownOutcomeKind,
	} {
		assert.ErrorIs(t, err, want)
	}

	assert.Len(t, invalid.Problems.Errors, 10)
}

func TestBuild_SingleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Spec)
		want   error
	}{
		{
			name:   "no device axis",
			mutate: func(s *Spec) { s.Device = "" },
			want:   ErrNoDeviceAxis,
		},
		{
			name:   "empty exclude",
			mutate: func(s *Spec) { s.ExcludeDevices = []string{""} },
			want:   ErrEmptyExclude,
		},
		{
			name: "fill value without selector",
			mutate: func(s *Spec) {
				s.Actions[1].Args = map[string]string{"value": "x"}
			},
			want: ErrMissingArg,
		},
		{
			name: "fill without args",
			mutate: func(s *Spec) {
				s.Actions[1].Args = nil
			},
			want: ErrMissingArg,
		},
		{
			name: "press count not a number",
			mutate: func(s *Spec) {
				s.Actions = append(s.Actions, Action{Name: ActionPress, Args: map[string]string{"key": "Tab", "count": "two"}})
			},
			want: ErrInvalidArg,
		},
		{
			name: "wait bad duration",
			mutate: func(s *Spec) {
				s.Actions = append(s.Actions, Action{Name: ActionWait, Args: map[string]string{"duration": "soon"}})
			},
			want: ErrInvalidArg,
		},
		{
			name: "navigate empty page",
			mutate: func(s *Spec) {
				s.Actions[0].Args = map[string]string{"page": ""}
			},
			want: ErrInvalidArg,
		},
		{
			name: "attribute without name",
			mutate: func(s *Spec) {
				s.Assertions[0] = Assertion{Predicate: PredicateAttribute, Selector: "#x", Expected: "y"}
			},
			want: ErrMissingAttribute,
		},
		{
			name: "computed style without property",
			mutate: func(s *Spec) {
				s.Assertions[0] = Assertion{Predicate: PredicateComputedStyle, Selector: "#x", Operator: OpNotEquals, Expected: ""}
			},
			want: ErrMissingAttribute,
		},
		{
			name: "non-empty count without selector",
			mutate: func(s *Spec) {
				s.Assertions[0] = Assertion{Predicate: PredicateNonEmptyCount, Expected: 1}
			},
			want: ErrMissingSelector,
		},
		{
			name: "ordering operator on title",
			mutate: func(s *Spec) {
				s.Assertions[0] = Assertion{Predicate: PredicateTitle, Operator: "gt", Expected: "A"}
			},
			want: ErrOperatorKind,
		},
		{
			name: "ordering operator on bool",
			mutate: func(s *Spec) {
				s.Assertions[0].Operator = "gt"
			},
			want: ErrOperatorKind,
		},
		{
			name: "string expected for bool predicate",
			mutate: func(s *Spec) {
				s.Assertions[0].Expected = "yes"
			},
			want: ErrExpectedType,
		},
		{
			name: "contains on number",
			mutate: func(s *Spec) {
				s.Assertions[0] = Assertion{Predicate: PredicateBodyWidth, Operator: OpContains, Expected: 3}
			},
			want: ErrOperatorKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			_, err := Build(spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestBuild_OperatorAliases(t *testing.T) {
	spec := validSpec()
	spec.Assertions = []Assertion{
		{Predicate: PredicateScrollWidth, Operator: "lte", Expected: 375},
		{Predicate: PredicateText, Selector: "#name", Operator: "contains", Expected: "Test"},
		{Predicate: PredicateElementCount, Selector: ".rt-tr-group", Operator: "gt", Expected: 0},
	}

	d, err := Build(spec)
	require.NoError(t, err)

	ops := make([]string, 0, 3)
	for _, a := range d.Assertions() {
		ops = append(ops, a.Operator)
	}

	assert.Equal(t, []string{OpLessThanOrEqual, OpContains, OpGreaterThan}, ops)
}

func TestFillPairs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [][2]string{{"#userName", "Test User"}},
		FillPairs(map[string]string{"selector": "#userName", "value": "Test User"}))

	assert.Equal(t, [][2]string{
		{"#currentAddress", "1 Main St"},
		{"#userEmail", "test@example.com"},
		{"#userName", "Test User"},
	}, FillPairs(map[string]string{
		"userName":       "Test User",
		"userEmail":      "test@example.com",
		"currentAddress": "1 Main St",
	}))
}

func TestToFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{in: 3, want: 3, ok: true},
		{in: int64(7), want: 7, ok: true},
		{in: 2.5, want: 2.5, ok: true},
		{in: "375", want: 375, ok: true},
		{in: "wide", ok: false},
		{in: true, ok: false},
	}

	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)

		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.0001)
		}
	}
}
