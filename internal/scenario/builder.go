package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidScenario is matched by InvalidScenarioError.
	ErrInvalidScenario = errors.New("invalid scenario")

	ErrEmptyName          = errors.New("scenario name is required")
	ErrEmptyPage          = errors.New("target page id is required")
	ErrNoDeviceAxis       = errors.New("either device or device_group is required")
	ErrBothDeviceAxes     = errors.New("device and device_group are mutually exclusive")
	ErrEmptyExclude       = errors.New("exclude_devices contains an empty id")
	ErrUnknownAction      = errors.New("unknown action")
	ErrMissingArg         = errors.New("missing required argument")
	ErrInvalidArg         = errors.New("invalid argument")
	ErrUnknownPredicate   = errors.New("unknown predicate")
	ErrMissingSelector    = errors.New("predicate requires a selector")
	ErrMissingAttribute   = errors.New("predicate requires an attribute")
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrOperatorKind       = errors.New("operator does not apply to predicate")
	ErrMissingExpected    = errors.New("expected value is required")
	ErrExpectedType       = errors.New("expected value has the wrong type")
	ErrUnknownOutcomeKind = errors.New("unknown expected outcome")
)

// InvalidScenarioError lists every problem found while building one scenario.
type InvalidScenarioError struct {
	Name     string
	Problems *multierror.Error
}

func (e *InvalidScenarioError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}

	msgs := make([]string, 0, len(e.Problems.Errors))
	for _, p := range e.Problems.Errors {
		msgs = append(msgs, p.Error())
	}

	return fmt.Sprintf("invalid scenario %q: %s", name, strings.Join(msgs, "; "))
}

// Is reports whether target is ErrInvalidScenario.
func (e *InvalidScenarioError) Is(target error) bool {
	return target == ErrInvalidScenario
}

// Unwrap exposes the individual problems to errors.Is.
func (e *InvalidScenarioError) Unwrap() []error {
	return e.Problems.Errors
}

// Build validates spec and returns an immutable descriptor. Validation does not
// stop at the first problem: the returned *InvalidScenarioError lists all of them.
func Build(spec Spec) (*Descriptor, error) {
	var problems *multierror.Error

	if strings.TrimSpace(spec.Name) == "" {
		problems = multierror.Append(problems, ErrEmptyName)
	}

	if strings.TrimSpace(spec.Page) == "" {
		problems = multierror.Append(problems, ErrEmptyPage)
	}

	switch {
	case spec.Device == "" && spec.DeviceGroup == "":
		problems = multierror.Append(problems, ErrNoDeviceAxis)
	case spec.Device != "" && spec.DeviceGroup != "":
		problems = multierror.Append(problems, ErrBothDeviceAxes)
	}

	expected := spec.ExpectedOutcome
	switch expected {
	case "":
		expected = OutcomeNormal
	case OutcomeNormal, OutcomeExpectedFailure:
	default:
		problems = multierror.Append(problems, fmt.Errorf("%w: %q", ErrUnknownOutcomeKind, expected))
	}

	excluded := make(map[string]struct{}, len(spec.ExcludeDevices))
	for _, id := range spec.ExcludeDevices {
		if id == "" {
			problems = multierror.Append(problems, ErrEmptyExclude)
			continue
		}

		excluded[id] = struct{}{}
	}

	for i, action := range spec.Actions {
		for _, err := range validateAction(action) {
			problems = multierror.Append(problems, fmt.Errorf("action %d (%s): %w", i+1, action.Name, err))
		}
	}

	assertions := make([]Assertion, len(spec.Assertions))
	for i, a := range spec.Assertions {
		normalised, errs := validateAssertion(a)
		for _, err := range errs {
			problems = multierror.Append(problems, fmt.Errorf("assertion %d (%s): %w", i+1, a.Predicate, err))
		}

		assertions[i] = normalised
	}

	if problems != nil {
		return nil, &InvalidScenarioError{Name: spec.Name, Problems: problems}
	}

	actions := make([]Action, len(spec.Actions))
	for i, a := range spec.Actions {
		actions[i] = Action{Name: a.Name, Args: copyArgs(a.Args)}
	}

	return &Descriptor{
		name:        spec.Name,
		device:      spec.Device,
		deviceGroup: spec.DeviceGroup,
		page:        spec.Page,
		actions:     actions,
		assertions:  assertions,
		expected:    expected,
		reason:      spec.Reason,
		excluded:    excluded,
	}, nil
}

func validateAction(a Action) []error {
	var errs []error

	require := func(names ...string) {
		for _, n := range names {
			if strings.TrimSpace(a.Args[n]) == "" {
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingArg, n))
			}
		}
	}

	switch a.Name {
	case ActionNavigate:
		if p, ok := a.Args["page"]; ok && strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("%w: page must not be empty", ErrInvalidArg))
		}
	case ActionFill:
		_, hasSel := a.Args["selector"]
		_, hasValue := a.Args["value"]

		switch {
		case hasSel:
			require("selector")

			if !hasValue {
				errs = append(errs, fmt.Errorf("%w: value", ErrMissingArg))
			}
		case hasValue:
			errs = append(errs, fmt.Errorf("%w: selector", ErrMissingArg))
		case len(a.Args) == 0:
			errs = append(errs, fmt.Errorf("%w: selector/value or at least one id=value pair", ErrMissingArg))
		}
	case ActionClick, ActionDoubleClick, ActionRightClick, ActionFocus:
		require("selector")
	case ActionPress:
		require("key")

		if raw, ok := a.Args["count"]; ok {
			if n, err := strconv.Atoi(raw); err != nil || n < 1 {
				errs = append(errs, fmt.Errorf("%w: count %q must be a positive integer", ErrInvalidArg, raw))
			}
		}
	case ActionWait:
		require("duration")

		if raw := a.Args["duration"]; raw != "" {
			if d, err := time.ParseDuration(raw); err != nil || d < 0 {
				errs = append(errs, fmt.Errorf("%w: duration %q", ErrInvalidArg, raw))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownAction, a.Name))
	}

	return errs
}

func validateAssertion(a Assertion) (Assertion, []error) {
	var errs []error

	info, known := Predicates[a.Predicate]
	if !known {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownPredicate, a.Predicate))
	}

	if known && info.NeedsSelector && strings.TrimSpace(a.Selector) == "" {
		errs = append(errs, ErrMissingSelector)
	}

	if known && info.NeedsAttr && strings.TrimSpace(a.Attribute) == "" {
		errs = append(errs, ErrMissingAttribute)
	}

	op, opKnown := CanonicalOperator(a.Operator)
	switch {
	case !opKnown:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownOperator, a.Operator))
	case known && !operatorAllowed(op, info.Kind):
		errs = append(errs, fmt.Errorf("%w: %s %s", ErrOperatorKind, a.Predicate, op))
	}

	if a.Expected == nil {
		errs = append(errs, ErrMissingExpected)
	} else if known && !expectedMatchesKind(a.Expected, info.Kind) {
		errs = append(errs, fmt.Errorf("%w: %v (%T)", ErrExpectedType, a.Expected, a.Expected))
	}

	if opKnown {
		a.Operator = op
	}

	return a, errs
}

func expectedMatchesKind(v interface{}, kind ValueKind) bool {
	switch kind {
	case KindBool:
		_, ok := v.(bool)

		return ok
	case KindNumber:
		_, ok := ToFloat64(v)

		return ok
	default:
		switch v.(type) {
		case string, int, int64, float64:
			return true
		default:
			return false
		}
	}
}

// ToFloat64 converts YAML/JSON numeric values and numeric strings to float64.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)

		return f, err == nil
	default:
		return 0, false
	}
}
