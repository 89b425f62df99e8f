package assertion

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/uimatrix/internal/scenario"
)

// compare applies a canonical operator to an observed value.
//
//nolint:gocyclo // switch statement throwing it off.
func compare(op string, actual, expected interface{}) (bool, error) {
	actualFloat, actualIsNumeric := toFloat64(actual)
	expectedFloat, expectedIsNumeric := scenario.ToFloat64(expected)
	numeric := actualIsNumeric && expectedIsNumeric

	switch op {
	case scenario.OpEquals:
		if numeric {
			return actualFloat == expectedFloat, nil
		}

		return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected), nil

	case scenario.OpNotEquals:
		if numeric {
			return actualFloat != expectedFloat, nil
		}

		return fmt.Sprintf("%v", actual) != fmt.Sprintf("%v", expected), nil

	case scenario.OpGreaterThan, scenario.OpGreaterThanOrEqual, scenario.OpLessThan, scenario.OpLessThanOrEqual:
		if !numeric {
			return false, fmt.Errorf("%s requires numeric values, got actual=%T expected=%T", op, actual, expected) //nolint:err113 // Dynamic error with type info
		}

		switch op {
		case scenario.OpGreaterThan:
			return actualFloat > expectedFloat, nil
		case scenario.OpGreaterThanOrEqual:
			return actualFloat >= expectedFloat, nil
		case scenario.OpLessThan:
			return actualFloat < expectedFloat, nil
		default:
			return actualFloat <= expectedFloat, nil
		}

	case scenario.OpContains:
		return strings.Contains(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)), nil

	case scenario.OpNotContains:
		return !strings.Contains(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)), nil

	default:
		return false, fmt.Errorf("unknown comparison type: %s", op) //nolint:err113 // Dynamic error with comparison type
	}
}

// toFloat64 converts observed numbers only. Text observed on the page is never
// treated as numeric, while expected values may be numeric strings.
func toFloat64(val interface{}) (float64, bool) {
	switch val.(type) {
	case bool, string, nil:
		return 0, false
	}

	return scenario.ToFloat64(val)
}
