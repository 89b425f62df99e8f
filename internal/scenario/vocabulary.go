package scenario

// Action names understood by the driver.
const (
	ActionNavigate    = "navigate"
	ActionFill        = "fill"
	ActionClick       = "click"
	ActionDoubleClick = "double_click"
	ActionRightClick  = "right_click"
	ActionFocus       = "focus"
	ActionPress       = "press"
	ActionWait        = "wait"
)

// Predicate names understood by the assertion evaluator.
const (
	PredicateIsVisible           = "is_visible"
	PredicateIsEnabled           = "is_enabled"
	PredicateHasHorizontalScroll = "has_horizontal_scroll"
	PredicateViewportWidth       = "viewport_width"
	PredicateViewportHeight      = "viewport_height"
	PredicateBodyWidth           = "body_width"
	PredicateScrollWidth         = "scroll_width"
	PredicateContainerWidth      = "container_width"
	PredicateElementWidth        = "element_width"
	PredicateElementHeight       = "element_height"
	PredicateText                = "text"
	PredicateAttribute           = "attribute"
	PredicateElementCount        = "element_count"
	PredicateNonEmptyCount       = "non_empty_count"
	PredicateActiveElementID     = "active_element_id"
	PredicateTitle               = "title"
	PredicateComputedStyle       = "computed_style"
)

// ValueKind is the type of value a predicate observes.
type ValueKind int

const (
	// KindBool predicates compare with equals/not_equals only.
	KindBool ValueKind = iota
	// KindNumber predicates additionally allow ordering operators.
	KindNumber
	// KindString predicates additionally allow contains/not_contains.
	KindString
)

// PredicateInfo describes what a predicate needs and observes.
type PredicateInfo struct {
	Kind          ValueKind
	NeedsSelector bool
	NeedsAttr     bool
}

// Predicates is the set of known assertion predicates.
var Predicates = map[string]PredicateInfo{
	PredicateIsVisible:           {Kind: KindBool, NeedsSelector: true},
	PredicateIsEnabled:           {Kind: KindBool, NeedsSelector: true},
	PredicateHasHorizontalScroll: {Kind: KindBool},
	PredicateViewportWidth:       {Kind: KindNumber},
	PredicateViewportHeight:      {Kind: KindNumber},
	PredicateBodyWidth:           {Kind: KindNumber},
	PredicateScrollWidth:         {Kind: KindNumber},
	PredicateContainerWidth:      {Kind: KindNumber},
	PredicateElementWidth:        {Kind: KindNumber, NeedsSelector: true},
	PredicateElementHeight:       {Kind: KindNumber, NeedsSelector: true},
	PredicateText:                {Kind: KindString, NeedsSelector: true},
	PredicateAttribute:           {Kind: KindString, NeedsSelector: true, NeedsAttr: true},
	PredicateElementCount:        {Kind: KindNumber, NeedsSelector: true},
	PredicateNonEmptyCount:       {Kind: KindNumber, NeedsSelector: true},
	PredicateActiveElementID:     {Kind: KindString},
	PredicateTitle:               {Kind: KindString},
	// The attribute field names the CSS property.
	PredicateComputedStyle: {Kind: KindString, NeedsSelector: true, NeedsAttr: true},
}

// Comparison operators. Short aliases are normalised by CanonicalOperator.
const (
	OpEquals             = "equals"
	OpNotEquals          = "not_equals"
	OpGreaterThan        = "greater_than"
	OpGreaterThanOrEqual = "greater_than_or_equal"
	OpLessThan           = "less_than"
	OpLessThanOrEqual    = "less_than_or_equal"
	OpContains           = "contains"
	OpNotContains        = "not_contains"
)

var operatorAliases = map[string]string{
	"":                   OpEquals,
	"eq":                 OpEquals,
	"equal":              OpEquals,
	OpEquals:             OpEquals,
	"ne":                 OpNotEquals,
	"not_equal":          OpNotEquals,
	OpNotEquals:          OpNotEquals,
	"gt":                 OpGreaterThan,
	OpGreaterThan:        OpGreaterThan,
	"gte":                OpGreaterThanOrEqual,
	OpGreaterThanOrEqual: OpGreaterThanOrEqual,
	"lt":                 OpLessThan,
	OpLessThan:           OpLessThan,
	"lte":                OpLessThanOrEqual,
	OpLessThanOrEqual:    OpLessThanOrEqual,
	OpContains:           OpContains,
	OpNotContains:        OpNotContains,
}

// CanonicalOperator returns the long form of op, and false if op is unknown.
func CanonicalOperator(op string) (string, bool) {
	canonical, ok := operatorAliases[op]

	return canonical, ok
}

// operatorAllowed reports whether a canonical operator applies to kind.
func operatorAllowed(op string, kind ValueKind) bool {
	switch op {
	case OpEquals, OpNotEquals:
		return true
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return kind == KindNumber
	case OpContains, OpNotContains:
		return kind == KindString
	default:
		return false
	}
}
