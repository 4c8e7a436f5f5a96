package domain

// Op identifies a predicate operator.
type Op string

const (
	// OpEq matches records whose field equals the value.
	OpEq Op = "eq"
	// OpIn matches records whose field equals any of the values. This is
	// the only supported form of OR: equality alternatives on one field.
	OpIn Op = "in"
	// OpRange matches records whose numeric field lies within the
	// inclusive [Min, Max] bounds; either bound may be omitted.
	OpRange Op = "range"
)

// Condition is a single predicate over one metadata field.
type Condition struct {
	Field  string
	Op     Op
	Value  any      // OpEq
	Values []any    // OpIn
	Min    *float64 // OpRange, inclusive
	Max    *float64 // OpRange, inclusive
}

// Filter is a backend-neutral filter expression over chunk metadata.
// Conditions combine with logical AND. There is no general boolean
// algebra: metadata-filtering stores commonly support conjunctions of
// field predicates, and this mirrors that.
type Filter struct {
	Conditions []Condition
}

// Eq builds an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// In builds a membership condition: field equals any of values.
func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Values: values}
}

// Range builds an inclusive numeric range condition. A nil bound leaves
// that side open.
func Range(field string, min, max *float64) Condition {
	return Condition{Field: field, Op: OpRange, Min: min, Max: max}
}

// And combines conditions into a filter. A filter with no conditions
// matches everything.
func And(conds ...Condition) *Filter {
	return &Filter{Conditions: conds}
}

// IsEmpty reports whether the filter has no conditions.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Conditions) == 0
}

// Validate checks the filter for structural errors before it reaches a
// backend.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	for _, c := range f.Conditions {
		if c.Field == "" {
			return Validationf("filter condition has empty field name")
		}
		switch c.Op {
		case OpEq:
			if !IsScalar(c.Value) {
				return Validationf("equality on field %q requires a scalar value, got %T", c.Field, c.Value)
			}
		case OpIn:
			if len(c.Values) == 0 {
				return Validationf("membership on field %q requires at least one value", c.Field)
			}
			for _, v := range c.Values {
				if !IsScalar(v) {
					return Validationf("membership on field %q requires scalar values, got %T", c.Field, v)
				}
			}
		case OpRange:
			if c.Min == nil && c.Max == nil {
				return Validationf("range on field %q requires at least one bound", c.Field)
			}
			if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
				return Validationf("range on field %q has min %v greater than max %v", c.Field, *c.Min, *c.Max)
			}
		default:
			return Validationf("unknown filter operator %q on field %q", c.Op, c.Field)
		}
	}
	return nil
}
