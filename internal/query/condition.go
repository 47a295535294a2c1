package query

import (
	"strings"
)

// Predicate is a boolean test against one record.
type Predicate[T any] func(T) bool

// Condition is a filter resolved against a schema: the field is known, the
// operator applies to its kind and every operand has been coerced.
type Condition[T any] struct {
	field  *Field[T]
	op     Operator
	value  any
	to     any
	values []any
}

func (c Condition[T]) Field() *Field[T]   { return c.field }
func (c Condition[T]) Operator() Operator { return c.op }

// applicable reports whether op can be evaluated against f.
func applicable[T any](op Operator, f *Field[T]) bool {
	switch op {
	case Equals, NotEquals, In, NotIn:
		return true
	case Contains, NotContains, StartsWith, EndsWith, IsEmpty, IsNotEmpty:
		return f.Kind == KindString
	case GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual, Between:
		return f.Kind.Ordered()
	case IsNull, IsNotNull:
		return f.Nullable
	}
	return false
}

// BuildCondition resolves f. It returns false when the filter must be
// dropped: unknown field, operator not applicable to the field, or an
// operand that does not parse into the field's type.
func (s *Schema[T]) BuildCondition(f Filter) (Condition[T], bool) {
	field, ok := s.Lookup(f.Field)
	if !ok || !applicable(f.Operator, field) {
		return Condition[T]{}, false
	}

	c := Condition[T]{field: field, op: f.Operator}
	switch f.Operator {
	case IsEmpty, IsNotEmpty, IsNull, IsNotNull:
		return c, true
	case Between:
		lo, ok := coerce(field.Kind, field.Enum, f.Value)
		if !ok {
			return Condition[T]{}, false
		}
		hi, ok := coerce(field.Kind, field.Enum, f.ValueTo)
		if !ok {
			return Condition[T]{}, false
		}
		c.value, c.to = lo, hi
		return c, true
	case In, NotIn:
		for _, raw := range f.Values {
			if v, ok := coerce(field.Kind, field.Enum, raw); ok {
				c.values = append(c.values, v)
			}
		}
		return c, len(c.values) > 0
	default:
		v, ok := coerce(field.Kind, field.Enum, f.Value)
		if !ok {
			return Condition[T]{}, false
		}
		c.value = v
		return c, true
	}
}

// BuildPredicate resolves f into an in-memory test.
func (s *Schema[T]) BuildPredicate(f Filter) (Predicate[T], bool) {
	c, ok := s.BuildCondition(f)
	if !ok {
		return nil, false
	}
	return c.Match, true
}

// Match evaluates the condition against rec. Negative operators match a
// null field value.
func (c Condition[T]) Match(rec T) bool {
	v, ok := c.field.get(rec)
	kind := c.field.Kind

	switch c.op {
	case Equals:
		return ok && compareValues(kind, v, c.value) == 0
	case NotEquals:
		return !ok || compareValues(kind, v, c.value) != 0
	case Contains:
		return ok && strings.Contains(v.(string), c.value.(string))
	case NotContains:
		return !ok || !strings.Contains(v.(string), c.value.(string))
	case StartsWith:
		return ok && strings.HasPrefix(v.(string), c.value.(string))
	case EndsWith:
		return ok && strings.HasSuffix(v.(string), c.value.(string))
	case IsEmpty:
		return !ok || v.(string) == ""
	case IsNotEmpty:
		return ok && v.(string) != ""
	case GreaterThan:
		return ok && compareValues(kind, v, c.value) > 0
	case GreaterThanOrEqual:
		return ok && compareValues(kind, v, c.value) >= 0
	case LessThan:
		return ok && compareValues(kind, v, c.value) < 0
	case LessThanOrEqual:
		return ok && compareValues(kind, v, c.value) <= 0
	case Between:
		return ok && compareValues(kind, v, c.value) >= 0 && compareValues(kind, v, c.to) <= 0
	case In:
		return ok && c.contains(v)
	case NotIn:
		return !ok || !c.contains(v)
	case IsNull:
		return !ok
	case IsNotNull:
		return ok
	}
	return false
}

func (c Condition[T]) contains(v any) bool {
	for _, candidate := range c.values {
		if compareValues(c.field.Kind, v, candidate) == 0 {
			return true
		}
	}
	return false
}
