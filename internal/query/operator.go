package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Operator names a filter comparison. The wire form is the operator name;
// the numeric position in the list below is accepted too.
type Operator string

const (
	Equals             Operator = "Equals"
	NotEquals          Operator = "NotEquals"
	Contains           Operator = "Contains"
	NotContains        Operator = "NotContains"
	StartsWith         Operator = "StartsWith"
	EndsWith           Operator = "EndsWith"
	IsEmpty            Operator = "IsEmpty"
	IsNotEmpty         Operator = "IsNotEmpty"
	GreaterThan        Operator = "GreaterThan"
	GreaterThanOrEqual Operator = "GreaterThanOrEqual"
	LessThan           Operator = "LessThan"
	LessThanOrEqual    Operator = "LessThanOrEqual"
	Between            Operator = "Between"
	In                 Operator = "In"
	NotIn              Operator = "NotIn"
	IsNull             Operator = "IsNull"
	IsNotNull          Operator = "IsNotNull"
)

var operators = []Operator{
	Equals, NotEquals, Contains, NotContains, StartsWith, EndsWith,
	IsEmpty, IsNotEmpty, GreaterThan, GreaterThanOrEqual, LessThan,
	LessThanOrEqual, Between, In, NotIn, IsNull, IsNotNull,
}

// Operators returns every supported operator in wire order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// ParseOperator resolves a name (case-insensitive) or ordinal to an Operator.
func ParseOperator(s string) (Operator, bool) {
	s = strings.TrimSpace(s)
	for _, op := range operators {
		if strings.EqualFold(s, string(op)) {
			return op, true
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(operators) {
		return operators[n], true
	}
	return "", false
}

// Valid reports whether o is one of the supported operators.
func (o Operator) Valid() bool {
	for _, op := range operators {
		if o == op {
			return true
		}
	}
	return false
}

func (o *Operator) UnmarshalJSON(data []byte) error {
	raw, err := scalarString(data)
	if err != nil {
		return fmt.Errorf("operator: %w", err)
	}
	op, ok := ParseOperator(raw)
	if !ok {
		return fmt.Errorf("unknown operator %q", raw)
	}
	*o = op
	return nil
}

// Direction is the sort direction of one sort key.
type Direction string

const (
	Ascending  Direction = "Ascending"
	Descending Direction = "Descending"
)

// ParseDirection accepts Ascending/Descending, asc/desc, or 0/1.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascending", "asc", "0":
		return Ascending, true
	case "descending", "desc", "1":
		return Descending, true
	}
	return "", false
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	raw, err := scalarString(data)
	if err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	dir, ok := ParseDirection(raw)
	if !ok {
		return fmt.Errorf("unknown sort direction %q", raw)
	}
	*d = dir
	return nil
}

// scalarString reads a JSON string or number as text.
func scalarString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected string or number")
	}
	return n.String(), nil
}
