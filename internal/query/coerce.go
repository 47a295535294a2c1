package query

import (
	"bytes"
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerce parses raw into the normalized value of kind. The cases follow the
// fixed priority string, int, long, decimal, double, float, bool,
// date/time, uuid, enum.
func coerce(kind Kind, enum []string, raw string) (any, bool) {
	switch kind {
	case KindString:
		return raw, true
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 32)
		return n, err == nil
	case KindInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		return n, err == nil
	case KindDecimal:
		d, err := decimal.NewFromString(raw)
		return d, err == nil
	case KindFloat64:
		f, err := strconv.ParseFloat(raw, 64)
		return f, err == nil
	case KindFloat32:
		f, err := strconv.ParseFloat(raw, 32)
		return float64(float32(f)), err == nil
	case KindBool:
		switch {
		case strings.EqualFold(raw, "true"):
			return true, true
		case strings.EqualFold(raw, "false"):
			return false, true
		}
		return nil, false
	case KindDate:
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return dateOnly(t), true
		}
		return nil, false
	case KindTime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), true
			}
		}
		return nil, false
	case KindUUID:
		id, err := uuid.Parse(raw)
		return id, err == nil
	case KindEnum:
		for i, name := range enum {
			if strings.EqualFold(raw, name) {
				return i, true
			}
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < len(enum) {
			return n, true
		}
		return nil, false
	}
	return nil, false
}

// compareValues orders two normalized non-null values of the same kind.
func compareValues(kind Kind, a, b any) int {
	switch kind {
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindInt, KindInt64:
		return cmp.Compare(a.(int64), b.(int64))
	case KindDecimal:
		return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
	case KindFloat64, KindFloat32:
		return cmp.Compare(a.(float64), b.(float64))
	case KindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case KindDate, KindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case KindUUID:
		x, y := a.(uuid.UUID), b.(uuid.UUID)
		return bytes.Compare(x[:], y[:])
	case KindEnum:
		return cmp.Compare(a.(int), b.(int))
	}
	return 0
}

// compareNullable orders null before any value.
func compareNullable(kind Kind, a any, aok bool, b any, bok bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return compareValues(kind, a, b)
}
