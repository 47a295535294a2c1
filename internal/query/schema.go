package query

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the native type of a queryable field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindInt64
	KindDecimal
	KindFloat64
	KindFloat32
	KindBool
	KindDate
	KindTime
	KindUUID
	KindEnum
)

var kindNames = [...]string{
	KindString:  "string",
	KindInt:     "int",
	KindInt64:   "int64",
	KindDecimal: "decimal",
	KindFloat64: "float64",
	KindFloat32: "float32",
	KindBool:    "bool",
	KindDate:    "date",
	KindTime:    "time",
	KindUUID:    "uuid",
	KindEnum:    "enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Ordered reports whether range operators apply to the kind.
func (k Kind) Ordered() bool {
	switch k {
	case KindInt, KindInt64, KindDecimal, KindFloat64, KindFloat32, KindDate, KindTime, KindEnum:
		return true
	}
	return false
}

// Field describes one queryable field of T.
type Field[T any] struct {
	Name     string
	Column   string
	Kind     Kind
	Nullable bool
	Enum     []string

	// get returns the normalized value and false when the value is null.
	get func(T) (any, bool)
}

// Value returns the normalized field value of rec and whether it is non-null.
func (f *Field[T]) Value(rec T) (any, bool) {
	return f.get(rec)
}

// Schema is the field registry of one record type. Schemas are built once
// at package init and are read-only afterwards.
type Schema[T any] struct {
	fields      map[string]*Field[T]
	names       []string
	searchable  []*Field[T]
	defaultSort *Field[T]
	keyColumn   string
}

func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{
		fields:    make(map[string]*Field[T]),
		keyColumn: "id",
	}
}

func (s *Schema[T]) add(name, column string, kind Kind, nullable bool, get func(T) (any, bool)) *Schema[T] {
	s.fields[strings.ToLower(name)] = &Field[T]{
		Name:     name,
		Column:   column,
		Kind:     kind,
		Nullable: nullable,
		get:      get,
	}
	s.names = append(s.names, name)
	return s
}

// Lookup resolves a field by case-insensitive name.
func (s *Schema[T]) Lookup(name string) (*Field[T], bool) {
	f, ok := s.fields[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Names returns the registered field names in registration order.
func (s *Schema[T]) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Schema[T]) Text(name, column string, get func(T) string) *Schema[T] {
	return s.add(name, column, KindString, false, func(r T) (any, bool) { return get(r), true })
}

func (s *Schema[T]) TextPtr(name, column string, get func(T) *string) *Schema[T] {
	return s.add(name, column, KindString, true, func(r T) (any, bool) {
		if v := get(r); v != nil {
			return *v, true
		}
		return nil, false
	})
}

// Int registers a 32-bit integer field.
func (s *Schema[T]) Int(name, column string, get func(T) int) *Schema[T] {
	return s.add(name, column, KindInt, false, func(r T) (any, bool) { return int64(get(r)), true })
}

func (s *Schema[T]) Int64(name, column string, get func(T) int64) *Schema[T] {
	return s.add(name, column, KindInt64, false, func(r T) (any, bool) { return get(r), true })
}

func (s *Schema[T]) Decimal(name, column string, get func(T) decimal.Decimal) *Schema[T] {
	return s.add(name, column, KindDecimal, false, func(r T) (any, bool) { return get(r), true })
}

func (s *Schema[T]) Float64(name, column string, get func(T) float64) *Schema[T] {
	return s.add(name, column, KindFloat64, false, func(r T) (any, bool) { return get(r), true })
}

func (s *Schema[T]) Float32(name, column string, get func(T) float32) *Schema[T] {
	return s.add(name, column, KindFloat32, false, func(r T) (any, bool) { return float64(get(r)), true })
}

func (s *Schema[T]) Bool(name, column string, get func(T) bool) *Schema[T] {
	return s.add(name, column, KindBool, false, func(r T) (any, bool) { return get(r), true })
}

// Date registers a calendar date field; the time of day is ignored.
func (s *Schema[T]) Date(name, column string, get func(T) time.Time) *Schema[T] {
	return s.add(name, column, KindDate, false, func(r T) (any, bool) { return dateOnly(get(r)), true })
}

func (s *Schema[T]) DatePtr(name, column string, get func(T) *time.Time) *Schema[T] {
	return s.add(name, column, KindDate, true, func(r T) (any, bool) {
		if v := get(r); v != nil {
			return dateOnly(*v), true
		}
		return nil, false
	})
}

func (s *Schema[T]) Time(name, column string, get func(T) time.Time) *Schema[T] {
	return s.add(name, column, KindTime, false, func(r T) (any, bool) { return get(r).UTC(), true })
}

func (s *Schema[T]) TimePtr(name, column string, get func(T) *time.Time) *Schema[T] {
	return s.add(name, column, KindTime, true, func(r T) (any, bool) {
		if v := get(r); v != nil {
			return v.UTC(), true
		}
		return nil, false
	})
}

func (s *Schema[T]) UUID(name, column string, get func(T) uuid.UUID) *Schema[T] {
	return s.add(name, column, KindUUID, false, func(r T) (any, bool) { return get(r), true })
}

func (s *Schema[T]) UUIDPtr(name, column string, get func(T) *uuid.UUID) *Schema[T] {
	return s.add(name, column, KindUUID, true, func(r T) (any, bool) {
		if v := get(r); v != nil {
			return *v, true
		}
		return nil, false
	})
}

// Enum registers a field whose values are the ordinals of names. The store
// keeps the name; ordering compares ordinals.
func (s *Schema[T]) Enum(name, column string, names []string, get func(T) int) *Schema[T] {
	s.add(name, column, KindEnum, false, func(r T) (any, bool) { return get(r), true })
	s.fields[strings.ToLower(name)].Enum = names
	return s
}

// Searchable marks the text fields matched by a free-text search term.
func (s *Schema[T]) Searchable(names ...string) *Schema[T] {
	for _, n := range names {
		if f, ok := s.Lookup(n); ok && f.Kind == KindString {
			s.searchable = append(s.searchable, f)
		}
	}
	return s
}

// DefaultSort names the field sorted descending when a request has no sort keys.
func (s *Schema[T]) DefaultSort(name string) *Schema[T] {
	if f, ok := s.Lookup(name); ok {
		s.defaultSort = f
	}
	return s
}

// Key sets the column used as the final SQL tie-breaker.
func (s *Schema[T]) Key(column string) *Schema[T] {
	s.keyColumn = column
	return s
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
