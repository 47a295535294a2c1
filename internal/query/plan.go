package query

import (
	"slices"
	"strings"
)

type sortKey[T any] struct {
	field *Field[T]
	desc  bool
}

// Plan is a Request resolved against a Schema. Filters and sort keys that
// could not be resolved are left out and reported by Ignored.
type Plan[T any] struct {
	schema     *Schema[T]
	conditions []Condition[T]
	search     string
	sorts      []sortKey[T]
	ignored    []string
	pageNumber int
	pageSize   int
}

// Plan resolves req. It never fails; unusable filters and sorts are dropped.
func (s *Schema[T]) Plan(req Request) *Plan[T] {
	p := &Plan[T]{
		schema:     s,
		search:     strings.TrimSpace(req.SearchTerm),
		pageNumber: req.PageNumber,
		pageSize:   req.PageSize,
	}
	if p.pageNumber < 1 {
		p.pageNumber = 1
	}
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	if p.pageSize > MaxPageSize {
		p.pageSize = MaxPageSize
	}

	for _, f := range req.Filters {
		c, ok := s.BuildCondition(f)
		if !ok {
			p.ignored = append(p.ignored, "filter:"+f.Field)
			continue
		}
		p.conditions = append(p.conditions, c)
	}

	if len(req.Sorts) == 0 {
		if s.defaultSort != nil {
			p.sorts = []sortKey[T]{{field: s.defaultSort, desc: true}}
		}
		return p
	}
	for _, srt := range req.Sorts {
		f, ok := s.Lookup(srt.Field)
		if !ok {
			p.ignored = append(p.ignored, "sort:"+srt.Field)
			continue
		}
		p.sorts = append(p.sorts, sortKey[T]{field: f, desc: srt.Direction == Descending})
	}
	return p
}

// Ignored lists the dropped filters and sort keys as "filter:<name>" and
// "sort:<name>".
func (p *Plan[T]) Ignored() []string { return p.ignored }

// Conditions returns the resolved filters.
func (p *Plan[T]) Conditions() []Condition[T] { return p.conditions }

func (p *Plan[T]) PageNumber() int { return p.pageNumber }
func (p *Plan[T]) PageSize() int   { return p.pageSize }

// Offset is the number of records skipped before the current page.
func (p *Plan[T]) Offset() int { return (p.pageNumber - 1) * p.pageSize }

// Match reports whether rec satisfies every condition and the search term.
func (p *Plan[T]) Match(rec T) bool {
	for _, c := range p.conditions {
		if !c.Match(rec) {
			return false
		}
	}
	return p.matchSearch(rec)
}

func (p *Plan[T]) matchSearch(rec T) bool {
	if p.search == "" || len(p.schema.searchable) == 0 {
		return true
	}
	term := strings.ToLower(p.search)
	for _, f := range p.schema.searchable {
		if v, ok := f.get(rec); ok && strings.Contains(strings.ToLower(v.(string)), term) {
			return true
		}
	}
	return false
}

// compare orders two records by the sort keys in list order. Nulls come
// first ascending and last descending.
func (p *Plan[T]) compare(a, b T) int {
	for _, k := range p.sorts {
		av, aok := k.field.get(a)
		bv, bok := k.field.get(b)
		c := compareNullable(k.field.Kind, av, aok, bv, bok)
		if k.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Sort orders records in place with a stable multi-key sort.
func (p *Plan[T]) Sort(records []T) {
	if len(p.sorts) == 0 {
		return
	}
	slices.SortStableFunc(records, p.compare)
}
