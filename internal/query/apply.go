package query

// Apply runs req against an in-memory record set: filter, count, sort,
// paginate, then project each record of the page.
func Apply[T, R any](schema *Schema[T], records []T, req Request, project func(T) R) PagedResult[R] {
	return ApplyPlan(schema.Plan(req), records, project)
}

// ApplyPlan is Apply for an already resolved plan. records is not modified.
func ApplyPlan[T, R any](p *Plan[T], records []T, project func(T) R) PagedResult[R] {
	matched := make([]T, 0, len(records))
	for _, rec := range records {
		if p.Match(rec) {
			matched = append(matched, rec)
		}
	}
	total := len(matched)

	p.Sort(matched)

	start := total
	if p.pageNumber-1 <= total/p.pageSize {
		start = min(p.Offset(), total)
	}
	end := min(start+p.pageSize, total)

	items := make([]R, 0, end-start)
	for _, rec := range matched[start:end] {
		items = append(items, project(rec))
	}
	return NewPagedResult(items, total, p.pageNumber, p.pageSize)
}
