package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(prefix, value, suffix string) string {
	return prefix + likeEscaper.Replace(value) + suffix
}

func column[T any](f *Field[T]) string {
	return pq.QuoteIdentifier(f.Column)
}

// ordinal renders an enum column as its ordinal so range operators and
// ORDER BY follow declaration order rather than name order.
func ordinal[T any](f *Field[T]) string {
	var sb strings.Builder
	sb.WriteString("CASE " + column(f))
	for i, name := range f.Enum {
		sb.WriteString(" WHEN " + pq.QuoteLiteral(name) + " THEN " + strconv.Itoa(i))
	}
	sb.WriteString(" END")
	return sb.String()
}

// operand renders a placeholder with the cast its kind needs and the
// driver value bound to it.
func operand[T any](f *Field[T], v any) (string, any) {
	switch f.Kind {
	case KindDecimal:
		return "?::numeric", v.(decimal.Decimal).String()
	case KindUUID:
		return "?::uuid", v.(uuid.UUID).String()
	case KindDate:
		return "?::date", v.(time.Time)
	case KindTime:
		return "?::timestamptz", v.(time.Time)
	case KindEnum:
		return "?", f.Enum[v.(int)]
	}
	return "?", v
}

// SQL renders the condition as a boolean expression with "?" placeholders,
// matching the null semantics of Match.
func (c Condition[T]) SQL() (string, []any) {
	f := c.field
	col := column(f)

	switch c.op {
	case IsNull:
		return col + " IS NULL", nil
	case IsNotNull:
		return col + " IS NOT NULL", nil
	case IsEmpty:
		return "(" + col + " IS NULL OR " + col + " = '')", nil
	case IsNotEmpty:
		return "(" + col + " IS NOT NULL AND " + col + " <> '')", nil
	case Contains:
		return col + ` LIKE ? ESCAPE '\'`, []any{likePattern("%", c.value.(string), "%")}
	case NotContains:
		return "(" + col + " IS NULL OR " + col + ` NOT LIKE ? ESCAPE '\')`, []any{likePattern("%", c.value.(string), "%")}
	case StartsWith:
		return col + ` LIKE ? ESCAPE '\'`, []any{likePattern("", c.value.(string), "%")}
	case EndsWith:
		return col + ` LIKE ? ESCAPE '\'`, []any{likePattern("%", c.value.(string), "")}
	case Equals:
		ph, arg := operand(f, c.value)
		return col + " = " + ph, []any{arg}
	case NotEquals:
		ph, arg := operand(f, c.value)
		return "(" + col + " IS NULL OR " + col + " <> " + ph + ")", []any{arg}
	case In, NotIn:
		phs := make([]string, 0, len(c.values))
		args := make([]any, 0, len(c.values))
		for _, v := range c.values {
			ph, arg := operand(f, v)
			phs = append(phs, ph)
			args = append(args, arg)
		}
		list := "(" + strings.Join(phs, ", ") + ")"
		if c.op == In {
			return col + " IN " + list, args
		}
		return "(" + col + " IS NULL OR " + col + " NOT IN " + list + ")", args
	}

	lhs := col
	ph, arg := operand(f, c.value)
	if f.Kind == KindEnum {
		lhs, ph, arg = ordinal(f), "?", c.value
	}
	switch c.op {
	case GreaterThan:
		return lhs + " > " + ph, []any{arg}
	case GreaterThanOrEqual:
		return lhs + " >= " + ph, []any{arg}
	case LessThan:
		return lhs + " < " + ph, []any{arg}
	case LessThanOrEqual:
		return lhs + " <= " + ph, []any{arg}
	case Between:
		ph2, arg2 := operand(f, c.to)
		if f.Kind == KindEnum {
			ph2, arg2 = "?", c.to
		}
		return lhs + " BETWEEN " + ph + " AND " + ph2, []any{arg, arg2}
	}
	return "FALSE", nil
}

// WhereSQL adds the resolved conditions and the search term to b.
func (p *Plan[T]) WhereSQL(b *Builder) *Builder {
	for _, c := range p.conditions {
		cond, args := c.SQL()
		b.Where(cond, args...)
	}
	if p.search != "" && len(p.schema.searchable) > 0 {
		pattern := likePattern("%", p.search, "%")
		parts := make([]string, 0, len(p.schema.searchable))
		args := make([]any, 0, len(p.schema.searchable))
		for _, f := range p.schema.searchable {
			parts = append(parts, column(f)+` ILIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		b.Where(strings.Join(parts, " OR "), args...)
	}
	return b
}

// OrderSQL adds the sort keys to b, followed by the schema key column so
// that page boundaries are deterministic.
func (p *Plan[T]) OrderSQL(b *Builder) *Builder {
	for _, k := range p.sorts {
		expr := column(k.field)
		if k.field.Kind == KindEnum {
			expr = ordinal(k.field)
		}
		if k.desc {
			b.OrderBy(expr + " DESC NULLS LAST")
		} else {
			b.OrderBy(expr + " ASC NULLS FIRST")
		}
	}
	if p.schema.keyColumn != "" {
		b.OrderBy(pq.QuoteIdentifier(p.schema.keyColumn) + " ASC")
	}
	return b
}

// PageSQL adds LIMIT and OFFSET for the requested page.
func (p *Plan[T]) PageSQL(b *Builder) *Builder {
	return b.Limit(p.pageSize).Offset(p.Offset())
}

// ApplySQL adds filtering, ordering and paging to b.
func (p *Plan[T]) ApplySQL(b *Builder) *Builder {
	return p.PageSQL(p.OrderSQL(p.WhereSQL(b)))
}
