package query

import (
	"strconv"
	"strings"
)

// Builder assembles a parameterised Postgres SELECT. Conditions use "?"
// placeholders which are numbered ($1, $2, ...) as they are added.
type Builder struct {
	columns []string
	table   string
	where   []string
	orderBy []string
	limit   int
	offset  int
	args    []any
}

func NewBuilder(table string, columns ...string) *Builder {
	return &Builder{table: table, columns: columns}
}

// Where ANDs a condition. Each "?" in cond is bound to the next arg.
func (b *Builder) Where(cond string, args ...any) *Builder {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(cond); i++ {
		if cond[i] == '?' && next < len(args) {
			b.args = append(b.args, args[next])
			next++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(len(b.args)))
			continue
		}
		sb.WriteByte(cond[i])
	}
	b.where = append(b.where, sb.String())
	return b
}

func (b *Builder) OrderBy(expr string) *Builder {
	b.orderBy = append(b.orderBy, expr)
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.offset = n
	return b
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any { return b.args }

func (b *Builder) Build() (string, []any) {
	var q strings.Builder

	q.WriteString("SELECT ")
	if len(b.columns) == 0 {
		q.WriteString("*")
	} else {
		q.WriteString(strings.Join(b.columns, ", "))
	}
	q.WriteString(" FROM " + b.table)
	b.writeWhere(&q)

	if len(b.orderBy) > 0 {
		q.WriteString(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		q.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		q.WriteString(" OFFSET " + strconv.Itoa(b.offset))
	}
	return q.String(), b.args
}

// BuildCount renders SELECT COUNT(*) with the same WHERE clause.
func (b *Builder) BuildCount() (string, []any) {
	var q strings.Builder
	q.WriteString("SELECT COUNT(*) FROM " + b.table)
	b.writeWhere(&q)
	return q.String(), b.args
}

func (b *Builder) writeWhere(q *strings.Builder) {
	if len(b.where) == 0 {
		return
	}
	q.WriteString(" WHERE ")
	for i, w := range b.where {
		if i > 0 {
			q.WriteString(" AND ")
		}
		if len(b.where) > 1 {
			q.WriteString("(" + w + ")")
		} else {
			q.WriteString(w)
		}
	}
}
