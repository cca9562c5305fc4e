package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// placeholder binds an argument and returns its positional marker.
type placeholder func(arg any) string

// condition renders one WHERE predicate, binding its arguments in order.
type condition func(bind placeholder) string

// SortField is one ORDER BY term. Field is a view or column name resolved
// through the projection.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// Builder accumulates filter conditions and ordering for a projection.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for the projection. defaultSort applies when
// no valid client sort is set.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// ParseSortFields parses "paper_title,-created_at" style sort strings. A
// leading "-" sorts descending. Empty terms are skipped.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		field, desc := strings.CutPrefix(part, "-")
		if field == "" {
			continue
		}
		fields = append(fields, SortField{Field: field, Descending: desc})
	}
	return fields
}

// OrderByFields sets the client sort. Fields the projection does not know
// are dropped when the query is built.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bind placeholder) string {
		return col + " = " + bind(value)
	})
}

// WhereEqualsFold adds a case-insensitive equality condition. Nil and empty
// values are ignored.
func (b *Builder) WhereEqualsFold(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bind placeholder) string {
		return "LOWER(" + col + ") = LOWER(" + bind(*value) + ")"
	})
}

// WhereContains adds an ILIKE substring condition. Nil and empty values are
// ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.Column(field)
	pattern := contains(*value)
	return b.where(func(bind placeholder) string {
		return col + " ILIKE " + bind(pattern)
	})
}

// WhereSearch matches the search text against any of the fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}
	pattern := contains(*search)
	return b.where(func(bind placeholder) string {
		clauses := make([]string, len(cols))
		for i, col := range cols {
			clauses[i] = col + " ILIKE " + bind(pattern)
		}
		return "(" + strings.Join(clauses, " OR ") + ")"
	})
}

// Build returns the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.buildWhere()
	return b.selectFrom() + where + b.buildOrderBy(), args
}

// BuildCount returns a COUNT(*) over the filtered rows.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage returns the filtered, ordered SELECT for a 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.buildWhere()
	offset := max(page-1, 0) * pageSize
	sql := fmt.Sprintf("%s%s%s LIMIT %d OFFSET %d",
		b.selectFrom(), where, b.buildOrderBy(), pageSize, offset)
	return sql, args
}

// BuildSingle returns a SELECT of the row whose idField equals id.
// Builder conditions are not applied.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := b.selectFrom() + " WHERE " + b.projection.Column(idField) + " = $1"
	return sql, []any{id}
}

// BuildSingleOrNull returns the first row matching the conditions.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	where, args := b.buildWhere()
	return b.selectFrom() + where + " LIMIT 1", args
}

func (b *Builder) where(c condition) *Builder {
	b.conditions = append(b.conditions, c)
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	bind := func(arg any) string {
		args = append(args, arg)
		return "$" + strconv.Itoa(len(args))
	}

	clauses := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		clauses[i] = c(bind)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) buildOrderBy() string {
	terms := b.orderTerms(b.sort)
	if len(terms) == 0 {
		terms = b.orderTerms(b.defaultSort)
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func (b *Builder) orderTerms(fields []SortField) []string {
	var terms []string
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			col += " DESC"
		} else {
			col += " ASC"
		}
		terms = append(terms, col)
	}
	return terms
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
