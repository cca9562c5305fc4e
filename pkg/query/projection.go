// Package query builds parameterized Postgres queries over a projected table.
package query

import (
	"strings"
)

type column struct {
	name string
	view string
}

// ProjectionMap binds a table to the columns read from it. Each column is
// addressable by its view name ("PaperTitle") or its database name
// ("paper_title").
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns []column
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
	}
}

// Project appends a column and the view name it is exposed as. Columns are
// selected in projection order.
func (p *ProjectionMap) Project(name, view string) *ProjectionMap {
	p.columns = append(p.columns, column{name: name, view: view})
	return p
}

// From returns the table reference with its alias.
func (p *ProjectionMap) From() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Lookup resolves a view or column name to its alias-qualified column.
// View names match without regard to case.
func (p *ProjectionMap) Lookup(field string) (string, bool) {
	for _, c := range p.columns {
		if strings.EqualFold(c.view, field) || c.name == field {
			return p.qualify(c.name), true
		}
	}
	return "", false
}

// Column resolves a field known to the caller at compile time. Unmapped
// fields are returned as given, so raw SQL expressions pass through.
// Input from clients must go through Lookup instead.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.Lookup(field); ok {
		return col
	}
	return field
}

// Columns returns the qualified select list.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.columns))
	for i, c := range p.columns {
		cols[i] = p.qualify(c.name)
	}
	return strings.Join(cols, ", ")
}

// Returning returns the unqualified column list for INSERT and UPDATE
// RETURNING clauses, in the same order as Columns.
func (p *ProjectionMap) Returning() string {
	cols := make([]string, len(p.columns))
	for i, c := range p.columns {
		cols[i] = c.name
	}
	return strings.Join(cols, ", ")
}

func (p *ProjectionMap) qualify(name string) string {
	return p.alias + "." + name
}
