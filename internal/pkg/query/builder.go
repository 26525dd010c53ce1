package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

type orderTerm struct {
	column string
	dir    Direction
}

// Builder constructs SELECT statements for Cloud Spanner. Every method
// returns a copy, so a base builder can be shared between the row query and
// its COUNT(*) variant.
type Builder struct {
	table        string
	selectCols   []string
	whereClauses []Condition
	orderBy      []orderTerm
	limitVal     int64
	offsetVal    int64
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends columns to the projection.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// Where adds a condition. Multiple conditions are combined with AND.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.whereClauses = append(nb.whereClauses, condition)
	return nb
}

// OrderBy replaces the sort order with a single column.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = []orderTerm{{column: column, dir: direction}}
	return nb
}

// ThenBy appends a tie-breaking sort column.
func (b *Builder) ThenBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{column: column, dir: direction})
	return nb
}

// Limit sets the maximum number of rows to return.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offsetVal = offset
	return nb
}

// Count returns a COUNT(*) builder with the same FROM and WHERE clauses.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.orderBy = nil
	nb.limitVal = 0
	nb.offsetVal = 0
	return nb
}

// Build renders the final spanner.Statement.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)
	b.writeWhere(&sql, params)

	if len(b.orderBy) > 0 {
		terms := make([]string, 0, len(b.orderBy))
		for _, t := range b.orderBy {
			dir := "ASC"
			if t.dir == Desc {
				dir = "DESC"
			}
			terms = append(terms, t.column+" "+dir)
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}

	if b.limitVal > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = b.limitVal
	}

	if b.offsetVal > 0 {
		sql.WriteString(" OFFSET @offset")
		params["offset"] = b.offsetVal
	}

	return spanner.Statement{
		SQL:    sql.String(),
		Params: params,
	}
}

// BuildDelete renders a DML DELETE with the same table and WHERE clauses.
// Projection, order and limit are ignored. A builder without conditions
// renders WHERE true, as Spanner requires a WHERE clause on DELETE.
func (b *Builder) BuildDelete() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("DELETE FROM ")
	sql.WriteString(b.table)
	if len(b.whereClauses) == 0 {
		sql.WriteString(" WHERE true")
	}
	b.writeWhere(&sql, params)

	return spanner.Statement{
		SQL:    sql.String(),
		Params: params,
	}
}

func (b *Builder) writeWhere(sql *strings.Builder, params map[string]interface{}) {
	if len(b.whereClauses) == 0 {
		return
	}
	sql.WriteString(" WHERE ")
	parts := make([]string, 0, len(b.whereClauses))
	paramIndex := 0
	for _, condition := range b.whereClauses {
		fragment, condParams := condition.SQL(paramIndex)
		parts = append(parts, fragment)
		for k, v := range condParams {
			params[k] = v
		}
		paramIndex += len(condParams)
	}
	sql.WriteString(strings.Join(parts, " AND "))
}

func (b *Builder) clone() *Builder {
	nb := &Builder{
		table:     b.table,
		limitVal:  b.limitVal,
		offsetVal: b.offsetVal,
	}
	nb.selectCols = append([]string(nil), b.selectCols...)
	nb.whereClauses = append([]Condition(nil), b.whereClauses...)
	nb.orderBy = append([]orderTerm(nil), b.orderBy...)
	return nb
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}
