// Package tabular defines the canonical tabular result shared by every source.
// Rows are flat column→value mappings; the column set is discovered from the
// payload, ordered once, and uniform across all rows of a table.
package tabular

import (
	"encoding/csv"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Absent marks a column the payload did not supply for a given row. Rows keep
// the column so the table stays rectangular.
const Absent = "NaN"

// Row maps a column name to a scalar value.
type Row map[string]string

// Table is an ordered sequence of rows sharing one column set.
type Table struct {
	columns []string
	seen    map[string]struct{}
	rows    []Row
}

// New creates a table with an optional initial column order.
func New(columns ...string) *Table {
	t := &Table{seen: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// AddColumn appends a column unless it is already present. Column order is
// append order and never changes afterwards.
func (t *Table) AddColumn(name string) {
	if _, ok := t.seen[name]; ok {
		return
	}
	t.seen[name] = struct{}{}
	t.columns = append(t.columns, name)
}

// HasColumn reports whether the column is part of the table.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.seen[name]
	return ok
}

// AddRow appends a row. Keys that name a new column extend the column set;
// values for columns the row lacks are materialized as Absent on read.
func (t *Table) AddRow(row Row) {
	for col := range row {
		t.AddColumn(col)
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the ordered column set.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Row returns row i with every column populated, Absent-filled where the
// payload carried no value.
func (t *Table) Row(i int) Row {
	out := make(Row, len(t.columns))
	for _, col := range t.columns {
		if v, ok := t.rows[i][col]; ok {
			out[col] = v
		} else {
			out[col] = Absent
		}
	}
	return out
}

// Rows returns all rows in order, each with the full column set.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// AddDerivedBefore computes a new column from each existing row and inserts
// it before the named column, or at the end when that column does not exist.
// The function receives the row's present values; columns the payload did not
// supply are missing from the map.
func (t *Table) AddDerivedBefore(before, name string, fn func(Row) string) {
	if _, ok := t.seen[name]; ok {
		return
	}
	t.seen[name] = struct{}{}
	inserted := false
	for i, col := range t.columns {
		if col == before {
			t.columns = append(t.columns[:i], append([]string{name}, t.columns[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		t.columns = append(t.columns, name)
	}
	for _, row := range t.rows {
		row[name] = fn(row)
	}
}

// record flattens row i into column order.
func (t *Table) record(i int) []string {
	rec := make([]string, len(t.columns))
	for j, col := range t.columns {
		if v, ok := t.rows[i][col]; ok {
			rec[j] = v
		} else {
			rec[j] = Absent
		}
	}
	return rec
}

// WriteCSV exports the table as delimited text, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	for i := range t.rows {
		if err := cw.Write(t.record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render writes the table in human-readable form.
func (t *Table) Render(w io.Writer) error {
	tw := tablewriter.NewWriter(w)
	tw.Header(t.Columns())
	for i := range t.rows {
		if err := tw.Append(t.record(i)); err != nil {
			return err
		}
	}
	return tw.Render()
}
