// Package dataset provides the typed table model and the delimited-text
// codec used at the ingestion boundary.
package dataset

import (
	"fmt"
	"strconv"
)

// Kind distinguishes numeric columns from everything else.
type Kind int

const (
	Numeric Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

// Column is a single named column. Exactly one of Nums/Strs is
// populated, according to Kind.
type Column struct {
	Name string
	Kind Kind
	Nums []float64
	Strs []string
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// Table is a rectangular, fully-populated set of named columns.
type Table struct {
	Columns []Column
}

// Rows returns the record count.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Lookup finds a column by exact name.
func (t *Table) Lookup(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumnNames returns the names of all numeric columns, in
// table order.
func (t *Table) NumericColumnNames() []string {
	var names []string
	for i := range t.Columns {
		if t.Columns[i].Kind == Numeric {
			names = append(names, t.Columns[i].Name)
		}
	}
	return names
}

// AppendNumericColumn adds a numeric column to the right of the table.
func (t *Table) AppendNumericColumn(name string, vals []float64) error {
	if len(t.Columns) > 0 && len(vals) != t.Rows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(vals), t.Rows())
	}
	t.Columns = append(t.Columns, Column{Name: name, Kind: Numeric, Nums: vals})
	return nil
}

// AppendTextColumn adds a text column to the right of the table.
func (t *Table) AppendTextColumn(name string, vals []string) error {
	if len(t.Columns) > 0 && len(vals) != t.Rows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(vals), t.Rows())
	}
	t.Columns = append(t.Columns, Column{Name: name, Kind: Text, Strs: vals})
	return nil
}

// Records renders the table as one map per row, for JSON responses and
// document storage. Numeric cells stay float64 so encoding is lossless.
func (t *Table) Records() []map[string]any {
	records := make([]map[string]any, t.Rows())
	for i := range records {
		rec := make(map[string]any, len(t.Columns))
		for j := range t.Columns {
			col := &t.Columns[j]
			if col.Kind == Numeric {
				rec[col.Name] = col.Nums[i]
			} else {
				rec[col.Name] = col.Strs[i]
			}
		}
		records[i] = rec
	}
	return records
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i := range t.Columns {
		src := &t.Columns[i]
		dst := Column{Name: src.Name, Kind: src.Kind}
		if src.Kind == Numeric {
			dst.Nums = append([]float64(nil), src.Nums...)
		} else {
			dst.Strs = append([]string(nil), src.Strs...)
		}
		out.Columns[i] = dst
	}
	return out
}

// FormatValue renders a cell as text. The 'g' format round-trips
// float64 values exactly through ParseFloat.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
