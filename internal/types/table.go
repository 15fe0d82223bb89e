package types

import (
	"slices"
	"strings"
)

// Record is one row keyed by column name. A cell that is absent or blank
// after trimming is treated as null.
type Record map[string]string

// Value returns the trimmed cell and whether it is non-null.
func (r Record) Value(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// IsNull reports whether the cell is absent or blank.
func (r Record) IsNull(col string) bool {
	_, ok := r.Value(col)
	return !ok
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of records belonging to one category.
type Table struct {
	Category Category
	Columns  []string
	Rows     []Record
}

func NewTable(category Category, columns []string) *Table {
	return &Table{
		Category: category,
		Columns:  slices.Clone(columns),
	}
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// EnsureColumn appends the column when it is not already present.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// RenameColumn renames a column in the header and in every row. It is a
// no-op returning false when from is absent or to already exists.
func (t *Table) RenameColumn(from, to string) bool {
	idx := slices.Index(t.Columns, from)
	if idx < 0 || t.HasColumn(to) {
		return false
	}
	t.Columns[idx] = to
	for _, row := range t.Rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
	return true
}

// MissingColumns returns the names in want that the table lacks.
func (t *Table) MissingColumns(want ...string) []string {
	var missing []string
	for _, c := range want {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Clone returns a deep copy so callers can transform without touching the source.
func (t *Table) Clone() *Table {
	out := NewTable(t.Category, t.Columns)
	out.Rows = make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}
