package vals

// Table is a list of rows sharing a set of named columns. Cells missing
// from a row are null.
type Table struct {
	headers []string
	rows    [][]Value
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Headers returns the column names in order. The returned slice is shared;
// callers must not modify it.
func (t *Table) Headers() []string { return t.headers }

// Rows returns the row cells. The returned slices are shared; callers must
// not modify them.
func (t *Table) Rows() [][]Value { return t.rows }

// InsertMap appends one row built from a map. Keys matching an existing
// column fill that column; new keys add a column, backfilled with null for
// earlier rows.
func (t *Table) InsertMap(m *Map) {
	row := make([]Value, len(t.headers))
	m.Each(func(key string, v Value) bool {
		for i, header := range t.headers {
			if header == key {
				row[i] = v
				return true
			}
		}
		t.addColumn(key)
		row = append(row, v)
		return true
	})
	t.rows = append(t.rows, row)
}

func (t *Table) addColumn(name string) {
	t.headers = append(t.headers, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, header := range t.headers {
		if header == name {
			return true
		}
	}
	return false
}

// Column returns all cells of the named column as a list.
func (t *Table) Column(name string) (*List, error) {
	col := -1
	for i, header := range t.headers {
		if header == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, &ColumnError{Name: name}
	}
	items := make([]Value, len(t.rows))
	for i, row := range t.rows {
		items[i] = row[col]
	}
	return NewList(items...), nil
}

// Row returns the i-th row as a map. The index must be in bounds; use
// AsIndex to normalize first.
func (t *Table) Row(i int) *Map {
	m := NewMap()
	for col, header := range t.headers {
		m.Set(header, t.rows[i][col])
	}
	return m
}
