package model

// Table is an in-memory result set. Values are kept in their text form.
type Table struct {
	ID      string
	Columns []string
	Rows    [][]string
}

func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
