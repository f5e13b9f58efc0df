package record

// Schema is an ordered list of Columns, mirroring original_source's
// Schema class minus its table-name/storage bookkeeping (that belongs to
// whatever caller owns the Tree).
type Schema struct {
	Columns []Column
	index   map[string]int
}

// NewSchema validates that no two columns share a name and returns the
// schema ready for Row construction.
func NewSchema(columns []Column) (*Schema, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c.Name]; dup {
			return nil, ErrDuplicateColumn
		}
		index[c.Name] = i
	}
	return &Schema{Columns: columns, index: index}, nil
}

// ColumnIndex returns the position of name within Columns.
func (s *Schema) ColumnIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// RowWidth is the total encoded width of a Row under this schema: the
// sum of every column's declared Width, in order.
func (s *Schema) RowWidth() int {
	total := 0
	for _, c := range s.Columns {
		total += c.Width
	}
	return total
}
