package dataprocessing

// Schema is the ordered column header of a parsed export. Columns are
// addressed by position; names are only an index into those positions.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a schema from header cells. When a name repeats, the
// first column with that name wins name lookups.
func NewSchema(columns []string) *Schema {
	s := &Schema{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range s.columns {
		if _, exists := s.index[name]; !exists {
			s.index[name] = i
		}
	}
	return s
}

// Columns returns a copy of the header cells.
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of header columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Name returns the header of column i, or "" when out of range.
func (s *Schema) Name(i int) string {
	if i < 0 || i >= len(s.columns) {
		return ""
	}
	return s.columns[i]
}

// Index returns the position of the named column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// RawRecord is one source row. Values are positional and aligned with the
// schema; a record may hold more values than the schema has columns.
type RawRecord struct {
	schema *Schema
	values []string
}

// NewRawRecord pads values to the schema width.
func NewRawRecord(schema *Schema, values []string) RawRecord {
	n := len(values)
	if schema != nil && schema.Len() > n {
		n = schema.Len()
	}
	padded := make([]string, n)
	copy(padded, values)
	return RawRecord{schema: schema, values: padded}
}

// Get returns the value under the named column. ok is false when the
// schema has no such column.
func (r RawRecord) Get(name string) (string, bool) {
	if r.schema == nil {
		return "", false
	}
	i, ok := r.schema.Index(name)
	if !ok {
		return "", false
	}
	return r.At(i), true
}

// At returns the value at position i, or "" when out of range.
func (r RawRecord) At(i int) string {
	if i < 0 || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// Len returns the number of positional values.
func (r RawRecord) Len() int {
	return len(r.values)
}

// Values returns a copy of the positional values.
func (r RawRecord) Values() []string {
	return append([]string(nil), r.values...)
}

// Table is a parsed export: a header and its records in source order.
type Table struct {
	Schema  *Schema
	Records []RawRecord
}

// NewTable builds a table from a header and raw value rows.
func NewTable(header []string, rows [][]string) *Table {
	schema := NewSchema(header)
	t := &Table{
		Schema:  schema,
		Records: make([]RawRecord, 0, len(rows)),
	}
	for _, row := range rows {
		t.Records = append(t.Records, NewRawRecord(schema, row))
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
