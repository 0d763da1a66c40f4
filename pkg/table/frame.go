package table

// Frame is a minimal labeled table: named columns over rows of arbitrary
// cell values. It satisfies [Labeled], so [Normalize] keeps its column
// names as the weight and stage names.
type Frame struct {
	columns []string
	rows    [][]any
}

// NewFrame returns a frame over columns and rows. The slices are not copied.
func NewFrame(columns []string, rows [][]any) *Frame {
	return &Frame{columns: columns, rows: rows}
}

// Columns returns the column names.
func (f *Frame) Columns() []string { return f.columns }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Row returns the cells of row i.
func (f *Frame) Row(i int) []any { return f.rows[i] }

var _ Labeled = (*Frame)(nil)
