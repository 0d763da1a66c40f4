package table

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/matzehuels/sankey/pkg/errors"
)

// Row is one observation: a weight and one label per stage.
type Row struct {
	Weight float64
	Labels []string
}

// Table is the normalized, row-oriented form of the input. Column 0 of the
// source is the weight; StageNames describe columns 1..N-1 from left to
// right.
type Table struct {
	WeightName string
	StageNames []string
	Rows       []Row
}

// Stages returns the number of stage columns.
func (t *Table) Stages() int { return len(t.StageNames) }

// TotalWeight returns the sum of all row weights.
func (t *Table) TotalWeight() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.Weight
	}
	return sum
}

// Labeled is implemented by frames that expose named columns. Row(i) must
// return one value per column.
type Labeled interface {
	Columns() []string
	Len() int
	Row(i int) []any
}

// Matrix is implemented by unlabeled two-dimensional arrays.
type Matrix interface {
	Dims() (rows, cols int)
	At(i, j int) any
}

// Normalize coerces tabular input into a [Table].
//
// The adapter is chosen by what the input can do, not by its concrete type:
// values with named columns ([Labeled]) keep their column names as stage
// names; [Matrix] values and nested slices or arrays are addressed
// positionally and their stages are named by column index ("1", "2", ...).
// A *Table is validated and returned as is.
//
// Normalize fails with INVALID_SHAPE for non-tabular input, fewer than two
// columns or ragged rows, with INVALID_WEIGHT for negative, NaN, infinite or
// non-numeric weights, and with EMPTY_INPUT when there are no rows.
func Normalize(data any) (*Table, error) {
	switch v := data.(type) {
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidShape, "input is nil")
	case *Table:
		if v == nil {
			return nil, errors.New(errors.ErrCodeInvalidShape, "input is nil")
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		return v, nil
	case Table:
		if err := v.Validate(); err != nil {
			return nil, err
		}
		return &v, nil
	case Labeled:
		return validated(fromLabeled(v))
	case Matrix:
		return validated(fromMatrix(v))
	}
	return validated(fromNested(data))
}

// validated checks the total weight of an adapter's result. Row weights
// are checked while the rows are built.
func validated(t *Table, err error) (*Table, error) {
	if err != nil {
		return nil, err
	}
	if err := t.checkTotal(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the invariants [Normalize] guarantees. It is exported for
// callers that assemble a Table by hand.
func (t *Table) Validate() error {
	if len(t.StageNames) < 1 {
		return errors.New(errors.ErrCodeInvalidShape, "need at least 2 columns (weight and one stage), got %d", len(t.StageNames)+1)
	}
	if len(t.Rows) == 0 {
		return errors.New(errors.ErrCodeEmptyInput, "table has no rows")
	}
	for i, r := range t.Rows {
		if len(r.Labels) != len(t.StageNames) {
			return errors.New(errors.ErrCodeInvalidShape, "row %d: has %d columns, want %d", i, len(r.Labels)+1, len(t.StageNames)+1)
		}
		if err := checkWeight(i, r.Weight); err != nil {
			return err
		}
	}
	return t.checkTotal()
}

// checkTotal rejects tables whose finite weights sum to infinity; layout
// scales by the largest stage total.
func (t *Table) checkTotal() error {
	if w := t.TotalWeight(); math.IsInf(w, 0) {
		return errors.New(errors.ErrCodeInvalidWeight, "total weight overflows: %g", w)
	}
	return nil
}

func fromLabeled(f Labeled) (*Table, error) {
	cols := f.Columns()
	if len(cols) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidShape, "need at least 2 columns (weight and one stage), got %d", len(cols))
	}
	t := &Table{
		WeightName: cols[0],
		StageNames: append([]string(nil), cols[1:]...),
	}
	n := f.Len()
	if n == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "table has no rows")
	}
	t.Rows = make([]Row, 0, n)
	for i := range n {
		row, err := buildRow(i, f.Row(i), len(cols))
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func fromMatrix(m Matrix) (*Table, error) {
	rows, cols := m.Dims()
	if cols < 2 {
		return nil, errors.New(errors.ErrCodeInvalidShape, "need at least 2 columns (weight and one stage), got %d", cols)
	}
	if rows < 0 {
		return nil, errors.New(errors.ErrCodeInvalidShape, "matrix reports %d rows", rows)
	}
	if rows == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "table has no rows")
	}
	t := &Table{WeightName: "0", StageNames: positionalNames(cols)}
	t.Rows = make([]Row, 0, rows)
	cells := make([]any, cols)
	for i := range rows {
		for j := range cols {
			cells[j] = m.At(i, j)
		}
		row, err := buildRow(i, cells, cols)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func fromNested(data any) (*Table, error) {
	v := reflect.ValueOf(data)
	if !isSequence(v) {
		return nil, errors.New(errors.ErrCodeInvalidShape, "input of type %T is not tabular", data)
	}
	if v.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "table has no rows")
	}

	var cols int
	rows := make([][]any, v.Len())
	for i := range v.Len() {
		rv := indirect(v.Index(i))
		if !isSequence(rv) {
			return nil, errors.New(errors.ErrCodeInvalidShape, "row %d: %s is not a sequence", i, rv.Kind())
		}
		cells := make([]any, rv.Len())
		for j := range rv.Len() {
			cells[j] = rv.Index(j).Interface()
		}
		if i == 0 {
			cols = len(cells)
		}
		rows[i] = cells
	}
	if cols < 2 {
		return nil, errors.New(errors.ErrCodeInvalidShape, "need at least 2 columns (weight and one stage), got %d", cols)
	}

	t := &Table{WeightName: "0", StageNames: positionalNames(cols)}
	t.Rows = make([]Row, 0, len(rows))
	for i, cells := range rows {
		row, err := buildRow(i, cells, cols)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func buildRow(i int, cells []any, cols int) (Row, error) {
	if len(cells) != cols {
		return Row{}, errors.New(errors.ErrCodeInvalidShape, "row %d: has %d columns, want %d", i, len(cells), cols)
	}
	w, err := parseWeight(i, cells[0])
	if err != nil {
		return Row{}, err
	}
	labels := make([]string, cols-1)
	for j, c := range cells[1:] {
		labels[j] = Label(c)
	}
	return Row{Weight: w, Labels: labels}, nil
}

// Label returns the display form of a cell value. Labels compare equal
// exactly when their display forms do.
func Label(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return fmt.Sprint(v)
}

func parseWeight(i int, v any) (float64, error) {
	var w float64
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidWeight, err, "row %d: weight %q is not numeric", i, x.String())
		}
		w = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeInvalidWeight, "row %d: weight %q is not numeric", i, x)
		}
		w = f
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			w = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			w = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			w = rv.Float()
		default:
			return 0, errors.New(errors.ErrCodeInvalidWeight, "row %d: weight of type %T is not numeric", i, v)
		}
	}
	return w, checkWeight(i, w)
}

func checkWeight(i int, w float64) error {
	switch {
	case math.IsNaN(w):
		return errors.New(errors.ErrCodeInvalidWeight, "row %d: weight is NaN", i)
	case math.IsInf(w, 0):
		return errors.New(errors.ErrCodeInvalidWeight, "row %d: weight is infinite", i)
	case w < 0:
		return errors.New(errors.ErrCodeInvalidWeight, "row %d: negative weight %g", i, w)
	}
	return nil
}

func positionalNames(cols int) []string {
	names := make([]string, cols-1)
	for j := range names {
		names[j] = strconv.Itoa(j + 1)
	}
	return names
}

func isSequence(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	k := v.Kind()
	if k != reflect.Slice && k != reflect.Array {
		return false
	}
	// A string is a sequence of bytes, not a row.
	return !(k == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8)
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}
