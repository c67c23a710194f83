package wire

import "strings"

// Array is a rectangular, row-major grid of wire values.
// Ragged input rows are padded with Missing at construction.
type Array struct {
	cells []Value
	rows  int
	cols  int
}

// NewArray builds an Array from rows, padding short rows with Missing.
func NewArray(rows [][]Value) *Array {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	a := &Array{
		cells: make([]Value, len(rows)*cols),
		rows:  len(rows),
		cols:  cols,
	}
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			v := Missing
			if j < len(r) && r[j] != nil {
				v = r[j]
			}
			a.cells[i*cols+j] = v
		}
	}
	return a
}

// NewGrid creates a rows x cols array filled with Missing.
func NewGrid(rows, cols int) *Array {
	if rows < 0 || cols < 0 {
		rows, cols = 0, 0
	}
	a := &Array{cells: make([]Value, rows*cols), rows: rows, cols: cols}
	for i := range a.cells {
		a.cells[i] = Missing
	}
	return a
}

// Row builds a 1 x n array.
func Row(values ...Value) *Array {
	return NewArray([][]Value{values})
}

// Scalar returns the only cell of a 1 x 1 array, or v itself.
func Scalar(v Value) Value {
	if a, ok := v.(*Array); ok && a != nil && a.rows == 1 && a.cols == 1 {
		return a.cells[0]
	}
	return v
}

// Column builds an n x 1 array.
func Column(values ...Value) *Array {
	rows := make([][]Value, len(values))
	for i, v := range values {
		rows[i] = []Value{v}
	}
	return NewArray(rows)
}

func (*Array) Kind() Kind { return KindArray }

// Rows returns the number of rows.
func (a *Array) Rows() int { return a.rows }

// Cols returns the number of columns.
func (a *Array) Cols() int { return a.cols }

// Len returns the number of cells.
func (a *Array) Len() int { return len(a.cells) }

// At returns the cell at 0-indexed row r, column c.
func (a *Array) At(r, c int) Value {
	if r < 0 || r >= a.rows || c < 0 || c >= a.cols {
		return Missing
	}
	return a.cells[r*a.cols+c]
}

// Cells returns the cells in row-major order. The slice must not be modified.
func (a *Array) Cells() []Value { return a.cells }

// IsVector reports whether the array has a single row or a single column.
func (a *Array) IsVector() bool { return a.rows <= 1 || a.cols <= 1 }

func (a *Array) set(r, c int, v Value) {
	a.cells[r*a.cols+c] = v
}

// Builder fills a grid cell by cell before publishing it as an Array.
type Builder struct {
	arr *Array
}

// NewBuilder starts a rows x cols grid filled with Missing.
func NewBuilder(rows, cols int) *Builder {
	return &Builder{arr: NewGrid(rows, cols)}
}

// Set stores v at (r, c). Out-of-range positions are ignored.
func (b *Builder) Set(r, c int, v Value) {
	if r < 0 || r >= b.arr.rows || c < 0 || c >= b.arr.cols {
		return
	}
	if v == nil {
		v = Missing
	}
	b.arr.set(r, c, v)
}

// Build returns the finished array. The builder must not be used afterwards.
func (b *Builder) Build() *Array {
	a := b.arr
	b.arr = nil
	return a
}

// Equal reports whether both arrays have the same shape and cells.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i := range a.cells {
		if !Equal(a.cells[i], b.cells[i]) {
			return false
		}
	}
	return true
}

func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for r := 0; r < a.rows; r++ {
		if r > 0 {
			b.WriteByte(';')
		}
		for c := 0; c < a.cols; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			v := a.At(r, c)
			if t, ok := v.(Text); ok {
				b.WriteString(`"` + string(t) + `"`)
			} else {
				b.WriteString(v.String())
			}
		}
	}
	b.WriteByte('}')
	return b.String()
}
