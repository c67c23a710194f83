package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/McLeodMoores/xl4j-sub002/heap"
)

// Value is an immutable foreign value exchanged across the boundary.
type Value interface {
	Kind() Kind
	String() string
}

// Number is a double precision numeric value.
type Number float64

func (Number) Kind() Kind { return KindNumber }

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Text is a string value.
type Text string

func (Text) Kind() Kind { return KindText }

func (t Text) String() string { return string(t) }

// Boolean is a logical value.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }

func (b Boolean) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// Error is a spreadsheet error value.
type Error ErrorKind

func (Error) Kind() Kind { return KindError }

func (e Error) String() string { return ErrorKind(e).String() }

// ErrorKind returns the error code.
func (e Error) ErrorKind() ErrorKind { return ErrorKind(e) }

type missing struct{}

func (missing) Kind() Kind     { return KindMissing }
func (missing) String() string { return "" }

type null struct{}

func (null) Kind() Kind     { return KindNil }
func (null) String() string { return "" }

var (
	// Missing is an argument the caller omitted.
	Missing Value = missing{}
	// Nil is an empty value.
	Nil Value = null{}
)

// Object references a native object on the heap.
type Object struct {
	Type   string
	Handle heap.Handle
}

func (Object) Kind() Kind { return KindObject }

func (o Object) String() string {
	return fmt.Sprintf("%s-%d", o.Type, o.Handle)
}

// Range is a rectangular cell area, 0-indexed and inclusive.
type Range struct {
	RowFirst, RowLast int
	ColFirst, ColLast int
}

func (r Range) String() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", r.RowFirst+1, r.ColFirst+1, r.RowLast+1, r.ColLast+1)
}

// Rows returns the number of rows covered.
func (r Range) Rows() int { return r.RowLast - r.RowFirst + 1 }

// Cols returns the number of columns covered.
func (r Range) Cols() int { return r.ColLast - r.ColFirst + 1 }

// LocalReference is a single range on the current sheet.
type LocalReference struct {
	Range Range
}

func (LocalReference) Kind() Kind { return KindLocalReference }

func (r LocalReference) String() string { return r.Range.String() }

// MultiReference is a set of ranges on a given sheet.
type MultiReference struct {
	Ranges []Range
	Sheet  uint64
}

func (MultiReference) Kind() Kind { return KindMultiReference }

func (r MultiReference) String() string {
	parts := make([]string, len(r.Ranges))
	for i, rg := range r.Ranges {
		parts[i] = rg.String()
	}
	return fmt.Sprintf("[%d]%s", r.Sheet, strings.Join(parts, ","))
}

// Equal reports whether two wire values are the same variant with the same content.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch av := a.(type) {
	case nil:
		return true
	case *Array:
		return av.Equal(b.(*Array))
	case MultiReference:
		bv := b.(MultiReference)
		if av.Sheet != bv.Sheet || len(av.Ranges) != len(bv.Ranges) {
			return false
		}
		for i := range av.Ranges {
			if av.Ranges[i] != bv.Ranges[i] {
				return false
			}
		}
		return true
	case Number:
		bv := b.(Number)
		// NaN never appears on the wire; compare by value
		return av == bv
	default:
		if b == nil {
			return a == Missing
		}
		return a == b
	}
}
