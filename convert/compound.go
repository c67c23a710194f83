package convert

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

func elemPath(i int) []string {
	return []string{"[" + strconv.Itoa(i) + "]"}
}

// convertCell converts one array cell to native, wrapping failures with the cell index.
func convertCell(l Lookup, i int, cell wire.Value, native typedesc.Descriptor) (reflect.Value, error) {
	v, err := FromWireValue(l, cell, native)
	if err != nil {
		return reflect.Value{}, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			Path(elemPath(i)...).
			GoType(native.String()).
			WireType(wire.KindOf(cell).String()).
			Cause(err).
			Build()
	}
	return valueOf(v, native.GoType()), nil
}

// valueOf returns v as a reflect.Value of type t, using the zero value for nil.
func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != t && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t)
	}
	return rv
}

func isArrayOf(native typedesc.Descriptor) (typedesc.Descriptor, bool) {
	a, ok := native.(typedesc.ArrayOf)
	if !ok {
		return nil, false
	}
	return a.Elem, true
}

// vector converts Array to and from one-dimensional slices. Input arrays of
// any shape are read in row-major order; output is a single row.
type vector struct{}

func (vector) Name() string        { return "vector" }
func (vector) WireKind() wire.Kind { return wire.KindArray }

func vectorPriority(native typedesc.Descriptor) (int, bool) {
	elem, ok := isArrayOf(native)
	if !ok {
		return 0, false
	}
	if _, nested := isArrayOf(elem); nested {
		return 0, false
	}
	return 10, true
}

func (vector) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind != wire.KindArray {
		return 0, false
	}
	return vectorPriority(native)
}

func (vector) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	return vectorPriority(native)
}

func (vector) FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	arr, ok := v.(*wire.Array)
	if !ok {
		return nil, mismatch(native, v)
	}
	elem, _ := isArrayOf(native)
	cells := arr.Cells()
	out := reflect.MakeSlice(native.GoType(), len(cells), len(cells))
	for i, cell := range cells {
		cv, err := convertCell(l, i, cell, elem)
		if err != nil {
			return nil, err
		}
		out.Index(i).Set(cv)
	}
	return out.Interface(), nil
}

func (vector) ToWire(l Lookup, v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	row := make([]wire.Value, rv.Len())
	for i := range row {
		wv, err := ToWireValue(l, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		row[i] = wv
	}
	return wire.Row(row...), nil
}

// grid converts Array to and from two-dimensional slices.
type grid struct{}

func (grid) Name() string        { return "grid" }
func (grid) WireKind() wire.Kind { return wire.KindArray }

func gridPriority(native typedesc.Descriptor) (int, bool) {
	rowDesc, ok := isArrayOf(native)
	if !ok {
		return 0, false
	}
	if _, ok := isArrayOf(rowDesc); !ok {
		return 0, false
	}
	return 11, true
}

func (grid) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind != wire.KindArray {
		return 0, false
	}
	return gridPriority(native)
}

func (grid) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	return gridPriority(native)
}

func (grid) FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	arr, ok := v.(*wire.Array)
	if !ok {
		return nil, mismatch(native, v)
	}
	rowDesc, _ := isArrayOf(native)
	cellDesc, _ := isArrayOf(rowDesc)
	outer := reflect.MakeSlice(native.GoType(), arr.Rows(), arr.Rows())
	for r := 0; r < arr.Rows(); r++ {
		row := reflect.MakeSlice(rowDesc.GoType(), arr.Cols(), arr.Cols())
		for c := 0; c < arr.Cols(); c++ {
			cv, err := convertCell(l, r*arr.Cols()+c, arr.At(r, c), cellDesc)
			if err != nil {
				return nil, err
			}
			row.Index(c).Set(cv)
		}
		outer.Index(r).Set(row)
	}
	return outer.Interface(), nil
}

func (grid) ToWire(l Lookup, v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	rows := make([][]wire.Value, rv.Len())
	for r := range rows {
		row := rv.Index(r)
		rows[r] = make([]wire.Value, row.Len())
		for c := range rows[r] {
			wv, err := ToWireValue(l, row.Index(c).Interface())
			if err != nil {
				return nil, err
			}
			rows[r][c] = wv
		}
	}
	return wire.NewArray(rows), nil
}

// table converts two-column arrays to and from maps, one entry per row.
type table struct{}

func (table) Name() string        { return "map" }
func (table) WireKind() wire.Kind { return wire.KindArray }

func isMap(native typedesc.Descriptor) (typedesc.Parameterized, bool) {
	p, ok := native.(typedesc.Parameterized)
	if !ok || p.Raw.Kind() != reflect.Map || len(p.Args) != 2 {
		return typedesc.Parameterized{}, false
	}
	return p, true
}

func (table) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if _, ok := isMap(native); ok && kind == wire.KindArray {
		return 10, true
	}
	return 0, false
}

func (table) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if _, ok := isMap(native); ok {
		return 10, true
	}
	return 0, false
}

func (table) FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	arr, ok := v.(*wire.Array)
	if !ok {
		return nil, mismatch(native, v)
	}
	if arr.Cols() != 2 {
		return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			GoType(native.String()).
			WireType(wire.KindArray.String()).
			Detail("map needs a two-column array, got %d column(s)", arr.Cols()).
			Build()
	}
	p, _ := isMap(native)
	out := reflect.MakeMapWithSize(p.Raw, arr.Rows())
	for r := 0; r < arr.Rows(); r++ {
		k, err := convertCell(l, r*2, arr.At(r, 0), p.Args[0])
		if err != nil {
			return nil, err
		}
		val, err := convertCell(l, r*2+1, arr.At(r, 1), p.Args[1])
		if err != nil {
			return nil, err
		}
		out.SetMapIndex(k, val)
	}
	return out.Interface(), nil
}

func (table) ToWire(l Lookup, v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	rows := make([][]wire.Value, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := ToWireValue(l, iter.Key().Interface())
		if err != nil {
			return nil, err
		}
		val, err := ToWireValue(l, iter.Value().Interface())
		if err != nil {
			return nil, err
		}
		rows = append(rows, []wire.Value{k, val})
	}
	// Map order is random; sort rows so results are stable.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][0].String() < rows[j][0].String()
	})
	return wire.NewArray(rows), nil
}

// optional converts pointers to scalar types, mapping Missing and Nil to nil.
type optional struct{}

func (optional) Name() string        { return "optional" }
func (optional) WireKind() wire.Kind { return wire.KindAny }

func optionalElem(native typedesc.Descriptor) (typedesc.Descriptor, bool) {
	t, ok := rawType(native)
	if !ok || t.Kind() != reflect.Pointer {
		return nil, false
	}
	switch t.Elem().Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return typedesc.Raw{Type: t.Elem()}, true
	}
	return nil, false
}

func (optional) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if _, ok := optionalElem(native); !ok {
		return 0, false
	}
	switch kind {
	case wire.KindNumber, wire.KindText, wire.KindBoolean:
		return 5, true
	case wire.KindMissing, wire.KindNil:
		return 6, true
	}
	return 0, false
}

func (optional) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if _, ok := optionalElem(native); ok {
		return 5, true
	}
	return 0, false
}

func (optional) FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	switch wire.KindOf(v) {
	case wire.KindMissing, wire.KindNil:
		return reflect.Zero(native.GoType()).Interface(), nil
	}
	elem, _ := optionalElem(native)
	inner, err := FromWireValue(l, v, elem)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(elem.GoType())
	ptr.Elem().Set(valueOf(inner, elem.GoType()))
	return ptr.Interface(), nil
}

func (optional) ToWire(l Lookup, v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return wire.Nil, nil
	}
	return ToWireValue(l, rv.Elem().Interface())
}
