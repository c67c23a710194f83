package convert

import (
	"math"
	"reflect"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

var wireValueType = reflect.TypeOf((*wire.Value)(nil)).Elem()

func rawType(native typedesc.Descriptor) (reflect.Type, bool) {
	r, ok := native.(typedesc.Raw)
	if !ok || r.Type == nil {
		return nil, false
	}
	return r.Type, true
}

func mismatch(native typedesc.Descriptor, v wire.Value) error {
	return errors.TypeMismatch(errors.PhaseConvert, nil, native.String(), wire.KindOf(v).String())
}

// identity passes wire values through untouched.
type identity struct{}

func (identity) Name() string        { return "identity" }
func (identity) WireKind() wire.Kind { return wire.KindAny }

func (identity) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	t, ok := rawType(native)
	if !ok {
		return 0, false
	}
	if t == wireValueType {
		return MaxPriority, true
	}
	if kind == wire.KindAny || t.Kind() == reflect.Interface || !t.Implements(wireValueType) {
		return 0, false
	}
	if reflect.Zero(t).Interface().(wire.Value).Kind() == kind {
		return MaxPriority, true
	}
	return 0, false
}

func (identity) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	t, ok := rawType(native)
	if ok && t.Implements(wireValueType) {
		return MaxPriority, true
	}
	return 0, false
}

func (identity) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	if v == nil {
		v = wire.Missing
	}
	if !reflect.TypeOf(v).AssignableTo(native.GoType()) {
		return nil, mismatch(native, v)
	}
	return v, nil
}

func (identity) ToWire(_ Lookup, v any) (wire.Value, error) {
	wv, ok := v.(wire.Value)
	if !ok || wv == nil {
		return wire.Nil, nil
	}
	return wv, nil
}

// float converts Number to and from float32/float64 kinds.
type float struct{}

func (float) Name() string        { return "float" }
func (float) WireKind() wire.Kind { return wire.KindNumber }

func floatPriority(native typedesc.Descriptor) (int, bool) {
	t, ok := rawType(native)
	if !ok {
		return 0, false
	}
	switch t.Kind() {
	case reflect.Float64:
		return 10, true
	case reflect.Float32:
		return 9, true
	}
	return 0, false
}

func (float) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind != wire.KindNumber {
		return 0, false
	}
	return floatPriority(native)
}

func (float) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	return floatPriority(native)
}

func (float) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	n, ok := v.(wire.Number)
	if !ok {
		return nil, mismatch(native, v)
	}
	out := reflect.New(native.GoType()).Elem()
	if out.OverflowFloat(float64(n)) {
		return nil, errors.Overflow(errors.PhaseConvert, nil, float64(n), native.String())
	}
	out.SetFloat(float64(n))
	return out.Interface(), nil
}

func (float) ToWire(_ Lookup, v any) (wire.Value, error) {
	return wire.Number(reflect.ValueOf(v).Float()), nil
}

// infNaN maps non-finite floats to #NUM! and #NUM! back to NaN. It is not
// injective, so its two directions carry different priorities: it wins
// over float when producing wire values and only handles Error on input.
type infNaN struct{}

func (infNaN) Name() string        { return "inf-nan" }
func (infNaN) WireKind() wire.Kind { return wire.KindAny }

func (infNaN) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind != wire.KindError {
		return 0, false
	}
	return floatPriority(native)
}

func (infNaN) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	p, ok := floatPriority(native)
	return p + 1, ok
}

func (infNaN) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	e, ok := v.(wire.Error)
	if !ok || e.ErrorKind() != wire.ErrNum {
		return nil, mismatch(native, v)
	}
	out := reflect.New(native.GoType()).Elem()
	out.SetFloat(math.NaN())
	return out.Interface(), nil
}

func (infNaN) ToWire(_ Lookup, v any) (wire.Value, error) {
	f := reflect.ValueOf(v).Float()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return wire.Error(wire.ErrNum), nil
	}
	return wire.Number(f), nil
}

// integer converts Number to and from signed and unsigned integer kinds.
// Fractional values and values outside the target range are rejected.
type integer struct{}

func (integer) Name() string        { return "integer" }
func (integer) WireKind() wire.Kind { return wire.KindNumber }

func integerPriority(native typedesc.Descriptor) (int, bool) {
	t, ok := rawType(native)
	if !ok {
		return 0, false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return 8, true
	case reflect.Int16, reflect.Int8:
		return 7, true
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		return 6, true
	}
	return 0, false
}

func (integer) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind != wire.KindNumber {
		return 0, false
	}
	return integerPriority(native)
}

func (integer) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	return integerPriority(native)
}

func (integer) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	n, ok := v.(wire.Number)
	if !ok {
		return nil, mismatch(native, v)
	}
	f := float64(n)
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			GoType(native.String()).
			WireType(wire.KindNumber.String()).
			Value(f).
			Detail("%v is not an integer", f).
			Build()
	}
	out := reflect.New(native.GoType()).Elem()
	switch out.Kind() {
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		if f < 0 || f >= math.Exp2(64) || out.OverflowUint(uint64(f)) {
			return nil, errors.Overflow(errors.PhaseConvert, nil, f, native.String())
		}
		out.SetUint(uint64(f))
	default:
		if f < math.MinInt64 || f >= math.Exp2(63) || out.OverflowInt(int64(f)) {
			return nil, errors.Overflow(errors.PhaseConvert, nil, f, native.String())
		}
		out.SetInt(int64(f))
	}
	return out.Interface(), nil
}

func (integer) ToWire(_ Lookup, v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		return wire.Number(float64(rv.Uint())), nil
	default:
		return wire.Number(float64(rv.Int())), nil
	}
}

// boolean converts Boolean to and from bool. Numbers are accepted on
// input at low priority, non-zero meaning true.
type boolean struct{}

func (boolean) Name() string        { return "boolean" }
func (boolean) WireKind() wire.Kind { return wire.KindBoolean }

func isBool(native typedesc.Descriptor) bool {
	t, ok := rawType(native)
	return ok && t.Kind() == reflect.Bool
}

func (boolean) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if !isBool(native) {
		return 0, false
	}
	switch kind {
	case wire.KindBoolean:
		return 10, true
	case wire.KindNumber:
		return 1, true
	}
	return 0, false
}

func (boolean) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if isBool(native) {
		return 10, true
	}
	return 0, false
}

func (boolean) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	out := reflect.New(native.GoType()).Elem()
	switch b := v.(type) {
	case wire.Boolean:
		out.SetBool(bool(b))
	case wire.Number:
		out.SetBool(b != 0)
	default:
		return nil, mismatch(native, v)
	}
	return out.Interface(), nil
}

func (boolean) ToWire(_ Lookup, v any) (wire.Value, error) {
	return wire.Boolean(reflect.ValueOf(v).Bool()), nil
}

// text converts Text to and from string kinds.
type text struct{}

func (text) Name() string        { return "text" }
func (text) WireKind() wire.Kind { return wire.KindText }

func isString(native typedesc.Descriptor) bool {
	t, ok := rawType(native)
	return ok && t.Kind() == reflect.String
}

func (text) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind == wire.KindText && isString(native) {
		return 10, true
	}
	return 0, false
}

func (text) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if isString(native) {
		return 10, true
	}
	return 0, false
}

func (text) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	s, ok := v.(wire.Text)
	if !ok {
		return nil, mismatch(native, v)
	}
	out := reflect.New(native.GoType()).Elem()
	out.SetString(string(s))
	return out.Interface(), nil
}

func (text) ToWire(_ Lookup, v any) (wire.Value, error) {
	return wire.Text(reflect.ValueOf(v).String()), nil
}

// nilValue turns Missing and Nil into the zero value of nilable types.
type nilValue struct{}

func (nilValue) Name() string        { return "nil" }
func (nilValue) WireKind() wire.Kind { return wire.KindNil }

func (nilValue) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind != wire.KindMissing && kind != wire.KindNil {
		return 0, false
	}
	switch native.GoType().Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return 2, true
	}
	return 0, false
}

func (nilValue) ToWirePriority(typedesc.Descriptor) (int, bool) { return 0, false }

func (nilValue) FromWire(_ Lookup, _ wire.Value, native typedesc.Descriptor) (any, error) {
	return reflect.Zero(native.GoType()).Interface(), nil
}

func (nilValue) ToWire(Lookup, any) (wire.Value, error) { return wire.Nil, nil }
