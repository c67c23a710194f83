package convert

import (
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

var (
	bigIntType   = reflect.TypeOf((*big.Int)(nil))
	bigFloatType = reflect.TypeOf((*big.Float)(nil))
	timeType     = reflect.TypeOf(time.Time{})
)

// SerialEpoch is day zero of the spreadsheet serial date system.
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const dayMillis = 24 * 60 * 60 * 1000

// ToSerial converts t to a serial date number, rounded to the millisecond.
func ToSerial(t time.Time) float64 {
	ms := t.UTC().Sub(SerialEpoch).Round(time.Millisecond).Milliseconds()
	return float64(ms) / dayMillis
}

// FromSerial converts a serial date number to a UTC time.
func FromSerial(serial float64) time.Time {
	ms := math.Round(serial * dayMillis)
	return SerialEpoch.Add(time.Duration(ms) * time.Millisecond)
}

func isExact(native typedesc.Descriptor, t reflect.Type) bool {
	rt, ok := rawType(native)
	return ok && rt == t
}

// bigInt converts Number to and from *big.Int. Fractional input is rejected.
type bigInt struct{}

func (bigInt) Name() string        { return "big-int" }
func (bigInt) WireKind() wire.Kind { return wire.KindNumber }

func (bigInt) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind == wire.KindNumber && isExact(native, bigIntType) {
		return 10, true
	}
	return 0, false
}

func (bigInt) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if isExact(native, bigIntType) {
		return 10, true
	}
	return 0, false
}

func (bigInt) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	n, ok := v.(wire.Number)
	if !ok || math.IsNaN(float64(n)) {
		return nil, mismatch(native, v)
	}
	i, acc := big.NewFloat(float64(n)).Int(nil)
	if acc != big.Exact {
		return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			GoType(native.String()).
			WireType(wire.KindNumber.String()).
			Value(float64(n)).
			Detail("%v is not an integer", float64(n)).
			Build()
	}
	return i, nil
}

func (bigInt) ToWire(_ Lookup, v any) (wire.Value, error) {
	f, _ := new(big.Float).SetInt(v.(*big.Int)).Float64()
	return wire.Number(f), nil
}

// bigFloat converts Number to and from *big.Float.
type bigFloat struct{}

func (bigFloat) Name() string        { return "big-float" }
func (bigFloat) WireKind() wire.Kind { return wire.KindNumber }

func (bigFloat) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind == wire.KindNumber && isExact(native, bigFloatType) {
		return 10, true
	}
	return 0, false
}

func (bigFloat) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if isExact(native, bigFloatType) {
		return 10, true
	}
	return 0, false
}

func (bigFloat) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	n, ok := v.(wire.Number)
	if !ok || math.IsNaN(float64(n)) {
		return nil, mismatch(native, v)
	}
	return big.NewFloat(float64(n)), nil
}

func (bigFloat) ToWire(_ Lookup, v any) (wire.Value, error) {
	f, _ := v.(*big.Float).Float64()
	return wire.Number(f), nil
}

// serialDate converts Number to and from time.Time as a serial date.
type serialDate struct{}

func (serialDate) Name() string        { return "serial-date" }
func (serialDate) WireKind() wire.Kind { return wire.KindNumber }

func (serialDate) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind == wire.KindNumber && isExact(native, timeType) {
		return 10, true
	}
	return 0, false
}

func (serialDate) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if isExact(native, timeType) {
		return 10, true
	}
	return 0, false
}

func (serialDate) FromWire(_ Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	n, ok := v.(wire.Number)
	if !ok {
		return nil, mismatch(native, v)
	}
	return FromSerial(float64(n)), nil
}

func (serialDate) ToWire(_ Lookup, v any) (wire.Value, error) {
	return wire.Number(ToSerial(v.(time.Time))), nil
}
