package invoke

import (
	"math/big"
	"reflect"
	"time"

	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

var (
	wireValueType = reflect.TypeOf((*wire.Value)(nil)).Elem()
	bigIntType    = reflect.TypeOf((*big.Int)(nil))
	bigFloatType  = reflect.TypeOf((*big.Float)(nil))
	timeType      = reflect.TypeOf(time.Time{})
)

// NaturalKind returns the wire kind a parameter or result of type d is
// expected to carry. It is the kind used to bind members ahead of any
// call. Interfaces that accept any wire value map to KindAny.
func NaturalKind(d typedesc.Descriptor) wire.Kind {
	if d == nil {
		return wire.KindNil
	}
	switch v := typedesc.Resolve(d).(type) {
	case typedesc.ArrayOf, typedesc.Parameterized:
		return wire.KindArray
	case typedesc.Raw:
		return rawKind(v.Type)
	}
	return wire.KindAny
}

func rawKind(t reflect.Type) wire.Kind {
	switch t {
	case bigIntType, bigFloatType, timeType:
		return wire.KindNumber
	}
	if t.Kind() == reflect.Interface {
		if t.NumMethod() == 0 || t == wireValueType {
			return wire.KindAny
		}
		return wire.KindObject
	}
	if t.Implements(wireValueType) {
		return reflect.Zero(t).Interface().(wire.Value).Kind()
	}
	switch t.Kind() {
	case reflect.Bool:
		return wire.KindBoolean
	case reflect.String:
		return wire.KindText
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return wire.KindNumber
	case reflect.Pointer:
		switch k := rawKind(t.Elem()); k {
		case wire.KindBoolean, wire.KindText, wire.KindNumber:
			return k
		}
	}
	return wire.KindObject
}
