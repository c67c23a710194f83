package convert

import (
	"math"

	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

const (
	// MaxPriority is reserved for the identity converter.
	MaxPriority = math.MaxInt32
	// MinPriority is reserved for the object reference fallback.
	MinPriority = math.MinInt32
)

// Lookup resolves converters. Compound converters use it to convert
// their elements; Registry is the implementation.
type Lookup interface {
	FindFromWire(kind wire.Kind, native typedesc.Descriptor) (Converter, bool)
	FindToWire(native typedesc.Descriptor, kind wire.Kind) (Converter, bool)
}

// Converter converts between one family of native types and wire values.
//
// A converter is indexed in both directions with independent priorities.
// The priority methods double as the capability predicate: ok is false
// when the converter cannot handle the pair at all.
type Converter interface {
	Name() string
	// WireKind is the kind ToWire produces, or KindAny when it varies.
	WireKind() wire.Kind
	FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (priority int, ok bool)
	ToWirePriority(native typedesc.Descriptor) (priority int, ok bool)
	FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error)
	ToWire(l Lookup, v any) (wire.Value, error)
}

// Func is a converter for exactly one native type and one wire kind,
// built from plain functions. Either direction may be nil.
type Func struct {
	From         func(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error)
	To           func(l Lookup, v any) (wire.Value, error)
	Native       typedesc.Descriptor
	ID           string
	Kind         wire.Kind
	FromPriority int
	ToPriority   int
}

func (f *Func) Name() string { return f.ID }

func (f *Func) WireKind() wire.Kind { return f.Kind }

func (f *Func) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if f.From == nil || kind != f.Kind || typedesc.Key(native) != typedesc.Key(f.Native) {
		return 0, false
	}
	return f.FromPriority, true
}

func (f *Func) ToWirePriority(native typedesc.Descriptor) (int, bool) {
	if f.To == nil || typedesc.Key(native) != typedesc.Key(f.Native) {
		return 0, false
	}
	return f.ToPriority, true
}

func (f *Func) FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	return f.From(l, v, native)
}

func (f *Func) ToWire(l Lookup, v any) (wire.Value, error) {
	return f.To(l, v)
}
