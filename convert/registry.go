package convert

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Registry is an immutable, ordered set of converters.
//
// Resolution picks, among the converters whose capability predicate
// accepts the pair, the one with the highest priority. Ties go to the
// lexically smallest converter name, so the result never depends on
// registration order. Lookups are cached and safe for concurrent use.
type Registry struct {
	converters []Converter
	fromCache  sync.Map // lookupKey -> Converter (nil for a miss)
	toCache    sync.Map // lookupKey -> Converter (nil for a miss)
}

type lookupKey struct {
	native string
	kind   wire.Kind
}

// Builder collects converters before freezing them into a Registry.
type Builder struct {
	converters []Converter
	names      map[string]bool
	err        error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{names: make(map[string]bool)}
}

// Add appends converters. Duplicate names make Build fail.
func (b *Builder) Add(cs ...Converter) *Builder {
	for _, c := range cs {
		if b.err != nil {
			return b
		}
		if c == nil {
			continue
		}
		name := c.Name()
		if b.names[name] {
			b.err = errors.New(errors.PhaseRegister, errors.KindConflict).
				Detail("converter %q registered twice", name).
				Build()
			return b
		}
		b.names[name] = true
		b.converters = append(b.converters, c)
	}
	return b
}

// Build returns the frozen registry.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	cs := make([]Converter, len(b.converters))
	copy(cs, b.converters)
	return &Registry{converters: cs}, nil
}

// Converters returns the registered converters in registration order.
func (r *Registry) Converters() []Converter {
	out := make([]Converter, len(r.converters))
	copy(out, r.converters)
	return out
}

// Len returns the number of converters.
func (r *Registry) Len() int { return len(r.converters) }

// FindFromWire returns the best converter from a wire kind to a native type.
func (r *Registry) FindFromWire(kind wire.Kind, native typedesc.Descriptor) (Converter, bool) {
	native = typedesc.Resolve(native)
	key := lookupKey{kind: kind, native: typedesc.Key(native)}
	if cached, ok := r.fromCache.Load(key); ok {
		c, _ := cached.(Converter)
		return c, c != nil
	}

	best := r.pick(func(c Converter) (int, bool) {
		return c.FromWirePriority(kind, native)
	})
	if best == nil {
		Logger().Debug("no converter from wire",
			zap.Stringer("kind", kind),
			zap.Stringer("native", native))
	}
	r.fromCache.Store(key, best)
	return best, best != nil
}

// FindToWire returns the best converter from a native type to a wire kind.
// KindAny accepts whatever kind the best converter produces.
func (r *Registry) FindToWire(native typedesc.Descriptor, kind wire.Kind) (Converter, bool) {
	native = typedesc.Resolve(native)
	key := lookupKey{kind: kind, native: typedesc.Key(native)}
	if cached, ok := r.toCache.Load(key); ok {
		c, _ := cached.(Converter)
		return c, c != nil
	}

	best := r.pick(func(c Converter) (int, bool) {
		if kind != wire.KindAny && c.WireKind() != kind {
			return 0, false
		}
		return c.ToWirePriority(native)
	})
	if best == nil {
		Logger().Debug("no converter to wire",
			zap.Stringer("native", native),
			zap.Stringer("kind", kind))
	}
	r.toCache.Store(key, best)
	return best, best != nil
}

func (r *Registry) pick(priority func(Converter) (int, bool)) Converter {
	var (
		best     Converter
		bestPrio int
	)
	for _, c := range r.converters {
		p, ok := priority(c)
		if !ok {
			continue
		}
		if best == nil || p > bestPrio || (p == bestPrio && c.Name() < best.Name()) {
			best, bestPrio = c, p
		}
	}
	return best
}

// ToWireValue converts v by its dynamic type with the best converter.
// A nil interface or nil pointer becomes wire.Nil.
func ToWireValue(l Lookup, v any) (wire.Value, error) {
	if v == nil {
		return wire.Nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return wire.Nil, nil
		}
	}
	native := typedesc.Of(rv.Type())
	c, ok := l.FindToWire(native, wire.KindAny)
	if !ok {
		return nil, errors.NoConverter(nil, rv.Type().String(), wire.KindAny.String())
	}
	return c.ToWire(l, v)
}

// FromWireValue converts v to native with the best converter for v's kind.
func FromWireValue(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	kind := wire.KindOf(v)
	if v == nil {
		v = wire.Missing
	}
	c, ok := l.FindFromWire(kind, native)
	if !ok {
		return nil, errors.NoConverter(nil, native.String(), kind.String())
	}
	return c.FromWire(l, v, native)
}
