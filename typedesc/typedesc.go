// Package typedesc describes native types independently of how they are
// declared: raw types, arrays, parameterized containers and wildcard bounds.
//
// Descriptors are the native-side key of every conversion lookup. A
// wildcard must be resolved to a concrete bound before it is used as a
// key; Resolve keeps only the first bound of a multi-bound wildcard.
package typedesc

import (
	"reflect"
	"strings"
)

// Descriptor is a language-neutral description of a native type.
type Descriptor interface {
	// GoType returns the erased Go type that values of this descriptor have at runtime.
	GoType() reflect.Type
	String() string
	descriptor()
}

// Raw is a plain type.
type Raw struct {
	Type reflect.Type
}

func (r Raw) GoType() reflect.Type { return r.Type }

func (r Raw) String() string {
	if r.Type == nil {
		return "<nil>"
	}
	return r.Type.String()
}

func (Raw) descriptor() {}

// ArrayOf is a homogeneous sequence of Elem. Named is set for a named
// slice type such as `type Names []string`; it keeps the descriptor
// distinct from the plain slice of the same element.
type ArrayOf struct {
	Elem  Descriptor
	Named reflect.Type
}

func (a ArrayOf) GoType() reflect.Type {
	if a.Named != nil {
		return a.Named
	}
	return reflect.SliceOf(a.Elem.GoType())
}

func (a ArrayOf) String() string {
	if a.Named != nil {
		return a.Named.String()
	}
	return a.Elem.String() + "[]"
}

func (ArrayOf) descriptor() {}

// Parameterized is a container type with bound type arguments,
// such as map[K]V described as Parameterized{map[K]V, [K, V]}.
type Parameterized struct {
	Raw  reflect.Type
	Args []Descriptor
}

func (p Parameterized) GoType() reflect.Type { return p.Raw }

func (p Parameterized) String() string {
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return p.Raw.String() + "<" + strings.Join(args, ",") + ">"
}

func (Parameterized) descriptor() {}

// BoundKind selects upper (extends) or lower (super) wildcard bounds.
type BoundKind uint8

const (
	Upper BoundKind = iota
	Lower
)

// Wildcard is an unresolved type constrained by Bounds.
type Wildcard struct {
	Bounds []Descriptor
	Bound  BoundKind
}

func (w Wildcard) GoType() reflect.Type { return Resolve(w).GoType() }

func (w Wildcard) String() string {
	if len(w.Bounds) == 0 {
		return "?"
	}
	op := " extends "
	if w.Bound == Lower {
		op = " super "
	}
	parts := make([]string, len(w.Bounds))
	for i, b := range w.Bounds {
		parts[i] = b.String()
	}
	return "?" + op + strings.Join(parts, " & ")
}

func (Wildcard) descriptor() {}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Any describes interface{}.
var Any Descriptor = Raw{Type: anyType}

// Of describes a Go type: slices become ArrayOf, maps become Parameterized
// with key and value arguments, everything else (fixed-size arrays
// included) is Raw.
func Of(t reflect.Type) Descriptor {
	if t == nil {
		return Any
	}
	switch t.Kind() {
	case reflect.Slice:
		a := ArrayOf{Elem: Of(t.Elem())}
		if t.Name() != "" {
			a.Named = t
		}
		return a
	case reflect.Map:
		return Parameterized{Raw: t, Args: []Descriptor{Of(t.Key()), Of(t.Elem())}}
	default:
		return Raw{Type: t}
	}
}

// For describes T.
func For[T any]() Descriptor {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// Resolve replaces wildcards by a concrete bound, recursively.
// Multiple bounds collapse to the first; a wildcard with no bounds is Any.
func Resolve(d Descriptor) Descriptor {
	switch v := d.(type) {
	case Wildcard:
		if len(v.Bounds) == 0 {
			return Any
		}
		return Resolve(v.Bounds[0])
	case ArrayOf:
		return ArrayOf{Elem: Resolve(v.Elem), Named: v.Named}
	case Parameterized:
		args := make([]Descriptor, len(v.Args))
		for i, a := range v.Args {
			args[i] = Resolve(a)
		}
		return Parameterized{Raw: v.Raw, Args: args}
	default:
		return d
	}
}

// IsAny reports whether d describes interface{}.
func IsAny(d Descriptor) bool {
	r, ok := Resolve(d).(Raw)
	return ok && r.Type == anyType
}

// IsInterface reports whether d erases to an interface type.
func IsInterface(d Descriptor) bool {
	t := d.GoType()
	return t != nil && t.Kind() == reflect.Interface
}

// Elem returns the element descriptor of an ArrayOf, and false otherwise.
func Elem(d Descriptor) (Descriptor, bool) {
	if a, ok := Resolve(d).(ArrayOf); ok {
		return a.Elem, true
	}
	return nil, false
}

// Key returns a comparable identity for d, suitable as a map key.
// Unlike String it qualifies named types with their package path.
func Key(d Descriptor) string {
	var b strings.Builder
	writeKey(&b, Resolve(d))
	return b.String()
}

func writeKey(b *strings.Builder, d Descriptor) {
	switch v := d.(type) {
	case Raw:
		writeType(b, v.Type)
	case ArrayOf:
		if v.Named != nil {
			writeType(b, v.Named)
			b.WriteByte('=')
		}
		b.WriteString("[]")
		writeKey(b, v.Elem)
	case Parameterized:
		writeType(b, v.Raw)
		b.WriteByte('<')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			writeKey(b, a)
		}
		b.WriteByte('>')
	default:
		b.WriteString(d.String())
	}
}

func writeType(b *strings.Builder, t reflect.Type) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	if t.PkgPath() != "" {
		b.WriteString(t.PkgPath())
		b.WriteByte('#')
	}
	b.WriteString(t.String())
}
