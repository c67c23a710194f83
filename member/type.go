package member

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
)

// TypeEntry is the member table of one exposed type.
type TypeEntry struct {
	Type         reflect.Type
	Methods      map[string][]*invoke.Member
	Statics      map[string][]*invoke.Member
	Fields       map[string]*invoke.Member
	StaticFields map[string]*invoke.Member
	Name         string
	Constructors []*invoke.Member
}

// Option adds members to a type entry.
type Option func(e *TypeEntry) error

// Constructor adds a constructor. fn returns the type, a pointer to it,
// or either with an error.
func Constructor(fn any) Option {
	return func(e *TypeEntry) error {
		rv, err := funcValue(fn)
		if err != nil {
			return err
		}
		m, err := static(e.Name, invoke.KindConstructor, e.declaring(), rv)
		if err != nil {
			return err
		}
		if m.Result == nil || !e.accepts(m.Result.GoType()) {
			return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
				GoType(rv.Type().String()).
				Detail("constructor of %s must return it", e.Name).
				Build()
		}
		e.Constructors = append(e.Constructors, m)
		return nil
	}
}

// Method adds an instance method implemented by fn, whose first parameter
// is the receiver. Several methods may share a name; they are overloads.
func Method(name string, fn any) Option {
	return func(e *TypeEntry) error {
		rv, err := funcValue(fn)
		if err != nil {
			return err
		}
		ft := rv.Type()
		if ft.NumIn() == 0 || !e.accepts(ft.In(0)) {
			return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
				GoType(ft.String()).
				Detail("first parameter must be the %s receiver", e.Name).
				Build()
		}
		m, err := e.method(name, rv, 1, func(recv reflect.Value) reflect.Value {
			return coerce(recv, ft.In(0))
		})
		if err != nil {
			return err
		}
		e.Methods[name] = append(e.Methods[name], m)
		return nil
	}
}

// Static adds a static method.
func Static(name string, fn any) Option {
	return func(e *TypeEntry) error {
		rv, err := funcValue(fn)
		if err != nil {
			return err
		}
		m, err := static(name, invoke.KindMethod, e.declaring(), rv)
		if err != nil {
			return err
		}
		e.Statics[name] = append(e.Statics[name], m)
		return nil
	}
}

// Constant adds a static field with a fixed value.
func Constant(name string, v any) Option {
	return func(e *TypeEntry) error {
		e.StaticFields[name] = &invoke.Member{
			Name:      name,
			Kind:      invoke.KindField,
			Declaring: e.declaring(),
			Static:    true,
			Result:    typedesc.Of(reflect.TypeOf(v)),
			Call:      func(any, []any) (any, error) { return v, nil },
		}
		return nil
	}
}

// Type builds the member table of T: every exported method of *T and
// every exported field of T, plus whatever opts add.
func Type[T any](name string, opts ...Option) (*TypeEntry, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if name == "" {
		name = t.Name()
	}
	e := &TypeEntry{
		Name:         name,
		Type:         t,
		Methods:      make(map[string][]*invoke.Member),
		Statics:      make(map[string][]*invoke.Member),
		Fields:       make(map[string]*invoke.Member),
		StaticFields: make(map[string]*invoke.Member),
	}

	recvType := t
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		recvType = reflect.PointerTo(t)
	}
	for i := 0; i < recvType.NumMethod(); i++ {
		method := recvType.Method(i)
		if !method.IsExported() {
			continue
		}
		m, err := e.reflectedMethod(recvType, method)
		if err != nil {
			return nil, err
		}
		e.Methods[method.Name] = append(e.Methods[method.Name], m)
	}

	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || f.Anonymous {
				continue
			}
			e.Fields[f.Name] = e.field(f)
		}
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// MustType is like Type but panics on error.
func MustType[T any](name string, opts ...Option) *TypeEntry {
	e, err := Type[T](name, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *TypeEntry) declaring() typedesc.Descriptor {
	return typedesc.Raw{Type: e.Type}
}

// accepts reports whether a value of type t can serve as an instance.
func (e *TypeEntry) accepts(t reflect.Type) bool {
	return t == e.Type || t == reflect.PointerTo(e.Type) ||
		(e.Type.Kind() == reflect.Interface && t.Implements(e.Type))
}

// Accepts reports whether v is an instance of the entry's type.
func (e *TypeEntry) Accepts(v any) bool {
	return v != nil && e.accepts(reflect.TypeOf(v))
}

func (e *TypeEntry) reflectedMethod(recvType reflect.Type, method reflect.Method) (*invoke.Member, error) {
	if recvType.Kind() == reflect.Interface {
		// Interface methods carry no receiver parameter.
		name := method.Name
		sig, err := inspect(method.Type, 0)
		if err != nil {
			return nil, err
		}
		return e.instance(name, sig, func(recv reflect.Value, in []reflect.Value) (any, error) {
			return sig.call(recv.MethodByName(name), in)
		}), nil
	}
	return e.method(method.Name, method.Func, 1, func(recv reflect.Value) reflect.Value {
		return coerce(recv, recvType)
	})
}

// method builds an instance member from fn whose first skip parameters
// are supplied by the receiver.
func (e *TypeEntry) method(name string, fn reflect.Value, skip int, recv func(reflect.Value) reflect.Value) (*invoke.Member, error) {
	sig, err := inspect(fn.Type(), skip)
	if err != nil {
		return nil, err
	}
	return e.instance(name, sig, func(r reflect.Value, in []reflect.Value) (any, error) {
		full := make([]reflect.Value, 0, len(in)+1)
		full = append(full, recv(r))
		full = append(full, in...)
		return sig.call(fn, full)
	}), nil
}

func (e *TypeEntry) instance(name string, sig signature, call func(reflect.Value, []reflect.Value) (any, error)) *invoke.Member {
	return &invoke.Member{
		Name:      name,
		Kind:      invoke.KindMethod,
		Declaring: e.declaring(),
		Params:    sig.params,
		Variadic:  sig.variadic,
		Result:    sig.result,
		Call: func(receiver any, args []any) (any, error) {
			if !e.Accepts(receiver) {
				return nil, receiverMismatch(e, receiver)
			}
			return call(reflect.ValueOf(receiver), sig.argValues(args))
		},
	}
}

func (e *TypeEntry) field(f reflect.StructField) *invoke.Member {
	index := f.Index
	return &invoke.Member{
		Name:      f.Name,
		Kind:      invoke.KindField,
		Declaring: e.declaring(),
		Result:    typedesc.Of(f.Type),
		Call: func(receiver any, _ []any) (any, error) {
			if !e.Accepts(receiver) {
				return nil, receiverMismatch(e, receiver)
			}
			rv := reflect.Indirect(reflect.ValueOf(receiver))
			return rv.FieldByIndex(index).Interface(), nil
		},
	}
}

// Members returns every member of the entry, grouped by kind and sorted
// by name within each group.
func (e *TypeEntry) Members() []*invoke.Member {
	out := append([]*invoke.Member(nil), e.Constructors...)
	out = append(out, flatten(e.Methods)...)
	out = append(out, flatten(e.Statics)...)
	out = append(out, values(e.Fields)...)
	out = append(out, values(e.StaticFields)...)
	return out
}

func flatten(m map[string][]*invoke.Member) []*invoke.Member {
	var out []*invoke.Member
	for _, k := range sortedKeys(m) {
		out = append(out, m[k]...)
	}
	return out
}

func values(m map[string]*invoke.Member) []*invoke.Member {
	var out []*invoke.Member
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// coerce adapts a receiver to want, taking the address of a copy when a
// value is held but a pointer is needed, and dereferencing the reverse.
func coerce(recv reflect.Value, want reflect.Type) reflect.Value {
	switch {
	case recv.Type() == want || want.Kind() == reflect.Interface:
		return recv
	case want.Kind() == reflect.Pointer && recv.Type() == want.Elem():
		p := reflect.New(recv.Type())
		p.Elem().Set(recv)
		return p
	case recv.Kind() == reflect.Pointer && recv.Type().Elem() == want:
		return recv.Elem()
	}
	return recv
}

func funcValue(fn any) (reflect.Value, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return reflect.Value{}, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", fn)).
			Detail("handler must be a function").
			Build()
	}
	return rv, nil
}

func receiverMismatch(e *TypeEntry, receiver any) error {
	got := "nil"
	if receiver != nil {
		got = reflect.TypeOf(receiver).String()
	}
	return errors.New(errors.PhaseInvoke, errors.KindTypeMismatch).
		GoType(got).
		Detail("receiver is not a %s", e.Name).
		Build()
}
