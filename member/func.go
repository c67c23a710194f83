package member

import (
	"fmt"
	"reflect"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// signature is the shape of a Go function after the receiver, if any,
// has been split off.
type signature struct {
	params   []typedesc.Descriptor
	in       []reflect.Type
	result   typedesc.Descriptor
	hasValue bool
	hasError bool
	variadic bool
}

// inspect reads fn's parameters and results, skipping the first skip
// parameters. Results may be (), (T), (error) or (T, error).
func inspect(ft reflect.Type, skip int) (signature, error) {
	var sig signature
	sig.variadic = ft.IsVariadic()
	for i := skip; i < ft.NumIn(); i++ {
		t := ft.In(i)
		sig.in = append(sig.in, t)
		sig.params = append(sig.params, typedesc.Of(t))
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			sig.hasError = true
		} else {
			sig.hasValue = true
			sig.result = typedesc.Of(ft.Out(0))
		}
	case 2:
		if ft.Out(1) != errorType {
			return sig, errors.New(errors.PhaseRegister, errors.KindUnsupported).
				GoType(ft.String()).
				Detail("second result must be error").
				Build()
		}
		sig.hasValue, sig.hasError = true, true
		sig.result = typedesc.Of(ft.Out(0))
	default:
		return sig, errors.New(errors.PhaseRegister, errors.KindUnsupported).
			GoType(ft.String()).
			Detail("functions may return at most a value and an error").
			Build()
	}
	return sig, nil
}

// argValues turns converted arguments into call values. Nil arguments
// become the zero value of the parameter type.
func (s signature) argValues(args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		t := s.in[i]
		if a == nil {
			in[i] = reflect.Zero(t)
			continue
		}
		v := reflect.ValueOf(a)
		if v.Type() != t && v.Type().ConvertibleTo(t) && t.Kind() != reflect.Interface {
			v = v.Convert(t)
		}
		in[i] = v
	}
	return in
}

func (s signature) results(out []reflect.Value) (any, error) {
	if s.hasError {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
	}
	if s.hasValue {
		return out[0].Interface(), nil
	}
	return nil, nil
}

func (s signature) call(fn reflect.Value, in []reflect.Value) (any, error) {
	var out []reflect.Value
	if s.variadic {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}
	return s.results(out)
}

// Func builds a free function member from fn.
func Func(name string, fn any) (*invoke.Member, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegister, "function name cannot be empty")
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", fn)).
			Detail("handler must be a function").
			Build()
	}
	return static(name, invoke.KindFunction, nil, rv)
}

// MustFunc is like Func but panics on error.
func MustFunc(name string, fn any) *invoke.Member {
	m, err := Func(name, fn)
	if err != nil {
		panic(err)
	}
	return m
}

func static(name string, kind invoke.MemberKind, declaring typedesc.Descriptor, rv reflect.Value) (*invoke.Member, error) {
	sig, err := inspect(rv.Type(), 0)
	if err != nil {
		return nil, err
	}
	return &invoke.Member{
		Name:      name,
		Kind:      kind,
		Declaring: declaring,
		Static:    true,
		Params:    sig.params,
		Variadic:  sig.variadic,
		Result:    sig.result,
		Call: func(_ any, args []any) (any, error) {
			return sig.call(rv, sig.argValues(args))
		},
	}, nil
}
