package invoke

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/convert"
	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Invoker is a member bound to one list of argument kinds: a converter
// per fixed argument, one for the variadic tail and one for the result.
// It is immutable and safe for concurrent calls.
type Invoker struct {
	member     *Member
	converters convert.Lookup
	args       []convert.Converter
	tail       convert.Converter
	result     convert.Converter // nil for dynamic conversion or passthrough
	kinds      []wire.Kind
	mode       ResultMode
}

// Member returns the bound member.
func (inv *Invoker) Member() *Member { return inv.member }

// Variadic reports whether the bound member is variadic.
func (inv *Invoker) Variadic() bool { return inv.member.Variadic }

// Static reports whether the bound member runs without a receiver.
func (inv *Invoker) Static() bool { return !inv.member.Instance() }

// Kinds returns the argument kinds the invoker was bound against.
func (inv *Invoker) Kinds() []wire.Kind { return inv.kinds }

// ResultKind returns the wire kind of the result, KindAny when it is
// decided per call, or KindNil when the member returns nothing.
func (inv *Invoker) ResultKind() wire.Kind {
	switch {
	case inv.member.Result == nil:
		return wire.KindNil
	case inv.result == nil:
		return wire.KindAny
	default:
		return inv.result.WireKind()
	}
}

// Invoke converts args, calls the member and converts its result. A
// panic inside the member is recovered and returned as an error.
func (inv *Invoker) Invoke(receiver any, args []wire.Value) (result wire.Value, err error) {
	name := inv.member.QualifiedName()
	defer func() {
		if r := recover(); r != nil {
			Logger().Debug("member panicked", zap.String("member", name), zap.Any("panic", r))
			result, err = nil, errors.Panic(errors.PhaseInvoke, name, r)
		}
	}()

	native, err := inv.convertArgs(args)
	if err != nil {
		return nil, err
	}
	out, err := inv.member.Call(receiver, native)
	if err != nil {
		return nil, errors.Invocation(name, err)
	}
	return inv.convertResult(out)
}

func (inv *Invoker) convertArgs(args []wire.Value) ([]any, error) {
	m := inv.member
	fixed := m.Fixed()
	if len(args) < fixed || (!m.Variadic && len(args) != fixed) {
		return nil, errors.Arity(errors.PhaseInvoke, m.QualifiedName(), fixed, len(args))
	}

	native := make([]any, 0, len(m.Params))
	for i := 0; i < fixed; i++ {
		c, err := inv.argConverter(i, args[i])
		if err != nil {
			return nil, err
		}
		v, err := c.FromWire(inv.converters, args[i], m.Params[i])
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConvert, errors.KindTypeMismatch, err, "argument "+argPath(m, i)[1])
		}
		native = append(native, v)
	}
	if m.Variadic {
		v, err := inv.tail.FromWire(inv.converters, wire.Row(args[fixed:]...), m.Params[fixed])
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConvert, errors.KindTypeMismatch, err, "variadic arguments")
		}
		native = append(native, v)
	}
	return native, nil
}

// argConverter returns the bound converter for argument i, or looks up
// another one when the argument's actual kind differs from the bound kind.
func (inv *Invoker) argConverter(i int, v wire.Value) (convert.Converter, error) {
	kind := wire.KindOf(v)
	if kind == inv.kinds[i] {
		return inv.args[i], nil
	}
	param := inv.member.Params[i]
	c, ok := inv.converters.FindFromWire(kind, param)
	if !ok {
		return nil, errors.NoConverter(argPath(inv.member, i), param.String(), kind.String())
	}
	return c, nil
}

func (inv *Invoker) convertResult(out any) (wire.Value, error) {
	if inv.member.Result == nil || isNil(out) {
		return wire.Nil, nil
	}
	if inv.mode == ResultPassthrough {
		wv, ok := out.(wire.Value)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseInvoke,
				[]string{inv.member.QualifiedName(), "result"},
				reflect.TypeOf(out).String(), "wire value")
		}
		return wv, nil
	}
	if inv.result == nil {
		return convert.ToWireValue(inv.converters, out)
	}
	return inv.result.ToWire(inv.converters, out)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
