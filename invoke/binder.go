package invoke

import (
	"reflect"
	"strconv"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/convert"
	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Binder turns members into invokers for a given list of argument kinds.
// It holds no per-call state and is safe for concurrent use.
type Binder struct {
	converters convert.Lookup
	mode       ResultMode
}

// NewBinder creates a binder resolving converters from l.
func NewBinder(l convert.Lookup, mode ResultMode) *Binder {
	return &Binder{converters: l, mode: mode.Or(ResultSimplest)}
}

// Mode returns the binder's result mode.
func (b *Binder) Mode() ResultMode { return b.mode }

// WithMode returns a binder sharing b's converters with a different
// mode. ResultDefault keeps b's mode.
func (b *Binder) WithMode(mode ResultMode) *Binder {
	mode = mode.Or(b.mode)
	if mode == b.mode {
		return b
	}
	return &Binder{converters: b.converters, mode: mode}
}

// Bind binds every member against kinds. The result has one slot per
// member. Non-variadic members that bind fill slots from the front in
// discovery order; variadic members that bind fill slots from the back,
// so the first variadic member found sits in the last slot. Members that
// cannot be bound leave nil slots between the two groups.
func (b *Binder) Bind(members []*Member, kinds []wire.Kind) []*Invoker {
	out := make([]*Invoker, len(members))
	front, back := 0, len(members)-1
	for _, m := range members {
		inv, err := b.BindOne(m, kinds)
		if err != nil {
			Logger().Debug("member not bindable",
				zap.String("member", m.String()),
				zap.Error(err))
			continue
		}
		if m.Variadic {
			out[back] = inv
			back--
		} else {
			out[front] = inv
			front++
		}
	}
	return out
}

// BindOne binds a single member against kinds.
func (b *Binder) BindOne(m *Member, kinds []wire.Kind) (*Invoker, error) {
	fixed := m.Fixed()
	if m.Variadic {
		if len(kinds) < fixed {
			return nil, errors.Arity(errors.PhaseBind, m.QualifiedName(), fixed, len(kinds))
		}
	} else if len(kinds) != fixed {
		return nil, errors.Arity(errors.PhaseBind, m.QualifiedName(), fixed, len(kinds))
	}

	inv := &Invoker{
		member:     m,
		converters: b.converters,
		mode:       b.mode,
		kinds:      append([]wire.Kind(nil), kinds...),
		args:       make([]convert.Converter, fixed),
	}
	for i := 0; i < fixed; i++ {
		c, ok := b.converters.FindFromWire(kinds[i], m.Params[i])
		if !ok {
			return nil, errors.NoConverter(argPath(m, i), m.Params[i].String(), kinds[i].String())
		}
		inv.args[i] = c
	}
	if m.Variadic {
		tail := m.Params[fixed]
		c, ok := b.converters.FindFromWire(wire.KindArray, tail)
		if !ok {
			return nil, errors.NoConverter(argPath(m, fixed), tail.String(), wire.KindArray.String())
		}
		inv.tail = c
	}

	if err := b.bindResult(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (b *Binder) bindResult(inv *Invoker) error {
	res := inv.member.Result
	if res == nil {
		return nil
	}
	path := []string{inv.member.QualifiedName(), "result"}
	switch b.mode {
	case ResultObject:
		c, ok := b.converters.FindToWire(res, wire.KindObject)
		if !ok {
			return errors.NoConverter(path, res.String(), wire.KindObject.String())
		}
		inv.result = c
	case ResultPassthrough:
		t := typedesc.Resolve(res).GoType()
		if !t.Implements(wireValueType) && (t.Kind() != reflect.Interface || !wireValueType.Implements(t)) {
			return errors.TypeMismatch(errors.PhaseBind, path, res.String(), "wire value")
		}
	default:
		// Interface results are converted by their dynamic type per call.
		if typedesc.IsInterface(res) {
			return nil
		}
		c, ok := b.converters.FindToWire(res, wire.KindAny)
		if !ok {
			return errors.NoConverter(path, res.String(), wire.KindAny.String())
		}
		inv.result = c
	}
	return nil
}

func argPath(m *Member, i int) []string {
	return []string{m.QualifiedName(), "arg" + strconv.Itoa(i)}
}
