package registry

import (
	"strings"
	"sync"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Resolver turns a receiver argument into the live object it references.
type Resolver interface {
	Receiver(v wire.Value) (any, error)
}

// Call is a resolved call: the receiver, the remaining arguments and the
// bound candidates in Bind layout.
type Call struct {
	Receiver   any
	Args       []wire.Value
	Candidates []*invoke.Invoker
}

// Target produces the candidates for a call.
type Target interface {
	// Params returns the wire-facing parameters. A variadic target's last
	// entry describes each tail argument.
	Params() (params []typedesc.Descriptor, variadic bool)
	Resolve(r Resolver, args []wire.Value) (Call, error)
}

// wireParams returns the wire-facing parameters of members sharing an
// export: the receiver first for instance members, then the longest
// fixed prefix, then the tail element if any member is variadic.
func wireParams(members []*invoke.Member) ([]typedesc.Descriptor, bool) {
	var (
		params   []typedesc.Descriptor
		tail     typedesc.Descriptor
		variadic bool
	)
	for _, m := range members {
		fixed := m.Fixed()
		for i := len(params); i < fixed; i++ {
			params = append(params, m.Params[i])
		}
		if m.Variadic && !variadic {
			variadic = true
			tail, _ = typedesc.Elem(m.Params[fixed])
		}
	}
	if variadic {
		if tail == nil {
			tail = typedesc.Any
		}
		params = append(params, tail)
	}
	if len(members) > 0 && members[0].Instance() {
		recv := members[0].Declaring
		if recv == nil {
			recv = typedesc.Any
		}
		params = append([]typedesc.Descriptor{recv}, params...)
	}
	return params, variadic
}

func instanceOf(members []*invoke.Member) (bool, error) {
	instance := members[0].Instance()
	for _, m := range members[1:] {
		if m.Instance() != instance {
			return false, errors.New(errors.PhaseRegister, errors.KindInvalidAttributes).
				Detail("%s mixes instance and static members", members[0].Name).
				Build()
		}
	}
	return instance, nil
}

func splitReceiver(r Resolver, instance bool, args []wire.Value) (any, []wire.Value, error) {
	if !instance {
		return nil, args, nil
	}
	if len(args) == 0 {
		return nil, nil, errors.Arity(errors.PhaseDispatch, "receiver", 1, 0)
	}
	recv, err := r.Receiver(args[0])
	if err != nil {
		return nil, nil, err
	}
	return recv, args[1:], nil
}

// Bound is a single-member target bound once, against the natural kinds
// of its parameters.
type Bound struct {
	inv      *invoke.Invoker
	params   []typedesc.Descriptor
	variadic bool
}

// NewBound binds m ahead of any call.
func NewBound(b *invoke.Binder, m *invoke.Member) (*Bound, error) {
	kinds := make([]wire.Kind, m.Fixed())
	for i := range kinds {
		kinds[i] = invoke.NaturalKind(m.Params[i])
	}
	inv, err := b.BindOne(m, kinds)
	if err != nil {
		return nil, err
	}
	params, variadic := wireParams([]*invoke.Member{m})
	return &Bound{inv: inv, params: params, variadic: variadic}, nil
}

func (t *Bound) Params() ([]typedesc.Descriptor, bool) { return t.params, t.variadic }

// Invoker returns the bound invoker.
func (t *Bound) Invoker() *invoke.Invoker { return t.inv }

func (t *Bound) Resolve(r Resolver, args []wire.Value) (Call, error) {
	recv, rest, err := splitReceiver(r, t.inv.Member().Instance(), args)
	if err != nil {
		return Call{}, err
	}
	return Call{Receiver: recv, Args: rest, Candidates: []*invoke.Invoker{t.inv}}, nil
}

// Overloads is a multi-member target bound per call against the actual
// argument kinds. Bindings are cached by kind list.
type Overloads struct {
	binder   *invoke.Binder
	members  []*invoke.Member
	params   []typedesc.Descriptor
	cache    sync.Map // kinds key -> []*invoke.Invoker
	instance bool
	variadic bool
}

// NewOverloads creates a target over members, which must all be static
// or all be instance members.
func NewOverloads(b *invoke.Binder, members []*invoke.Member) (*Overloads, error) {
	if len(members) == 0 {
		return nil, errors.InvalidInput(errors.PhaseRegister, "no members")
	}
	instance, err := instanceOf(members)
	if err != nil {
		return nil, err
	}
	params, variadic := wireParams(members)
	return &Overloads{
		binder:   b,
		members:  members,
		params:   params,
		instance: instance,
		variadic: variadic,
	}, nil
}

func (t *Overloads) Params() ([]typedesc.Descriptor, bool) { return t.params, t.variadic }

// Members returns the overloaded members in discovery order.
func (t *Overloads) Members() []*invoke.Member { return t.members }

func (t *Overloads) Resolve(r Resolver, args []wire.Value) (Call, error) {
	recv, rest, err := splitReceiver(r, t.instance, args)
	if err != nil {
		return Call{}, err
	}
	return Call{Receiver: recv, Args: rest, Candidates: t.Bind(rest)}, nil
}

// Bind returns the candidates for args, binding on first use of a kind list.
func (t *Overloads) Bind(args []wire.Value) []*invoke.Invoker {
	kinds := wire.Kinds(args)
	key := kindsKey(kinds)
	if cached, ok := t.cache.Load(key); ok {
		return cached.([]*invoke.Invoker)
	}
	bound := t.binder.Bind(t.members, kinds)
	actual, _ := t.cache.LoadOrStore(key, bound)
	return actual.([]*invoke.Invoker)
}

func kindsKey(kinds []wire.Kind) string {
	var b strings.Builder
	b.Grow(len(kinds))
	for _, k := range kinds {
		b.WriteByte(byte(k))
	}
	return b.String()
}
