package dispatch

import (
	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/heap"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/member"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

const builtinCategory = "Reflection"

// reflective is a target that looks its members up in the catalog on
// every call, by type or receiver and member name.
type reflective struct {
	resolve  func(r registry.Resolver, args []wire.Value) (registry.Call, error)
	params   []typedesc.Descriptor
	variadic bool
}

func (t *reflective) Params() ([]typedesc.Descriptor, bool) { return t.params, t.variadic }

func (t *reflective) Resolve(r registry.Resolver, args []wire.Value) (registry.Call, error) {
	return t.resolve(r, args)
}

var (
	textParam  = typedesc.For[string]()
	valueParam = typedesc.For[wire.Value]()
)

// Builtins returns the reflective exports over catalog:
//
//	JConstruct(type, args...)          construct a catalog type
//	JMethod(object, name, args...)     call an instance method
//	JStaticMethod(type, name, args...) call a static method
//	JField(object, name)               read an instance field
//	JStaticField(type, name)           read a static field
//	JRelease(object)                   release a handle
//	JType(object)                      name the type behind a handle
//
// Members are bound per call against the actual argument kinds and tried
// in the usual candidate order.
func Builtins(catalog *member.Catalog, h *heap.Heap, b *invoke.Binder) []registry.Export {
	objects := b.WithMode(invoke.ResultObject)
	bi := &builtins{catalog: catalog, heap: h, binder: b}

	return []registry.Export{
		bi.export("JConstruct", "Constructs an object", []string{"type", "args"},
			&reflective{params: []typedesc.Descriptor{textParam, valueParam}, variadic: true,
				resolve: func(r registry.Resolver, args []wire.Value) (registry.Call, error) {
					entry, rest, err := bi.typeArg(args)
					if err != nil {
						return registry.Call{}, err
					}
					return registry.Call{Args: rest, Candidates: objects.Bind(entry.Constructors, wire.Kinds(rest))}, nil
				}}),
		bi.export("JMethod", "Calls a method of an object", []string{"object", "method", "args"},
			&reflective{params: []typedesc.Descriptor{valueParam, textParam, valueParam}, variadic: true,
				resolve: func(r registry.Resolver, args []wire.Value) (registry.Call, error) {
					recv, entry, rest, err := bi.objectArg(r, args)
					if err != nil {
						return registry.Call{}, err
					}
					name, rest, err := textArg(rest, "method")
					if err != nil {
						return registry.Call{}, err
					}
					return bi.call(recv, entry.Method(name), rest, entry.Name, name)
				}}),
		bi.export("JStaticMethod", "Calls a static method of a type", []string{"type", "method", "args"},
			&reflective{params: []typedesc.Descriptor{textParam, textParam, valueParam}, variadic: true,
				resolve: func(r registry.Resolver, args []wire.Value) (registry.Call, error) {
					entry, rest, err := bi.typeArg(args)
					if err != nil {
						return registry.Call{}, err
					}
					name, rest, err := textArg(rest, "method")
					if err != nil {
						return registry.Call{}, err
					}
					return bi.call(nil, entry.Static(name), rest, entry.Name, name)
				}}),
		bi.export("JField", "Reads a field of an object", []string{"object", "field"},
			&reflective{params: []typedesc.Descriptor{valueParam, textParam},
				resolve: func(r registry.Resolver, args []wire.Value) (registry.Call, error) {
					recv, entry, rest, err := bi.objectArg(r, args)
					if err != nil {
						return registry.Call{}, err
					}
					name, rest, err := textArg(rest, "field")
					if err != nil {
						return registry.Call{}, err
					}
					f, _ := entry.Field(name)
					return bi.call(recv, single(f), rest, entry.Name, name)
				}}),
		bi.export("JStaticField", "Reads a static field of a type", []string{"type", "field"},
			&reflective{params: []typedesc.Descriptor{textParam, textParam},
				resolve: func(r registry.Resolver, args []wire.Value) (registry.Call, error) {
					entry, rest, err := bi.typeArg(args)
					if err != nil {
						return registry.Call{}, err
					}
					name, rest, err := textArg(rest, "field")
					if err != nil {
						return registry.Call{}, err
					}
					f, _ := entry.StaticField(name)
					return bi.call(nil, single(f), rest, entry.Name, name)
				}}),
		bi.handleExport("JRelease", "Releases an object handle", bi.release),
		bi.handleExport("JType", "Names the type of an object", bi.typeName),
	}
}

type builtins struct {
	catalog *member.Catalog
	heap    *heap.Heap
	binder  *invoke.Binder
}

func (bi *builtins) export(name, help string, argNames []string, target registry.Target) registry.Export {
	return registry.Export{
		Metadata: registry.Metadata{
			Name:     name,
			Category: builtinCategory,
			Help:     help,
			ArgNames: argNames,
		},
		Target: target,
	}
}

// handleExport builds a one-argument export taking an object reference.
// The reference is checked up front so a stale handle reports as such.
func (bi *builtins) handleExport(name, help string, fn invoke.CallFunc) registry.Export {
	m := &invoke.Member{
		Name:   name,
		Kind:   invoke.KindFunction,
		Static: true,
		Params: []typedesc.Descriptor{valueParam},
		Result: typedesc.Any,
		Call:   fn,
	}
	inv, err := bi.binder.WithMode(invoke.ResultSimplest).BindOne(m, []wire.Kind{wire.KindObject})
	return bi.export(name, help, []string{"object"},
		&reflective{params: m.Params,
			resolve: func(r registry.Resolver, args []wire.Value) (registry.Call, error) {
				if err != nil {
					return registry.Call{}, err
				}
				if len(args) != 1 {
					return registry.Call{}, errors.Arity(errors.PhaseDispatch, name, 1, len(args))
				}
				if _, err := r.Receiver(args[0]); err != nil {
					return registry.Call{}, err
				}
				return registry.Call{Args: args, Candidates: []*invoke.Invoker{inv}}, nil
			}})
}

func (bi *builtins) release(_ any, args []any) (any, error) {
	ref := args[0].(wire.Object)
	if !bi.heap.Release(ref.Handle) {
		return nil, errors.StaleHandle(uint64(ref.Handle))
	}
	return true, nil
}

func (bi *builtins) typeName(_ any, args []any) (any, error) {
	ref := args[0].(wire.Object)
	obj, ok := bi.heap.FromHandle(ref.Handle)
	if !ok {
		return nil, errors.StaleHandle(uint64(ref.Handle))
	}
	if entry, ok := bi.catalog.ForValue(obj); ok {
		return entry.Name, nil
	}
	return heap.TypeNameOf(obj), nil
}

func (bi *builtins) call(recv any, members []*invoke.Member, args []wire.Value, typeName, name string) (registry.Call, error) {
	if len(members) == 0 {
		return registry.Call{}, errors.NotFound(errors.PhaseDispatch, "member", typeName+"."+name)
	}
	return registry.Call{Receiver: recv, Args: args, Candidates: bi.binder.Bind(members, wire.Kinds(args))}, nil
}

func (bi *builtins) typeArg(args []wire.Value) (*member.TypeEntry, []wire.Value, error) {
	name, rest, err := textArg(args, "type")
	if err != nil {
		return nil, nil, err
	}
	entry, ok := bi.catalog.Lookup(name)
	if !ok {
		return nil, nil, errors.NotFound(errors.PhaseDispatch, "type", name)
	}
	return entry, rest, nil
}

func (bi *builtins) objectArg(r registry.Resolver, args []wire.Value) (any, *member.TypeEntry, []wire.Value, error) {
	if len(args) == 0 {
		return nil, nil, nil, errors.Arity(errors.PhaseDispatch, "object", 1, 0)
	}
	recv, err := r.Receiver(args[0])
	if err != nil {
		return nil, nil, nil, err
	}
	entry, ok := bi.catalog.ForValue(recv)
	if !ok {
		return nil, nil, nil, errors.NotFound(errors.PhaseDispatch, "type", heap.TypeNameOf(recv))
	}
	return recv, entry, args[1:], nil
}

func textArg(args []wire.Value, what string) (string, []wire.Value, error) {
	if len(args) == 0 {
		return "", nil, errors.Arity(errors.PhaseDispatch, what, 1, 0)
	}
	s, ok := args[0].(wire.Text)
	if !ok {
		return "", nil, errors.TypeMismatch(errors.PhaseDispatch, []string{what}, "string", wire.KindOf(args[0]).String())
	}
	return string(s), args[1:], nil
}

func single(m *invoke.Member) []*invoke.Member {
	if m == nil {
		return nil
	}
	return []*invoke.Member{m}
}
