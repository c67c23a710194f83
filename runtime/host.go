package runtime

import (
	"reflect"
	"sort"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/member"
	"github.com/McLeodMoores/xl4j-sub002/registry"
)

// Provider is a struct whose exported methods become exports.
// Every exported method except Category is registered under its own name.
type Provider interface {
	// Category is the function-wizard category of the provider's exports.
	Category() string
}

// ExplicitProvider lists its exports by name instead of by reflection.
// A []any value registers the functions as one overload set.
type ExplicitProvider interface {
	Provider
	Exports() map[string]any
}

// ExportOption adjusts the metadata of a single export.
type ExportOption func(*registry.Metadata)

// Category sets the function-wizard category.
func Category(c string) ExportOption {
	return func(md *registry.Metadata) { md.Category = c }
}

// Help sets the function description.
func Help(h string) ExportOption {
	return func(md *registry.Metadata) { md.Help = h }
}

// Args names the wire arguments.
func Args(names ...string) ExportOption {
	return func(md *registry.Metadata) { md.ArgNames = names }
}

// ArgHelp describes the wire arguments.
func ArgHelp(help ...string) ExportOption {
	return func(md *registry.Metadata) { md.ArgHelp = help }
}

// Volatile marks the export as recalculated on every sheet change.
func Volatile() ExportOption {
	return func(md *registry.Metadata) { md.Volatile = true }
}

// ThreadSafe marks the export as safe for multi-threaded recalculation.
func ThreadSafe() ExportOption {
	return func(md *registry.Metadata) { md.ThreadSafe = true }
}

// MacroEquivalent marks the export as a macro-sheet equivalent.
func MacroEquivalent() ExportOption {
	return func(md *registry.Metadata) { md.MacroEquivalent = true }
}

// Mode sets the result mode of the export.
func Mode(m invoke.ResultMode) ExportOption {
	return func(md *registry.Metadata) { md.Mode = m }
}

func metadata(name string, opts []ExportOption) registry.Metadata {
	md := registry.Metadata{Name: name}
	for _, opt := range opts {
		opt(&md)
	}
	return md
}

// providerExports discovers the exports of p.
func providerExports(p Provider) ([]registry.Export, error) {
	category := p.Category()

	if ep, ok := p.(ExplicitProvider); ok {
		table := ep.Exports()
		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)

		var out []registry.Export
		for _, name := range names {
			fns, ok := table[name].([]any)
			if !ok {
				fns = []any{table[name]}
			}
			members, err := funcs(name, fns)
			if err != nil {
				return nil, err
			}
			md := registry.Metadata{Name: name, Category: category}
			out = append(out, registry.Export{Metadata: md, Members: members})
		}
		return out, nil
	}

	rv := reflect.ValueOf(p)
	rt := rv.Type()
	var out []registry.Export
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Category" {
			continue
		}
		m, err := member.Func(method.Name, rv.Method(i).Interface())
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRegister, errors.KindInvalidInput, err, "method "+method.Name)
		}
		md := registry.Metadata{Name: method.Name, Category: category}
		out = append(out, registry.Export{Metadata: md, Members: []*invoke.Member{m}})
	}
	if len(out) == 0 {
		return nil, errors.InvalidInput(errors.PhaseRegister, rt.String()+" has no exported methods")
	}
	return out, nil
}

func funcs(name string, fns []any) ([]*invoke.Member, error) {
	members := make([]*invoke.Member, 0, len(fns))
	for _, fn := range fns {
		m, err := member.Func(name, fn)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
