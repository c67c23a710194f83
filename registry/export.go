package registry

import (
	"context"
	"strconv"

	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Metadata describes an export as the host sees it.
type Metadata struct {
	Defaults        map[string]wire.Value // by argument name, replaces Missing
	Name            string
	Category        string
	Help            string
	ArgNames        []string
	ArgHelp         []string
	Mode            invoke.ResultMode
	Volatile        bool
	ThreadSafe      bool
	MacroEquivalent bool
}

// ArgName returns the name of wire argument i, or "argN" when unnamed.
func (m Metadata) ArgName(i int) string {
	if i < len(m.ArgNames) && m.ArgNames[i] != "" {
		return m.ArgNames[i]
	}
	return "arg" + strconv.Itoa(i)
}

// Default returns the default for wire argument i, if one is configured.
func (m Metadata) Default(i int) (wire.Value, bool) {
	if len(m.Defaults) == 0 {
		return nil, false
	}
	v, ok := m.Defaults[m.ArgName(i)]
	return v, ok
}

// Export is one item of the discovery stream: metadata plus either the
// members that implement it or a ready-made target.
type Export struct {
	Target   Target
	Members  []*invoke.Member
	Metadata Metadata
}

// FunctionDefinition is an export as registered: immutable once the
// table is ready.
type FunctionDefinition struct {
	Target    Target
	Signature string
	Params    []typedesc.Descriptor // wire-facing; a variadic export's last entry is the tail element
	Metadata  Metadata
	ExportID  uint32
	Variadic  bool
}

// Fixed returns the number of wire arguments before the variadic tail.
func (d *FunctionDefinition) Fixed() int {
	if d.Variadic {
		return len(d.Params) - 1
	}
	return len(d.Params)
}

// Registration is what the host receives for each export.
type Registration struct {
	Name      string
	Signature string
	Category  string
	Help      string
	ArgNames  []string
	ArgHelp   []string
	ExportID  uint32
	Variadic  bool
}

// Host is the registration boundary of the host application.
type Host interface {
	Register(ctx context.Context, r Registration) error
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context, r Registration) error

func (f HostFunc) Register(ctx context.Context, r Registration) error { return f(ctx, r) }
