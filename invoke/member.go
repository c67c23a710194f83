package invoke

import (
	"strings"

	"github.com/McLeodMoores/xl4j-sub002/typedesc"
)

// MemberKind classifies a callable member.
type MemberKind uint8

const (
	KindFunction MemberKind = iota
	KindMethod
	KindConstructor
	KindField
)

func (k MemberKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// CallFunc runs a member. Receiver is nil for static members and
// functions. For variadic members the last element of args is the
// variadic tail as one slice.
type CallFunc func(receiver any, args []any) (any, error)

// Member is one entry of the member table: a callable with its declared
// parameter and result types. Members are built once and never mutated.
type Member struct {
	Call      CallFunc
	Declaring typedesc.Descriptor // nil for free functions
	Result    typedesc.Descriptor // nil when the member returns nothing
	Name      string
	Params    []typedesc.Descriptor // a variadic member's last entry is ArrayOf(elem)
	Kind      MemberKind
	Static    bool
	Variadic  bool
}

// Fixed returns the number of parameters before the variadic tail.
func (m *Member) Fixed() int {
	if m.Variadic && len(m.Params) > 0 {
		return len(m.Params) - 1
	}
	return len(m.Params)
}

// Instance reports whether the member needs a receiver.
func (m *Member) Instance() bool {
	return !m.Static && (m.Kind == KindMethod || m.Kind == KindField)
}

// QualifiedName returns Declaring.Name, or Name for free functions.
func (m *Member) QualifiedName() string {
	if m.Declaring == nil {
		return m.Name
	}
	return m.Declaring.String() + "." + m.Name
}

// String renders the member as a signature, e.g. "Add(int, int) int".
func (m *Member) String() string {
	var b strings.Builder
	b.WriteString(m.QualifiedName())
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if m.Variadic && i == len(m.Params)-1 {
			if elem, ok := typedesc.Elem(p); ok {
				b.WriteString("...")
				b.WriteString(elem.String())
				continue
			}
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if m.Result != nil {
		b.WriteByte(' ')
		b.WriteString(m.Result.String())
	}
	return b.String()
}
