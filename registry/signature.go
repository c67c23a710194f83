package registry

import (
	"strings"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// DefaultMaxArguments is the host's limit on arguments per function.
const DefaultMaxArguments = 255

// Signature type codes.
const (
	CodeValue     = 'Q' // any value, references dereferenced
	CodeReference = 'U' // any value, references passed through

	FlagVolatile        = '!'
	FlagThreadSafe      = '$'
	FlagMacroEquivalent = '#'
)

// ParamCode returns the type code for a parameter of type d.
func ParamCode(d typedesc.Descriptor) byte {
	switch k := invoke.NaturalKind(d); {
	case k == wire.KindAny, k.IsReference():
		return CodeReference
	default:
		return CodeValue
	}
}

// Signature encodes a function's type string: the result code, one code
// per parameter (a variadic tail is repeated up to maxArgs) and at most
// one attribute flag.
func Signature(md Metadata, params []typedesc.Descriptor, variadic bool, maxArgs int) (string, error) {
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArguments
	}
	if len(params) > maxArgs {
		return "", errors.InvalidAttributes(md.Name, "too many parameters")
	}

	var flag byte
	flags := 0
	if md.Volatile {
		flag = FlagVolatile
		flags++
	}
	if md.ThreadSafe {
		flag = FlagThreadSafe
		flags++
	}
	if md.MacroEquivalent {
		flag = FlagMacroEquivalent
		flags++
	}
	if flags > 1 {
		return "", errors.InvalidAttributes(md.Name, "volatile, thread-safe and macro-equivalent are mutually exclusive")
	}

	var b strings.Builder
	b.WriteByte(CodeValue)
	for _, p := range params {
		b.WriteByte(ParamCode(p))
	}
	if variadic && len(params) > 0 {
		code := ParamCode(params[len(params)-1])
		for i := len(params); i < maxArgs; i++ {
			b.WriteByte(code)
		}
	}
	if flag != 0 {
		b.WriteByte(flag)
	}
	return b.String(), nil
}
