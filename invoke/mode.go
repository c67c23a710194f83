package invoke

import (
	"fmt"

	"github.com/McLeodMoores/xl4j-sub002/errors"
)

// ResultMode selects how a member's result is converted to the wire.
type ResultMode uint8

const (
	// ResultDefault defers to the enclosing default; binders treat it as
	// ResultSimplest.
	ResultDefault ResultMode = iota
	// ResultSimplest uses the best converter for the declared result type,
	// falling back to an object reference.
	ResultSimplest
	// ResultObject always returns an object reference.
	ResultObject
	// ResultPassthrough returns the result unconverted; it must already be
	// a wire value.
	ResultPassthrough
)

func (m ResultMode) String() string {
	switch m {
	case ResultDefault:
		return "default"
	case ResultSimplest:
		return "simplest"
	case ResultObject:
		return "object"
	case ResultPassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Or returns m, or fallback when m is ResultDefault.
func (m ResultMode) Or(fallback ResultMode) ResultMode {
	if m == ResultDefault {
		return fallback
	}
	return m
}

// ParseResultMode parses the names produced by ResultMode.String. The
// empty string is ResultDefault.
func ParseResultMode(s string) (ResultMode, error) {
	switch s {
	case "default", "":
		return ResultDefault, nil
	case "simplest":
		return ResultSimplest, nil
	case "object":
		return ResultObject, nil
	case "passthrough":
		return ResultPassthrough, nil
	}
	return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown result mode %q", s))
}
