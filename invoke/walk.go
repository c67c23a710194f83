package invoke

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Attempt runs one candidate.
type Attempt func(inv *Invoker) (wire.Value, error)

// Walk tries candidates in call order until one succeeds. The first pass
// runs non-variadic candidates front to back; the second runs variadic
// candidates back to front. Nil slots are skipped. A failed attempt is
// logged and the walk moves on; only exhaustion is reported, as an
// invocation error combining every attempt's failure.
func Walk(candidates []*Invoker, try Attempt) (wire.Value, error) {
	order := Order(candidates)
	if len(order) == 0 {
		return nil, errors.New(errors.PhaseBind, errors.KindNoConverter).
			Detail("no candidate could be bound").
			Build()
	}

	var errs error
	for _, inv := range order {
		v, err := try(inv)
		if err == nil {
			return v, nil
		}
		Logger().Debug("candidate failed",
			zap.String("member", inv.member.String()),
			zap.Error(err))
		errs = multierr.Append(errs, err)
	}
	return nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvocation, errs, "all candidates failed")
}

// Order returns the non-nil candidates in the order Walk tries them.
func Order(candidates []*Invoker) []*Invoker {
	out := make([]*Invoker, 0, len(candidates))
	for _, inv := range candidates {
		if inv != nil && !inv.Variadic() {
			out = append(out, inv)
		}
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if inv := candidates[i]; inv != nil && inv.Variadic() {
			out = append(out, inv)
		}
	}
	return out
}
