package dispatch

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/heap"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

var (
	// Failed is returned for every failed call except a stale receiver.
	Failed wire.Value = wire.Error(wire.ErrNull)
	// Stale is returned when a receiver handle does not resolve.
	Stale wire.Value = wire.Error(wire.ErrRef)
)

// Handler serves calls from the host. It never panics and never returns
// a Go error: every failure becomes a wire error value.
type Handler struct {
	table *registry.Table
	heap  *heap.Heap
}

// NewHandler creates a handler over table, resolving receivers through h.
func NewHandler(table *registry.Table, h *heap.Heap) *Handler {
	return &Handler{table: table, heap: h}
}

// Invoke calls export id with args. It blocks until the export table is
// ready.
func (h *Handler) Invoke(id uint32, args []wire.Value) (result wire.Value) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("call panicked", zap.Uint32("export_id", id), zap.Any("panic", r))
			result = Failed
		}
	}()

	def, ok := h.table.Get(id)
	if !ok {
		Logger().Debug("unknown export", zap.Uint32("export_id", id))
		return Failed
	}
	return h.call(def, args)
}

// InvokeName calls the export registered under name.
func (h *Handler) InvokeName(name string, args []wire.Value) wire.Value {
	def, ok := h.table.Lookup(name)
	if !ok {
		Logger().Debug("unknown export", zap.String("name", name))
		return Failed
	}
	return h.Invoke(def.ExportID, args)
}

func (h *Handler) call(def *registry.FunctionDefinition, args []wire.Value) wire.Value {
	args = Prepare(def, args)

	call, err := def.Target.Resolve(h, args)
	if err != nil {
		Logger().Debug("call not resolved",
			zap.String("name", def.Metadata.Name),
			zap.Uint32("export_id", def.ExportID),
			zap.Error(err))
		if stderrors.Is(err, errors.ErrStaleHandle) {
			return Stale
		}
		return Failed
	}

	v, err := invoke.Walk(call.Candidates, func(inv *invoke.Invoker) (wire.Value, error) {
		return inv.Invoke(call.Receiver, call.Args)
	})
	if err != nil {
		Logger().Warn("no candidate succeeded",
			zap.String("name", def.Metadata.Name),
			zap.Uint32("export_id", def.ExportID),
			zap.Error(err))
		return Failed
	}
	return v
}

// Prepare substitutes configured defaults for Missing arguments, unwraps
// single-cell arrays passed to scalar parameters and, for variadic
// exports, drops trailing Missing arguments past the fixed ones.
// args is not modified.
func Prepare(def *registry.FunctionDefinition, args []wire.Value) []wire.Value {
	fixed := def.Fixed()
	out := make([]wire.Value, len(args))
	for i, a := range args {
		if a == nil {
			a = wire.Missing
		}
		if i < fixed && scalarParam(def.Params[i]) {
			a = wire.Scalar(a)
		}
		if a.Kind() == wire.KindMissing {
			if d, ok := def.Metadata.Default(i); ok {
				a = d
			}
		}
		out[i] = a
	}
	if def.Variadic {
		for len(out) > fixed && out[len(out)-1].Kind() == wire.KindMissing {
			out = out[:len(out)-1]
		}
	}
	return out
}

func scalarParam(d typedesc.Descriptor) bool {
	switch invoke.NaturalKind(d) {
	case wire.KindNumber, wire.KindText, wire.KindBoolean:
		return true
	}
	return false
}

// Receiver resolves an object reference to the object it names.
func (h *Handler) Receiver(v wire.Value) (any, error) {
	ref, ok := v.(wire.Object)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDispatch, []string{"receiver"}, "object", wire.KindOf(v).String())
	}
	obj, ok := h.heap.FromHandle(ref.Handle)
	if !ok {
		return nil, errors.StaleHandle(uint64(ref.Handle))
	}
	return obj, nil
}
