package convert

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/heap"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Object is the fallback converter. Any native value can leave as an
// object reference held by the heap, and any wire value can enter as
// `any`. Both directions run at MinPriority so a more specific converter
// always wins.
type Object struct {
	Heap *heap.Heap
}

// NewObject creates the object reference converter backed by h.
func NewObject(h *heap.Heap) *Object {
	return &Object{Heap: h}
}

func (*Object) Name() string        { return "object" }
func (*Object) WireKind() wire.Kind { return wire.KindObject }

func (*Object) FromWirePriority(kind wire.Kind, native typedesc.Descriptor) (int, bool) {
	if kind == wire.KindObject || typedesc.IsAny(native) {
		return MinPriority, true
	}
	return 0, false
}

func (*Object) ToWirePriority(typedesc.Descriptor) (int, bool) {
	return MinPriority, true
}

func (o *Object) FromWire(l Lookup, v wire.Value, native typedesc.Descriptor) (any, error) {
	ref, ok := v.(wire.Object)
	if !ok {
		return unwrap(v), nil
	}
	val, ok := o.Heap.FromHandle(ref.Handle)
	if !ok {
		return nil, errors.StaleHandle(uint64(ref.Handle))
	}
	if val == nil {
		return reflect.Zero(native.GoType()).Interface(), nil
	}
	if !reflect.TypeOf(val).AssignableTo(native.GoType()) {
		return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			GoType(native.String()).
			WireType(wire.KindObject.String()).
			Value(uint64(ref.Handle)).
			Detail("handle %d holds %s", ref.Handle, heap.TypeNameOf(val)).
			Build()
	}
	return val, nil
}

func (o *Object) ToWire(_ Lookup, v any) (wire.Value, error) {
	if v == nil {
		return wire.Nil, nil
	}
	h := o.Heap.ToHandle(v)
	if h == 0 {
		return nil, errors.NotInitialized(errors.PhaseHeap, "object heap")
	}
	name := heap.TypeNameOf(v)
	Logger().Debug("object exported", zap.String("type", name), zap.Uint64("handle", uint64(h)))
	return wire.Object{Type: name, Handle: h}, nil
}

// unwrap maps a non-object wire value to its plainest Go form.
func unwrap(v wire.Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case wire.Number:
		return float64(x)
	case wire.Text:
		return string(x)
	case wire.Boolean:
		return bool(x)
	case *wire.Array:
		rows := make([][]any, x.Rows())
		for r := range rows {
			rows[r] = make([]any, x.Cols())
			for c := range rows[r] {
				rows[r][c] = unwrap(x.At(r, c))
			}
		}
		return rows
	}
	switch v.Kind() {
	case wire.KindMissing, wire.KindNil:
		return nil
	}
	return v
}
