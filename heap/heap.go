package heap

import (
	"reflect"
	"sync"
)

// Heap maps opaque handles to live native objects and back.
//
// Allocation is idempotent by identity: the same pointer, map or chan always
// yields the same handle while it is live. Values without identity (structs,
// numbers, strings, slices, funcs) get a fresh handle on every call.
// Handles are never reused, so a released handle stays invalid for the
// lifetime of the heap.
type Heap struct {
	store     *store
	observers []Observer
	obsMu     sync.RWMutex
}

// New creates an empty heap.
func New() *Heap {
	return &Heap{store: newStore()}
}

// ToHandle returns the handle for v, allocating one if needed.
// It returns 0 if the heap is closed.
func (h *Heap) ToHandle(v any) Handle {
	name := TypeNameOf(v)
	handle, created, err := h.store.allocate(v, name)
	if err != nil {
		return 0
	}
	if created {
		h.notify(Event{
			Type:     EventAllocated,
			Handle:   handle,
			TypeName: name,
			Value:    v,
		})
	}
	return handle
}

// FromHandle returns the object referenced by handle.
func (h *Heap) FromHandle(handle Handle) (any, bool) {
	e, ok := h.store.get(handle)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// TypeName returns the type tag recorded when handle was allocated.
func (h *Heap) TypeName(handle Handle) (string, bool) {
	e, ok := h.store.get(handle)
	if !ok {
		return "", false
	}
	return e.typeName, true
}

// Release invalidates handle and reports whether it was live.
// Objects implementing Releaser are released.
func (h *Heap) Release(handle Handle) bool {
	e, ok := h.store.release(handle)
	if !ok {
		return false
	}
	if r, ok := e.value.(Releaser); ok {
		r.Release()
	}
	h.notify(Event{
		Type:     EventReleased,
		Handle:   handle,
		TypeName: e.typeName,
		Value:    e.value,
	})
	return true
}

// Len returns the number of live handles.
func (h *Heap) Len() int {
	return h.store.len()
}

// Each iterates over the handles live when it was called, in allocation
// order. fn may call ToHandle or Release; handles allocated during the
// iteration are not visited.
func (h *Heap) Each(fn func(Handle, any) bool) {
	h.store.each(func(handle Handle, e entry) bool {
		return fn(handle, e.value)
	})
}

// Subscribe adds an observer for lifecycle events.
func (h *Heap) Subscribe(o Observer) {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()
	h.observers = append(h.observers, o)
}

// Unsubscribe removes an observer.
func (h *Heap) Unsubscribe(o Observer) {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()
	for i, obs := range h.observers {
		if obs == o {
			h.observers = append(h.observers[:i], h.observers[i+1:]...)
			return
		}
	}
}

// Close releases every live object and stops further allocation.
func (h *Heap) Close() error {
	for _, v := range h.store.close() {
		if r, ok := v.(Releaser); ok {
			r.Release()
		}
	}
	return nil
}

func (h *Heap) notify(e Event) {
	h.obsMu.RLock()
	defer h.obsMu.RUnlock()
	for _, o := range h.observers {
		o.OnHeapEvent(e)
	}
}

// TypeNameOf returns the human-readable type tag used for object references.
func TypeNameOf(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
