// Package heap provides the opaque handle table that lets foreign values
// reference native objects.
//
// # Handle Table
//
// The Heap maps 64-bit handles to Go values:
//
//	h := heap.New()
//
//	// Allocate (or find) a handle
//	handle := h.ToHandle(counter)
//
//	// Resolve a handle
//	v, ok := h.FromHandle(handle)
//
//	// Explicitly invalidate a handle
//	h.Release(handle)
//
// # Identity
//
// ToHandle is idempotent by identity, not by equality. Two calls with the
// same pointer return the same handle; two equal but distinct structs get
// different handles.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	h.Subscribe(myObserver) // implements OnHeapEvent(heap.Event)
//
// # Memory Management
//
// Handles are not garbage collected. A handle stays valid until Release is
// called or the heap is closed, so a long-running session that never
// releases handles grows without bound.
package heap
