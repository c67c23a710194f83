package heap

// Handle is an opaque reference to a native object held by a Heap.
// Handle 0 is reserved and always invalid.
type Handle uint64

// EventType identifies a heap lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventReleased
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Event represents a heap lifecycle event.
type Event struct {
	Value    any
	TypeName string
	Handle   Handle
	Type     EventType
}

// Observer receives notifications about heap lifecycle events.
type Observer interface {
	OnHeapEvent(Event)
}

// Releaser is optionally implemented by native objects that need cleanup
// when their handle is released or the heap is closed.
type Releaser interface {
	Release()
}
