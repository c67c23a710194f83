package heap

import (
	"errors"
	"reflect"
	"sync"
)

// ErrClosed is returned when allocating from a closed heap.
var ErrClosed = errors.New("heap closed")

// store is the append-only handle table behind a Heap.
// Handles are indices into entries plus one and are never reused.
type store struct {
	entries  []entry
	identity map[identityKey]Handle
	mu       sync.RWMutex
	live     int
	closed   bool
}

type entry struct {
	value    any
	typeName string
	key      identityKey
	keyed    bool
	valid    bool
}

// identityKey identifies a reference-shaped value by its dynamic type and
// address. Values without a stable address have no key.
type identityKey struct {
	typ reflect.Type
	ptr uintptr
}

func newStore() *store {
	return &store{
		entries:  make([]entry, 0, 64),
		identity: make(map[identityKey]Handle),
	}
}

func identityOf(v any) (identityKey, bool) {
	if v == nil {
		return identityKey{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	// Func values are excluded: Pointer reports the code pointer, which
	// distinct closures of one literal share.
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return identityKey{}, false
		}
		return identityKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	default:
		return identityKey{}, false
	}
}

func (s *store) allocate(v any, typeName string) (Handle, bool, error) {
	key, keyed := identityOf(v)

	if keyed {
		s.mu.RLock()
		h, ok := s.identity[key]
		s.mu.RUnlock()
		if ok {
			return h, false, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false, ErrClosed
	}
	if keyed {
		if h, ok := s.identity[key]; ok {
			return h, false, nil
		}
	}

	s.entries = append(s.entries, entry{
		value:    v,
		typeName: typeName,
		key:      key,
		keyed:    keyed,
		valid:    true,
	})
	h := Handle(len(s.entries))
	if keyed {
		s.identity[key] = h
	}
	s.live++
	return h, true, nil
}

func (s *store) get(h Handle) (entry, bool) {
	if h == 0 {
		return entry{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := h - 1
	if idx >= Handle(len(s.entries)) {
		return entry{}, false
	}
	e := s.entries[idx]
	if !e.valid {
		return entry{}, false
	}
	return e, true
}

func (s *store) release(h Handle) (entry, bool) {
	if h == 0 {
		return entry{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := h - 1
	if idx >= Handle(len(s.entries)) {
		return entry{}, false
	}
	e := &s.entries[idx]
	if !e.valid {
		return entry{}, false
	}

	released := *e
	if e.keyed {
		delete(s.identity, e.key)
	}
	e.valid = false
	e.value = nil
	s.live--
	return released, true
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

type liveEntry struct {
	handle Handle
	entry  entry
}

// each calls fn on a snapshot of the live entries taken under the read lock,
// so fn may allocate or release.
func (s *store) each(fn func(Handle, entry) bool) {
	s.mu.RLock()
	live := make([]liveEntry, 0, s.live)
	for i, e := range s.entries {
		if e.valid {
			live = append(live, liveEntry{handle: Handle(i + 1), entry: e})
		}
	}
	s.mu.RUnlock()

	for _, le := range live {
		if !fn(le.handle, le.entry) {
			break
		}
	}
}

// close invalidates every entry and returns the values that were live.
// The entries slice is kept so that issued handles are never handed out again.
func (s *store) close() []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var values []any
	for i := range s.entries {
		if s.entries[i].valid {
			values = append(values, s.entries[i].value)
			s.entries[i].valid = false
			s.entries[i].value = nil
		}
	}
	s.identity = nil
	s.live = 0
	return values
}
