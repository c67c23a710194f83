package heap

import (
	"sync"
	"testing"
	"time"
)

type point struct{ X, Y int }

type testObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *testObserver) OnHeapEvent(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

type releasable struct{ released bool }

func (r *releasable) Release() { r.released = true }

func TestHeap_RoundTrip(t *testing.T) {
	h := New()
	p := &point{1, 2}

	handle := h.ToHandle(p)
	if handle == 0 {
		t.Fatal("expected non-zero handle")
	}

	v, ok := h.FromHandle(handle)
	if !ok {
		t.Fatal("FromHandle failed")
	}
	if v.(*point) != p {
		t.Fatal("FromHandle returned a different object")
	}

	name, ok := h.TypeName(handle)
	if !ok || name != "*heap.point" {
		t.Fatalf("TypeName = %q, %v", name, ok)
	}
}

func TestHeap_IdentityNotEquality(t *testing.T) {
	h := New()

	a := &point{1, 2}
	b := &point{1, 2}

	if h.ToHandle(a) != h.ToHandle(a) {
		t.Fatal("same pointer should yield the same handle")
	}
	if h.ToHandle(a) == h.ToHandle(b) {
		t.Fatal("equal but distinct pointers should yield different handles")
	}

	// Values without identity always get a fresh handle.
	if h.ToHandle(point{1, 2}) == h.ToHandle(point{1, 2}) {
		t.Fatal("struct values should not share handles")
	}

	m := map[string]int{"a": 1}
	if h.ToHandle(m) != h.ToHandle(m) {
		t.Fatal("same map should yield the same handle")
	}
}

//go:noinline
func counter(n int) func() int {
	return func() int { return n }
}

func TestHeap_ClosuresGetDistinctHandles(t *testing.T) {
	h := New()
	one, two := counter(1), counter(2)

	ha := h.ToHandle(one)
	hb := h.ToHandle(two)
	if ha == hb {
		t.Fatal("closures of one literal share a handle")
	}

	v, ok := h.FromHandle(hb)
	if !ok {
		t.Fatal("FromHandle failed")
	}
	if got := v.(func() int)(); got != 2 {
		t.Fatalf("FromHandle(hb)() = %d, want 2", got)
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
}

func TestHeap_MonotonicNoReuse(t *testing.T) {
	h := New()

	h1 := h.ToHandle(&point{})
	h2 := h.ToHandle(&point{})
	if h2 <= h1 {
		t.Fatalf("handles not increasing: %d then %d", h1, h2)
	}

	if !h.Release(h1) {
		t.Fatal("Release failed")
	}
	if _, ok := h.FromHandle(h1); ok {
		t.Fatal("released handle should not resolve")
	}
	if h.Release(h1) {
		t.Fatal("double release should fail")
	}

	h3 := h.ToHandle(&point{})
	if h3 == h1 || h3 <= h2 {
		t.Fatalf("handle %d reused or not increasing after %d", h3, h2)
	}
}

func TestHeap_ReleaseThenReallocateSameObject(t *testing.T) {
	h := New()
	p := &point{}

	first := h.ToHandle(p)
	h.Release(first)
	second := h.ToHandle(p)

	if second == first {
		t.Fatal("released handle must not be handed out again")
	}
	if v, _ := h.FromHandle(second); v.(*point) != p {
		t.Fatal("new handle should reference the object")
	}
}

func TestHeap_UnknownHandle(t *testing.T) {
	h := New()
	if _, ok := h.FromHandle(0); ok {
		t.Fatal("handle 0 must be invalid")
	}
	if _, ok := h.FromHandle(7); ok {
		t.Fatal("never issued handle must be invalid")
	}
	if _, ok := h.TypeName(7); ok {
		t.Fatal("never issued handle has no type")
	}
}

func TestHeap_Observer(t *testing.T) {
	h := New()
	obs := &testObserver{}
	h.Subscribe(obs)

	p := &point{}
	handle := h.ToHandle(p)
	h.ToHandle(p) // existing, no event

	if len(obs.events) != 1 || obs.events[0].Type != EventAllocated {
		t.Fatalf("expected one allocation event, got %+v", obs.events)
	}
	if obs.events[0].Handle != handle {
		t.Fatal("wrong handle in event")
	}

	h.Release(handle)
	if len(obs.events) != 2 || obs.events[1].Type != EventReleased {
		t.Fatalf("expected release event, got %+v", obs.events)
	}

	h.Unsubscribe(obs)
	h.ToHandle(&point{})
	if len(obs.events) != 2 {
		t.Fatal("should not receive events after Unsubscribe")
	}
}

func TestHeap_Close(t *testing.T) {
	h := New()
	r := &releasable{}
	handle := h.ToHandle(r)
	h.ToHandle(&point{})

	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !r.released {
		t.Fatal("Releaser not called on Close")
	}
	if _, ok := h.FromHandle(handle); ok {
		t.Fatal("handle valid after Close")
	}
	if h.ToHandle(&point{}) != 0 {
		t.Fatal("allocation after Close should fail")
	}
	if h.Len() != 0 {
		t.Fatal("Len after Close should be 0")
	}
}

func TestHeap_Each(t *testing.T) {
	h := New()
	a, b := &point{1, 1}, &point{2, 2}
	ha := h.ToHandle(a)
	hb := h.ToHandle(b)

	var seen []Handle
	h.Each(func(handle Handle, v any) bool {
		seen = append(seen, handle)
		return true
	})
	if len(seen) != 2 || seen[0] != ha || seen[1] != hb {
		t.Fatalf("Each visited %v", seen)
	}
}

func TestHeap_EachAllowsReentry(t *testing.T) {
	h := New()
	for i := 0; i < 3; i++ {
		h.ToHandle(&point{i, i})
	}

	done := make(chan struct{})
	visited := 0
	go func() {
		defer close(done)
		h.Each(func(handle Handle, v any) bool {
			visited++
			h.Release(handle)
			h.ToHandle(&point{})
			return true
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Each deadlocked when fn released a handle")
	}
	if visited != 3 {
		t.Fatalf("visited %d handles, want 3", visited)
	}
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
}

func TestHeap_Concurrent(t *testing.T) {
	h := New()
	shared := &point{}
	const workers = 16

	var wg sync.WaitGroup
	handles := make([]Handle, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = h.ToHandle(shared)
			for j := 0; j < 100; j++ {
				own := h.ToHandle(&point{X: j})
				if v, ok := h.FromHandle(own); !ok || v.(*point).X != j {
					t.Errorf("lost object for handle %d", own)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for _, got := range handles {
		if got != handles[0] {
			t.Fatalf("concurrent allocation of one object produced %v", handles)
		}
	}
	if h.Len() != 1+workers*100 {
		t.Fatalf("Len = %d", h.Len())
	}
}
