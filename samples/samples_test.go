package samples

import (
	"context"
	"testing"

	"github.com/McLeodMoores/xl4j-sub002/dispatch"
	"github.com/McLeodMoores/xl4j-sub002/runtime"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

func setup(t *testing.T) *runtime.Runtime {
	t.Helper()
	rt, err := runtime.New()
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	if err := Register(rt); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ctx := context.Background()
	if err := rt.Start(ctx, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rt.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return rt
}

func TestSamples(t *testing.T) {
	rt := setup(t)

	tests := []struct {
		name string
		args []wire.Value
		want wire.Value
	}{
		{"Hypot", []wire.Value{wire.Number(6), wire.Number(8)}, wire.Number(10)},
		{"Sum", []wire.Value{wire.Number(1), wire.Number(2), wire.Number(3)}, wire.Number(6)},
		{"Factorial", []wire.Value{wire.Number(5)}, wire.Number(120)},
		{"Factorial", []wire.Value{wire.Number(-1)}, dispatch.Failed},
		{"Add", []wire.Value{wire.Number(2), wire.Number(3)}, wire.Number(5)},
		{"Add", []wire.Value{wire.Text("a"), wire.Text("b")}, wire.Text("ab")},
		{"Join", []wire.Value{wire.Text("-"), wire.Text("a"), wire.Text("b"), wire.Missing}, wire.Text("a-b")},
		{"AddDays", []wire.Value{wire.Number(36526), wire.Number(1)}, wire.Number(36527)},
		{"Words", []wire.Value{wire.Text("a b")}, wire.Row(wire.Text("a"), wire.Text("b"))},
		{"Transpose",
			[]wire.Value{wire.NewArray([][]wire.Value{{wire.Number(1), wire.Number(2)}})},
			wire.Column(wire.Number(1), wire.Number(2))},
	}
	for _, tt := range tests {
		if got := rt.InvokeName(tt.name, tt.args...); !wire.Equal(got, tt.want) {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestSamples_Counter(t *testing.T) {
	rt := setup(t)

	c, ok := rt.InvokeName("NewCounter", wire.Text("clicks")).(wire.Object)
	if !ok {
		t.Fatal("NewCounter did not return an object")
	}
	rt.InvokeName("JMethod", c, wire.Text("Increment"), wire.Number(2))
	if got := rt.InvokeName("JMethod", c, wire.Text("Increment"), wire.Number(3)); got != wire.Number(5) {
		t.Errorf("Increment = %v, want 5", got)
	}
	if got := rt.InvokeName("JType", c); got != wire.Text("Counter") {
		t.Errorf("JType = %v", got)
	}
	if got := rt.InvokeName("JStaticField", wire.Text("Counter"), wire.Text("Step")); got != wire.Number(1) {
		t.Errorf("Step = %v", got)
	}
}
