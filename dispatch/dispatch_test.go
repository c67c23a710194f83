package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/McLeodMoores/xl4j-sub002/convert"
	"github.com/McLeodMoores/xl4j-sub002/heap"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/member"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

type counter struct {
	Total float64
}

func newCounter(start float64) *counter { return &counter{Total: start} }

func (c *counter) Add(by float64) float64 {
	c.Total += by
	return c.Total
}

type fixture struct {
	handler *Handler
	table   *registry.Table
	heap    *heap.Heap
}

func setup(t *testing.T, exports ...registry.Export) *fixture {
	t.Helper()
	h := heap.New()
	conv, err := convert.Default(h)
	if err != nil {
		t.Fatalf("convert.Default: %v", err)
	}
	b := invoke.NewBinder(conv, invoke.ResultSimplest)

	catalog := member.NewCatalog()
	entry := member.MustType[counter]("Counter",
		member.Constructor(newCounter),
		member.Static("Zero", func() *counter { return &counter{} }),
		member.Constant("Unit", 1.0),
	)
	if err := catalog.Add(entry); err != nil {
		t.Fatalf("catalog.Add: %v", err)
	}
	catalog.Freeze()

	all := append(exports, Builtins(catalog, h, b)...)
	tbl := registry.NewTable(b)
	if err := tbl.Build(context.Background(), slices.Values(all), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tbl.Err(); err != nil {
		t.Fatalf("table errors: %v", err)
	}
	return &fixture{handler: NewHandler(tbl, h), table: tbl, heap: h}
}

func (f *fixture) call(name string, args ...wire.Value) wire.Value {
	return f.handler.InvokeName(name, args)
}

func exportOf(name string, members ...*invoke.Member) registry.Export {
	return registry.Export{Metadata: registry.Metadata{Name: name}, Members: members}
}

func TestInvoke_UnknownExport(t *testing.T) {
	f := setup(t)
	if got := f.handler.Invoke(999, nil); got != Failed {
		t.Fatalf("got %v, want %v", got, Failed)
	}
}

func TestInvoke_StaleReceiver(t *testing.T) {
	add := member.MustType[counter]("Counter").Method("Add")
	f := setup(t, exportOf("CounterAdd", add...))

	got := f.call("CounterAdd", wire.Object{Type: "counter", Handle: 7}, wire.Number(1))
	if got != Stale {
		t.Fatalf("got %v, want %v", got, Stale)
	}
}

func TestInvoke_Overloads(t *testing.T) {
	f := setup(t, exportOf("Add",
		member.MustFunc("add", func(a, b int) int { return a + b }),
		member.MustFunc("add", func(a, b float64) float64 { return a + b }),
	))

	if got := f.call("Add", wire.Number(2), wire.Number(3)); got != wire.Number(5) {
		t.Errorf("Add(2, 3) = %v", got)
	}
	// The int overload rejects fractions; the walk falls through to float64.
	if got := f.call("Add", wire.Number(2.5), wire.Number(1)); got != wire.Number(3.5) {
		t.Errorf("Add(2.5, 1) = %v", got)
	}
	if got := f.call("Add", wire.Text("x"), wire.Number(1)); got != Failed {
		t.Errorf("Add(x, 1) = %v", got)
	}
}

func TestInvoke_ExhaustionLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	f := setup(t, exportOf("Fail",
		member.MustFunc("fail", func() (float64, error) { return 0, fmt.Errorf("nope") }),
	))
	if got := f.call("Fail"); got != Failed {
		t.Fatalf("got %v", got)
	}
	warns := logs.FilterMessage("no candidate succeeded").All()
	if len(warns) != 1 || warns[0].ContextMap()["name"] != "Fail" {
		t.Fatalf("warnings = %v", warns)
	}
}

func TestInvoke_PanicIsContained(t *testing.T) {
	f := setup(t, exportOf("Boom",
		member.MustFunc("boom", func(xs []float64) float64 { return xs[10] }),
	))
	if got := f.call("Boom", wire.Row(wire.Number(1))); got != Failed {
		t.Fatalf("got %v", got)
	}
}

func TestInvoke_Variadic(t *testing.T) {
	f := setup(t, exportOf("Join",
		member.MustFunc("join", func(sep string, parts ...string) string {
			return strings.Join(parts, sep)
		}),
	))
	got := f.call("Join", wire.Text("-"), wire.Text("a"), wire.Text("b"), wire.Missing, wire.Missing)
	if got != wire.Text("a-b") {
		t.Fatalf("got %v", got)
	}
	if got := f.call("Join", wire.Text("-")); got != wire.Text("") {
		t.Fatalf("empty tail: got %v", got)
	}
}

func TestPrepare(t *testing.T) {
	def := &registry.FunctionDefinition{
		Metadata: registry.Metadata{
			ArgNames: []string{"a", "b"},
			Defaults: map[string]wire.Value{"b": wire.Number(10)},
		},
		Params:   []typedesc.Descriptor{typedesc.Any, typedesc.Any, typedesc.Any},
		Variadic: true,
	}
	in := []wire.Value{wire.Number(1), wire.Missing, wire.Text("x"), wire.Missing, nil}
	got := Prepare(def, in)
	want := []wire.Value{wire.Number(1), wire.Number(10), wire.Text("x")}
	if !slices.EqualFunc(got, want, wire.Equal) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if in[1] != wire.Missing {
		t.Error("Prepare modified its input")
	}
}

func TestPrepare_SingleCell(t *testing.T) {
	def := &registry.FunctionDefinition{
		Params: []typedesc.Descriptor{typedesc.For[float64](), typedesc.For[[]float64]()},
	}
	cell := wire.Row(wire.Number(4))
	got := Prepare(def, []wire.Value{cell, cell})
	if got[0] != wire.Number(4) {
		t.Errorf("scalar parameter got %v", got[0])
	}
	if !wire.Equal(got[1], cell) {
		t.Errorf("array parameter got %v", got[1])
	}
}

func TestInvoke_Defaults(t *testing.T) {
	exp := exportOf("Scale", member.MustFunc("scale", func(x, by float64) float64 { return x * by }))
	exp.Metadata.ArgNames = []string{"x", "by"}
	exp.Metadata.Defaults = map[string]wire.Value{"by": wire.Number(2)}
	f := setup(t, exp)

	if got := f.call("Scale", wire.Number(4), wire.Missing); got != wire.Number(8) {
		t.Fatalf("got %v", got)
	}
}

func TestBuiltins(t *testing.T) {
	f := setup(t)

	obj := f.call("JConstruct", wire.Text("Counter"), wire.Number(5))
	ref, ok := obj.(wire.Object)
	if !ok {
		t.Fatalf("JConstruct = %v", obj)
	}

	steps := []struct {
		name string
		got  wire.Value
		want wire.Value
	}{
		{"method", f.call("JMethod", ref, wire.Text("add"), wire.Number(2)), wire.Number(7)},
		{"field", f.call("JField", ref, wire.Text("Total")), wire.Number(7)},
		{"type", f.call("JType", ref), wire.Text("Counter")},
		{"static field", f.call("JStaticField", wire.Text("Counter"), wire.Text("Unit")), wire.Number(1)},
		{"unknown method", f.call("JMethod", ref, wire.Text("Nope")), Failed},
		{"unknown type", f.call("JConstruct", wire.Text("Nope")), Failed},
		{"release", f.call("JRelease", ref), wire.Boolean(true)},
		{"after release", f.call("JMethod", ref, wire.Text("Add"), wire.Number(1)), Stale},
		{"release twice", f.call("JRelease", ref), Stale},
	}
	for _, s := range steps {
		if diff := cmp.Diff(s.want, s.got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", s.name, diff)
		}
	}

	zero := f.call("JStaticMethod", wire.Text("Counter"), wire.Text("Zero"))
	if zero.Kind() != wire.KindObject {
		t.Fatalf("JStaticMethod = %v", zero)
	}
	if f.heap.Len() != 1 {
		t.Errorf("heap holds %d objects, want 1", f.heap.Len())
	}
}
