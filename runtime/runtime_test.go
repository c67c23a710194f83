package runtime

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/McLeodMoores/xl4j-sub002/config"
	"github.com/McLeodMoores/xl4j-sub002/dispatch"
	"github.com/McLeodMoores/xl4j-sub002/member"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

type account struct {
	Owner   string
	Balance float64
}

func openAccount(owner string) *account { return &account{Owner: owner} }

func (a *account) Deposit(amount float64) float64 {
	a.Balance += amount
	return a.Balance
}

type geometry struct{}

func (geometry) Category() string           { return "Geometry" }
func (geometry) Hypot(a, b float64) float64 { return math.Hypot(a, b) }
func (geometry) Area(w, h float64) float64  { return w * h }

type textFuncs struct{}

func (textFuncs) Category() string { return "Text" }
func (textFuncs) Exports() map[string]any {
	return map[string]any{
		"Upper": strings.ToUpper,
		"Pad": []any{
			func(s string, n int) string { return s + strings.Repeat(" ", n) },
			func(n int, s string) string { return strings.Repeat(" ", n) + s },
		},
	}
}

type recorder struct {
	regs []registry.Registration
	mu   sync.Mutex
}

func (r *recorder) Register(_ context.Context, reg registry.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, reg)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, reg := range r.regs {
		out = append(out, reg.Name)
	}
	return out
}

func start(t *testing.T, rt *Runtime) *recorder {
	t.Helper()
	rec := &recorder{}
	ctx := context.Background()
	if err := rt.Start(ctx, rec); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rt.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return rec
}

func TestRuntime_EndToEnd(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	if err := rt.RegisterFunc("Scale", func(x, by float64) float64 { return x * by },
		Category("Math"), Args("x", "by"), ThreadSafe()); err != nil {
		t.Fatalf("RegisterFunc: %v", err)
	}
	if err := rt.RegisterOverloads("Add", []any{
		func(a, b int) int { return a + b },
		func(a, b float64) float64 { return a + b },
	}); err != nil {
		t.Fatalf("RegisterOverloads: %v", err)
	}
	if err := rt.RegisterProvider(geometry{}); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}
	if err := rt.RegisterProvider(textFuncs{}); err != nil {
		t.Fatalf("RegisterProvider(explicit): %v", err)
	}
	if err := rt.RegisterType(member.MustType[account]("Account", member.Constructor(openAccount))); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}

	rec := start(t, rt)

	want := []string{"Scale", "Add", "Area", "Hypot", "Pad", "Upper",
		"JConstruct", "JMethod", "JStaticMethod", "JField", "JStaticField", "JRelease", "JType"}
	if diff := cmp.Diff(want, rec.names()); diff != "" {
		t.Errorf("registrations mismatch (-want +got):\n%s", diff)
	}
	if len(rt.Exports()) != len(want) {
		t.Errorf("Exports() = %d definitions", len(rt.Exports()))
	}

	tests := []struct {
		name string
		args []wire.Value
		want wire.Value
	}{
		{"Scale", []wire.Value{wire.Number(3), wire.Number(4)}, wire.Number(12)},
		{"add", []wire.Value{wire.Number(2), wire.Number(3)}, wire.Number(5)},
		{"ADD", []wire.Value{wire.Number(0.5), wire.Number(1)}, wire.Number(1.5)},
		{"Hypot", []wire.Value{wire.Number(3), wire.Number(4)}, wire.Number(5)},
		{"Upper", []wire.Value{wire.Text("abc")}, wire.Text("ABC")},
		{"Pad", []wire.Value{wire.Text("x"), wire.Number(2)}, wire.Text("x  ")},
		{"Pad", []wire.Value{wire.Number(1), wire.Text("y")}, wire.Text(" y")},
		{"Scale", []wire.Value{wire.Text("a"), wire.Number(1)}, dispatch.Failed},
		{"Nope", nil, dispatch.Failed},
	}
	for _, tt := range tests {
		if got := rt.InvokeName(tt.name, tt.args...); !wire.Equal(got, tt.want) {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}

	def, ok := rt.table.Lookup("Scale")
	if !ok {
		t.Fatal("Scale not defined")
	}
	if got := rt.Invoke(def.ExportID, wire.Number(2), wire.Number(2)); got != wire.Number(4) {
		t.Errorf("Invoke by id = %v", got)
	}
}

func TestRuntime_Objects(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()
	if err := rt.RegisterType(member.MustType[account]("Account", member.Constructor(openAccount))); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	start(t, rt)

	ref := rt.InvokeName("JConstruct", wire.Text("Account"), wire.Text("ada"))
	obj, ok := ref.(wire.Object)
	if !ok {
		t.Fatalf("JConstruct = %v", ref)
	}
	if rt.Heap().Len() != 1 {
		t.Fatalf("heap holds %d objects", rt.Heap().Len())
	}

	if got := rt.InvokeName("JMethod", obj, wire.Text("deposit"), wire.Number(10)); got != wire.Number(10) {
		t.Errorf("Deposit = %v", got)
	}
	if got := rt.InvokeName("JField", obj, wire.Text("Owner")); got != wire.Text("ada") {
		t.Errorf("Owner = %v", got)
	}
	if got := rt.InvokeName("JRelease", obj); got != wire.Boolean(true) {
		t.Errorf("JRelease = %v", got)
	}
	if got := rt.InvokeName("JMethod", obj, wire.Text("Deposit"), wire.Number(1)); got != dispatch.Stale {
		t.Errorf("call on released object = %v", got)
	}
	if diff := cmp.Diff([]string{"Account"}, rt.Types()); diff != "" {
		t.Errorf("Types mismatch (-want +got):\n%s", diff)
	}
}

func TestRuntime_Config(t *testing.T) {
	cfg, err := config.Parse([]byte(`
function "Scale" {
  args     = ["x", "by"]
  defaults = { by = 10 }
}
`), "test.hcl")
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}

	rt, err := New(WithConfig(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()
	if err := rt.RegisterFunc("Scale", func(x, by float64) float64 { return x * by }); err != nil {
		t.Fatalf("RegisterFunc: %v", err)
	}
	rec := start(t, rt)

	if got := rt.InvokeName("Scale", wire.Number(3), wire.Missing); got != wire.Number(30) {
		t.Errorf("Scale(3, missing) = %v, want 30", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, reg := range rec.regs {
		if reg.Name == "Scale" {
			if diff := cmp.Diff([]string{"x", "by"}, reg.ArgNames); diff != "" {
				t.Errorf("ArgNames mismatch (-want +got):\n%s", diff)
			}
		}
	}
}

func TestRuntime_Lifecycle(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()
	start(t, rt)

	if err := rt.RegisterFunc("Late", func() int { return 1 }); err == nil {
		t.Error("registration after Start should fail")
	}
	if err := rt.Start(context.Background(), nil); err == nil {
		t.Error("second Start should fail")
	}
}

func TestRuntime_InvalidRegistrations(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	if err := rt.RegisterFunc("", func() {}); err == nil {
		t.Error("empty name should fail")
	}
	if err := rt.RegisterFunc("NotAFunc", 42); err == nil {
		t.Error("non-function should fail")
	}
	if err := rt.RegisterMembers("Empty", nil); err == nil {
		t.Error("empty member list should fail")
	}
	if err := rt.RegisterProvider(empty{}); err == nil {
		t.Error("provider without methods should fail")
	}
}

type empty struct{}

func (empty) Category() string { return "" }

func TestRuntime_HeapLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	rt, err := New(WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { setLoggers(prev) })
	defer rt.Close()

	h := rt.Heap().ToHandle(&account{})
	rt.Heap().Release(h)

	events := logs.FilterMessage("heap").All()
	if len(events) != 2 {
		t.Fatalf("got %d heap log entries, want 2", len(events))
	}
	if got := events[1].ContextMap()["event"]; got != "released" {
		t.Errorf("second event = %v", got)
	}
}
