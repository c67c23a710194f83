package registry

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/McLeodMoores/xl4j-sub002/convert"
	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/heap"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

func newBinder(t *testing.T) *invoke.Binder {
	t.Helper()
	r, err := convert.Default(heap.New())
	if err != nil {
		t.Fatalf("convert.Default: %v", err)
	}
	return invoke.NewBinder(r, invoke.ResultSimplest)
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func fn(params ...typedesc.Descriptor) *invoke.Member {
	return &invoke.Member{
		Name:   "f",
		Static: true,
		Params: params,
		Result: typedesc.For[float64](),
		Call:   func(any, []any) (any, error) { return 1.0, nil },
	}
}

func export(name string, members ...*invoke.Member) Export {
	return Export{Metadata: Metadata{Name: name}, Members: members}
}

type recordingHost struct {
	mu   sync.Mutex
	regs []Registration
}

func (h *recordingHost) Register(_ context.Context, r Registration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.regs = append(h.regs, r)
	return nil
}

func TestBuild_IDsAndDuplicates(t *testing.T) {
	logs := observe(t)
	tbl := NewTable(newBinder(t))
	host := &recordingHost{}
	num := typedesc.For[float64]()

	err := tbl.Build(context.Background(), slices.Values([]Export{
		export("Add", fn(num, num)),
		export("Neg", fn(num)),
		export("add", fn(num)),
		export("Sub", fn(num, num)),
	}), host)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var ids []uint32
	for _, d := range tbl.Definitions() {
		ids = append(ids, d.ExportID)
	}
	if diff := cmp.Diff([]uint32{0, 1, 3}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if d, ok := tbl.Lookup("ADD"); !ok || d.ExportID != 0 {
		t.Errorf("first registration should win, got %v", d)
	}
	if _, ok := tbl.Get(2); ok {
		t.Error("dropped duplicate should not be registered")
	}
	if !stderrors.Is(tbl.Err(), errors.ErrConflict) {
		t.Errorf("Err() = %v, want conflict", tbl.Err())
	}

	warns := logs.FilterMessage("duplicate export name dropped").All()
	if len(warns) != 1 || warns[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warning, got %v", warns)
	}
	fields := warns[0].ContextMap()
	if fields["name"] != "add" || fields["export_id"] != uint32(2) {
		t.Errorf("warning fields = %v", fields)
	}
	if len(host.regs) != 3 {
		t.Errorf("host saw %d registrations, want 3", len(host.regs))
	}
}

func TestBuild_ConfigurationError(t *testing.T) {
	observe(t)
	tbl := NewTable(newBinder(t))
	bad := export("Bad", fn())
	bad.Metadata.Volatile = true
	bad.Metadata.ThreadSafe = true

	if err := tbl.Build(context.Background(), slices.Values([]Export{bad, export("Good", fn())}), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !stderrors.Is(tbl.Err(), errors.ErrConfiguration) {
		t.Fatalf("Err() = %v, want configuration error", tbl.Err())
	}
	if _, ok := tbl.Lookup("Bad"); ok {
		t.Error("invalid export registered")
	}
	if d, ok := tbl.Lookup("Good"); !ok || d.ExportID != 1 {
		t.Errorf("Good = %v, %v", d, ok)
	}
}

func TestBuild_Unbindable(t *testing.T) {
	observe(t)
	tbl := NewTable(newBinder(t))
	exp := export("Raw", fn())
	exp.Metadata.Mode = invoke.ResultPassthrough
	if err := tbl.Build(context.Background(), slices.Values([]Export{exp}), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	var e *errors.Error
	if !stderrors.As(tbl.Err(), &e) || e.Phase != errors.PhaseBind {
		t.Fatalf("Err() = %v, want a bind failure", tbl.Err())
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d", tbl.Len())
	}
}

func TestStart_Barrier(t *testing.T) {
	tbl := NewTable(newBinder(t))
	release := make(chan struct{})
	host := HostFunc(func(context.Context, Registration) error {
		<-release
		return nil
	})
	tbl.Start(context.Background(), slices.Values([]Export{export("F", fn())}), host)

	got := make(chan bool, 1)
	go func() {
		_, ok := tbl.Get(0)
		got <- ok
	}()

	select {
	case <-got:
		t.Fatal("Get returned before the build finished")
	case <-time.After(20 * time.Millisecond):
	}
	if tbl.Ready() {
		t.Fatal("table ready too early")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := tbl.Wait(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline", err)
	}

	close(release)
	select {
	case ok := <-got:
		if !ok {
			t.Fatal("export 0 missing")
		}
	case <-time.After(time.Second):
		t.Fatal("Get still blocked")
	}
}

func TestSignature(t *testing.T) {
	num := typedesc.For[float64]()
	tests := []struct {
		name     string
		md       Metadata
		params   []typedesc.Descriptor
		variadic bool
		want     string
	}{
		{"plain", Metadata{}, []typedesc.Descriptor{num, num}, false, "QQQ"},
		{"reference", Metadata{}, []typedesc.Descriptor{typedesc.Any}, false, "QU"},
		{"volatile", Metadata{Volatile: true}, nil, false, "Q!"},
		{"thread safe", Metadata{ThreadSafe: true}, []typedesc.Descriptor{num}, false, "QQ$"},
		{"macro", Metadata{MacroEquivalent: true}, nil, false, "Q#"},
		{"variadic", Metadata{}, []typedesc.Descriptor{num, typedesc.Any}, true, "QQUUUU"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Signature(tt.md, tt.params, tt.variadic, 5)
			if err != nil {
				t.Fatalf("Signature: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	full, err := Signature(Metadata{}, []typedesc.Descriptor{num}, true, 0)
	if err != nil || len(full) != 1+DefaultMaxArguments {
		t.Errorf("default padding: len %d, err %v", len(full), err)
	}
	if _, err := Signature(Metadata{Volatile: true, MacroEquivalent: true}, nil, false, 0); !stderrors.Is(err, errors.ErrConfiguration) {
		t.Errorf("combined flags: err = %v", err)
	}
}

type counter struct{ n int }

type fakeResolver map[heap.Handle]any

func (r fakeResolver) Receiver(v wire.Value) (any, error) {
	ref, ok := v.(wire.Object)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDispatch, nil, "receiver", wire.KindOf(v).String())
	}
	obj, ok := r[ref.Handle]
	if !ok {
		return nil, errors.StaleHandle(uint64(ref.Handle))
	}
	return obj, nil
}

func TestOverloads_Resolve(t *testing.T) {
	declaring := typedesc.For[counter]()
	method := func(p typedesc.Descriptor) *invoke.Member {
		return &invoke.Member{
			Name:      "Add",
			Kind:      invoke.KindMethod,
			Declaring: declaring,
			Params:    []typedesc.Descriptor{p},
			Call:      func(any, []any) (any, error) { return nil, nil },
		}
	}
	target, err := NewOverloads(newBinder(t), []*invoke.Member{
		method(typedesc.For[int]()),
		method(typedesc.For[string]()),
	})
	if err != nil {
		t.Fatalf("NewOverloads: %v", err)
	}
	params, variadic := target.Params()
	if len(params) != 2 || variadic {
		t.Fatalf("params = %v, %v", params, variadic)
	}

	c := &counter{}
	r := fakeResolver{1: c}
	call, err := target.Resolve(r, []wire.Value{wire.Object{Handle: 1}, wire.Text("x")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if call.Receiver != c || len(call.Args) != 1 {
		t.Fatalf("call = %+v", call)
	}
	if call.Candidates[0] == nil || call.Candidates[1] != nil {
		t.Fatalf("only the string overload should bind: %v", call.Candidates)
	}
	if call.Candidates[0].Member().Params[0].String() != "string" {
		t.Errorf("bound %s", call.Candidates[0].Member())
	}

	again, _ := target.Resolve(r, []wire.Value{wire.Object{Handle: 1}, wire.Text("y")})
	if &again.Candidates[0] != &call.Candidates[0] {
		t.Error("binding for the same kinds should be cached")
	}

	if _, err := target.Resolve(r, []wire.Value{wire.Object{Handle: 9}}); !stderrors.Is(err, errors.ErrStaleHandle) {
		t.Errorf("stale receiver: err = %v", err)
	}
}

func TestBound_NaturalKinds(t *testing.T) {
	m := fn(typedesc.For[float64](), typedesc.For[string]())
	target, err := NewBound(newBinder(t), m)
	if err != nil {
		t.Fatalf("NewBound: %v", err)
	}
	inv := target.Invoker()
	if inv.Member() != m {
		t.Fatalf("Invoker bound %s", inv.Member())
	}
	if diff := cmp.Diff([]wire.Kind{wire.KindNumber, wire.KindText}, inv.Kinds()); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	call, err := target.Resolve(fakeResolver{}, []wire.Value{wire.Number(1), wire.Text("a")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(call.Candidates) != 1 || call.Candidates[0] != inv {
		t.Fatalf("candidates = %v", call.Candidates)
	}
}

func TestOverloads_MixedInstance(t *testing.T) {
	inst := &invoke.Member{Name: "M", Kind: invoke.KindMethod, Call: func(any, []any) (any, error) { return nil, nil }}
	_, err := NewOverloads(newBinder(t), []*invoke.Member{inst, fn()})
	if !stderrors.Is(err, errors.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRegistration(t *testing.T) {
	observe(t)
	tbl := NewTable(newBinder(t), WithMaxArguments(4))
	join := &invoke.Member{
		Name:     "Join",
		Static:   true,
		Variadic: true,
		Params:   []typedesc.Descriptor{typedesc.For[string](), typedesc.For[[]string]()},
		Result:   typedesc.For[string](),
		Call: func(_ any, args []any) (any, error) {
			return strings.Join(args[1].([]string), args[0].(string)), nil
		},
	}
	exp := export("Join", join)
	exp.Metadata.ArgNames = []string{"sep"}
	exp.Metadata.Category = "Text"

	host := &recordingHost{}
	if err := tbl.Build(context.Background(), slices.Values([]Export{exp}), host); err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := Registration{
		ExportID:  0,
		Name:      "Join",
		Signature: "QQQQQ",
		Variadic:  true,
		Category:  "Text",
		ArgNames:  []string{"sep", "arg1"},
	}
	if diff := cmp.Diff([]Registration{want}, host.regs); diff != "" {
		t.Errorf("registration mismatch (-want +got):\n%s", diff)
	}
	d, _ := tbl.Get(0)
	if d.Fixed() != 1 {
		t.Errorf("Fixed = %d", d.Fixed())
	}
}

func TestMetadata_Default(t *testing.T) {
	md := Metadata{ArgNames: []string{"x"}, Defaults: map[string]wire.Value{"x": wire.Number(1), "arg1": wire.Text("d")}}
	if v, ok := md.Default(0); !ok || v != wire.Number(1) {
		t.Errorf("Default(0) = %v, %v", v, ok)
	}
	if v, ok := md.Default(1); !ok || v != wire.Text("d") {
		t.Errorf("Default(1) = %v, %v", v, ok)
	}
	if _, ok := md.Default(2); ok {
		t.Error("Default(2) should be absent")
	}
}
