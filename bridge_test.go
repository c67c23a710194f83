package xlbridge_test

import (
	"context"
	"testing"

	xlbridge "github.com/McLeodMoores/xl4j-sub002"
	"github.com/McLeodMoores/xl4j-sub002/runtime"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

var _ xlbridge.Bridge = (*runtime.Runtime)(nil)

func TestLookup(t *testing.T) {
	rt, err := runtime.New()
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	defer rt.Close()
	if err := rt.RegisterFunc("Double", func(x float64) float64 { return 2 * x }); err != nil {
		t.Fatalf("RegisterFunc: %v", err)
	}
	ctx := context.Background()
	if err := rt.Start(ctx, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rt.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	def, ok := xlbridge.Lookup(rt, "double")
	if !ok {
		t.Fatal("Double not found")
	}
	if got := rt.Invoke(def.ExportID, wire.Number(4)); got != wire.Number(8) {
		t.Errorf("Double(4) = %v", got)
	}
	if _, ok := xlbridge.Lookup(rt, "Triple"); ok {
		t.Error("unexpected match")
	}
}
