// Package runtime is the entry point of the bridge.
//
// # Quick Start
//
//	rt, err := runtime.New(runtime.WithLogger(log))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	// Export a function
//	rt.RegisterFunc("Scale", func(x, by float64) float64 { return x * by },
//	    runtime.Category("Math"), runtime.Args("x", "by"))
//
//	// Export overloads under one name
//	rt.RegisterOverloads("Add", []any{
//	    func(a, b int) int { return a + b },
//	    func(a, b float64) float64 { return a + b },
//	})
//
//	// Make a type reachable through JConstruct, JMethod and friends
//	rt.RegisterType(member.MustType[Counter]("Counter",
//	    member.Constructor(NewCounter)))
//
//	// Build the export table and register it with the host
//	rt.Start(ctx, host)
//	rt.Wait(ctx)
//
//	// Calls come in by export ID
//	result := rt.Invoke(id, wire.Number(2), wire.Number(3))
//
// # Providers
//
// A struct implementing Provider exports all of its methods:
//
//	type MathFuncs struct{}
//
//	func (MathFuncs) Category() string          { return "Math" }
//	func (MathFuncs) Hypot(a, b float64) float64 { return math.Hypot(a, b) }
//
//	rt.RegisterProvider(MathFuncs{})
//
// # Configuration
//
// WithConfig applies a file loaded by the config package. Its function
// blocks override export metadata, and its defaults, result mode and
// argument limit apply to the whole table.
//
// # Failures
//
// Invoke never returns a Go error. Unknown exports and calls with no
// working candidate produce #NULL!; a released or unknown object handle
// produces #REF!. The cause is logged.
package runtime
