// Package xlbridge exposes Go functions and objects to a spreadsheet host.
//
// The host calls native code through a fixed set of registered exports.
// Every call arrives as a list of wire values (numbers, text, booleans,
// errors, arrays, object references) and must return one wire value. The
// bridge converts between wire values and Go values, picks the overload
// that fits the arguments, and keeps Go objects alive behind opaque handles
// so that worksheets can hold on to them between calls.
//
// # Architecture Overview
//
//	xlbridge/            Root package with the Bridge interface
//	├── runtime/         High-level API: register exports, start, invoke
//	├── wire/            Host-side value model and its text form
//	├── typedesc/        Descriptors of Go types used for converter lookup
//	├── convert/         Prioritized wire <-> Go converter registry
//	├── member/          Reflection over Go functions, methods and fields
//	├── invoke/          Binding members to converters and calling them
//	├── registry/        Export table, IDs and host signatures
//	├── dispatch/        Call handler and the reflective J* builtins
//	├── heap/            Handle table for objects returned to the host
//	├── config/          HCL configuration file
//	├── errors/          Structured error types
//	└── samples/         Demonstration exports
//
// # Quick Start
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	rt.RegisterFunc("Hypot", math.Hypot, runtime.Category("Math"))
//	rt.Start(ctx, host)
//	rt.Wait(ctx)
//
//	rt.InvokeName("Hypot", wire.Number(3), wire.Number(4)) // 5
//
// # Failure reporting
//
// Calls never fail with a Go error. A call that cannot be completed returns
// #NULL!, and a call on a released object returns #REF!. Details go to the
// zap logger configured with runtime.WithLogger.
package xlbridge
