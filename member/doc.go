// Package member builds invoke.Member tables from Go functions and types.
//
// Reflection runs once, at registration: Func wraps a function, and
// Type[T] collects the exported methods of *T, the exported fields of T
// and any constructors, static methods, constants or extra overloads
// given as options. The resulting members are plain values; calling them
// does not inspect types again beyond the prepared reflect.Value calls.
//
//	counter := member.MustType[Counter]("Counter",
//		member.Constructor(NewCounter),
//		member.Method("Add", func(c *Counter, by float64) float64 { ... }),
//	)
//	catalog.Add(counter)
//
// A Catalog indexes entries by name and by Go type for the reflective
// built-in exports.
package member
