// Package invoke binds members to wire argument kinds and calls them.
//
// A Member is an explicit table entry: a name, declared parameter and
// result types and a CallFunc. The Binder resolves one converter per
// argument, one for a variadic tail (bound against the array kind) and
// one for the result, producing an Invoker.
//
// Wire kinds under-determine overloads, so Bind keeps every member that
// binds and lays them out for a trial sequence: exact-arity members at
// the front, variadic members at the back. Walk tries the front group in
// order, then the back group in reverse, returning the first success.
package invoke
