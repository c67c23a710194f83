// Package registry builds the export table.
//
// Exports arrive as a stream of (metadata, members) pairs. Build assigns
// each an id from a counter starting at 0, drops later exports whose name
// repeats an earlier one (ignoring case) with a warning, validates the
// attribute flags, binds the members and hands a Registration with its
// signature string to the Host. A dropped export still consumes its id.
//
// The table is written by one goroutine and read by many. Get, Lookup and
// the other readers block until the build has closed the ready barrier;
// after that no locking is involved.
//
// Single-member exports are bound once against the natural wire kinds of
// their parameters. Exports with several members are bound per call
// against the actual argument kinds, cached by kind list.
package registry
