// Package dispatch implements the call boundary.
//
// Handler.Invoke looks the export up (blocking until the export table is
// ready), fills configured defaults for Missing arguments, resolves the
// receiver of instance members through the heap and walks the bound
// candidates until one succeeds. Failures are swallowed per candidate;
// only exhaustion is reported, and then only as the generic #NULL! value.
// A receiver handle that no longer resolves yields #REF!.
//
// Builtins adds the reflective exports (JConstruct, JMethod, ...) that
// reach catalog types without a dedicated export per member.
package dispatch
