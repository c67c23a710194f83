// Package wire defines the values exchanged with the spreadsheet host.
//
// Every value implements Value and reports a Kind:
//
//	Number(2.5)                 number
//	Text("abc")                 text
//	Boolean(true)               boolean
//	Error(ErrRef)               error (#REF!)
//	Missing, Nil                omitted argument, empty value
//	NewArray(rows)              rectangular grid of values
//	Object{Type, Handle}        reference to a native object on the heap
//	LocalReference, MultiReference  cell range references
//
// Arrays are always rectangular; NewArray pads short rows with Missing.
// Values are immutable and safe to share between goroutines.
package wire
