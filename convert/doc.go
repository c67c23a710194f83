// Package convert moves values between the wire and Go.
//
// A Converter handles one family of Go types in both directions, each
// direction with its own priority. A Registry holds an immutable set of
// converters and resolves the best one for a (wire kind, Go type) pair:
// highest priority first, then the lexically smallest name. Results are
// cached per pair.
//
// Default builds the standard set:
//
//	identity      wire.Value and concrete wire types      max
//	float         float64, float32 <-> Number              10, 9
//	inf-nan       non-finite floats -> #NUM!, #NUM! -> NaN
//	integer       signed and unsigned ints <-> Number      8, 7, 6
//	boolean       bool <-> Boolean (Number on input)       10 (1)
//	text          string <-> Text                          10
//	big-int       *big.Int <-> Number                      10
//	big-float     *big.Float <-> Number                    10
//	serial-date   time.Time <-> serial date Number         10
//	vector        []T <-> Array (row on output)            10
//	grid          [][]T <-> Array                          11
//	map           map[K]V <-> two-column Array             10
//	optional      *T of scalar T, Missing -> nil           5, 6
//	nil           Missing, Nil -> nil of nilable types     2
//	object        any <-> object reference via the heap    min
package convert
