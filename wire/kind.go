package wire

// Kind tags the variant of a wire value.
type Kind uint8

const (
	KindNumber Kind = iota + 1
	KindText
	KindBoolean
	KindError
	KindMissing
	KindNil
	KindArray
	KindObject
	KindLocalReference
	KindMultiReference

	// KindAny is a lookup wildcard. No value carries it; binding against it
	// matches only converters that accept any wire value.
	KindAny Kind = 0xFF
)

var kindNames = map[Kind]string{
	KindNumber:         "number",
	KindText:           "text",
	KindBoolean:        "boolean",
	KindError:          "error",
	KindMissing:        "missing",
	KindNil:            "nil",
	KindArray:          "array",
	KindObject:         "object",
	KindLocalReference: "local-reference",
	KindMultiReference: "multi-reference",
	KindAny:            "any",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// IsReference reports whether k is one of the range reference kinds.
func (k Kind) IsReference() bool {
	return k == KindLocalReference || k == KindMultiReference
}

// Kinds returns the kind of each value, in order.
func Kinds(values []Value) []Kind {
	kinds := make([]Kind, len(values))
	for i, v := range values {
		kinds[i] = KindOf(v)
	}
	return kinds
}

// KindOf returns v.Kind(), treating a nil interface as Missing.
func KindOf(v Value) Kind {
	if v == nil {
		return KindMissing
	}
	return v.Kind()
}
