package wire

// ErrorKind enumerates the spreadsheet error values.
type ErrorKind uint8

const (
	ErrNull ErrorKind = iota
	ErrDiv0
	ErrValue
	ErrRef
	ErrName
	ErrNum
	ErrNA
	ErrGettingData
)

var errorNames = [...]string{
	ErrNull:        "#NULL!",
	ErrDiv0:        "#DIV/0!",
	ErrValue:       "#VALUE!",
	ErrRef:         "#REF!",
	ErrName:        "#NAME?",
	ErrNum:         "#NUM!",
	ErrNA:          "#N/A",
	ErrGettingData: "#GETTING_DATA",
}

func (e ErrorKind) String() string {
	if int(e) < len(errorNames) {
		return errorNames[e]
	}
	return "#UNKNOWN!"
}

// ParseErrorKind maps a display string such as "#REF!" back to its kind.
func ParseErrorKind(s string) (ErrorKind, bool) {
	for i, name := range errorNames {
		if name == s {
			return ErrorKind(i), true
		}
	}
	return 0, false
}
