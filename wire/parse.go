package wire

import (
	"strconv"
	"strings"

	"github.com/McLeodMoores/xl4j-sub002/heap"
)

// Parse reads a wire value from its text form as typed into a console:
//
//	42, -1.5e3        Number
//	TRUE, false       Boolean
//	"quoted", bare    Text
//	#N/A, #REF!       Error
//	@12               Object reference to handle 12
//	{1,2;3,4}         Array, rows separated by ';'
//	(empty)           Missing
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return parseArray(s[1 : len(s)-1])
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return Text(s[1 : len(s)-1])
	}
	if ek, ok := ParseErrorKind(strings.ToUpper(s)); ok {
		return Error(ek)
	}
	if strings.HasPrefix(s, "@") {
		if h, err := strconv.ParseUint(s[1:], 10, 64); err == nil {
			return Object{Type: "object", Handle: heap.Handle(h)}
		}
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return Boolean(true)
	case "FALSE":
		return Boolean(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

func parseArray(body string) Value {
	var rows [][]Value
	for _, line := range splitTop(body, ';') {
		var row []Value
		for _, cell := range splitTop(line, ',') {
			row = append(row, Parse(cell))
		}
		rows = append(rows, row)
	}
	return NewArray(rows)
}

// splitTop splits s on sep outside double quotes.
func splitTop(s string, sep byte) []string {
	var parts []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// ParseList splits a comma separated argument list, honouring quotes and
// array braces, and parses each element.
func ParseList(s string) []Value {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		values []Value
		depth  int
		quoted bool
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case '{':
			if !quoted {
				depth++
			}
		case '}':
			if !quoted {
				depth--
			}
		case ',':
			if !quoted && depth == 0 {
				values = append(values, Parse(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(values, Parse(s[start:]))
}
