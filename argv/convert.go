package argv

import (
	"fmt"
	"strconv"
)

// Converter turns raw text into a typed value. The engine always passes a
// scalar [Type] carrying the element type of the declaration being assigned.
type Converter interface {
	Convert(t Type, raw string) (any, error)
}

// ConverterFunc adapts a function to [Converter].
type ConverterFunc func(t Type, raw string) (any, error)

// Convert implements [Converter].
func (f ConverterFunc) Convert(t Type, raw string) (any, error) { return f(t, raw) }

// TextConverter keeps values as strings, except that [TypeBool] elements are
// parsed with [strconv.ParseBool]. Any other element type is rejected.
var TextConverter Converter = ConverterFunc(
	func(t Type, raw string) (any, error) {
		switch t.Elem {
		case "", TypeString:
			return raw, nil
		case TypeBool:
			return strconv.ParseBool(raw)
		default:
			return nil, fmt.Errorf("no conversion to %s", t.Elem)
		}
	},
)

// parseBoolLiteral reports whether s is a boolean literal. It is the only
// conversion the engine performs itself, to decide whether a boolean option
// consumes the token following it.
func parseBoolLiteral(s string) (bool, bool) {
	switch s {
	case "true", "TRUE", "True", "yes", "on", "1":
		return true, true
	case "false", "FALSE", "False", "no", "off", "0":
		return false, true
	default:
		return false, false
	}
}
