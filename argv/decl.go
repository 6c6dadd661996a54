package argv

import "strings"

// Reserved tokens.
const (
	ShortPrefix  = "-"
	LongPrefix   = "--"
	EndOfOptions = "--"

	// ArgFirst and ArgLast are the placement anchors of the positional
	// argument order. Neither may be used as an argument id.
	ArgFirst = "FIRST"
	ArgLast  = "LAST"
)

// DefaultModeID is the id of the mode used when no option fixes one.
const DefaultModeID = "default"

// Shape classifies the value a declaration binds.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeCollection
	ShapeMap
)

// String returns the lowercase name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeCollection:
		return "collection"
	case ShapeMap:
		return "map"
	default:
		return "unknown"
	}
}

// Element type names understood by [TextConverter].
const (
	TypeString = "string"
	TypeBool   = "bool"
)

// Type describes the target of a declaration: its shape and the name of the
// element type handed to the [Converter]. An empty Elem means string.
type Type struct {
	Shape Shape
	Elem  string
}

// Scalar returns a scalar Type of the given element type.
func Scalar(elem string) Type { return Type{Shape: ShapeScalar, Elem: elem} }

// Collection returns a collection Type of the given element type.
func Collection(elem string) Type { return Type{Shape: ShapeCollection, Elem: elem} }

// Map returns a map Type whose values have the given element type.
func Map(elem string) Type { return Type{Shape: ShapeMap, Elem: elem} }

// IsBool reports whether t is a scalar boolean.
func (t Type) IsBool() bool {
	return t.Shape == ShapeScalar && t.Elem == TypeBool
}

// IsContainer reports whether t accumulates more than one value.
func (t Type) IsContainer() bool { return t.Shape != ShapeScalar }

// String returns a type expression such as "string" or "list(number)".
func (t Type) String() string {
	elem := t.Elem
	if elem == "" {
		elem = TypeString
	}

	switch t.Shape {
	case ShapeCollection:
		return "list(" + elem + ")"
	case ShapeMap:
		return "map(" + elem + ")"
	default:
		return elem
	}
}

// ContainerStyle selects how a container-typed declaration accepts input.
type ContainerStyle int

const (
	// StyleDefault inherits the model's configured style.
	StyleDefault ContainerStyle = iota
	// StyleMultipleOccurrence takes one entry per occurrence.
	StyleMultipleOccurrence
	// StyleCommaSeparated splits each raw value on commas.
	StyleCommaSeparated
)

// String returns the lowercase name of the style.
func (s ContainerStyle) String() string {
	switch s {
	case StyleMultipleOccurrence:
		return "multiple"
	case StyleCommaSeparated:
		return "comma"
	default:
		return "default"
	}
}

// ParseContainerStyle parses "multiple", "comma" or "default".
func ParseContainerStyle(s string) (ContainerStyle, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return StyleDefault, true
	case "multiple", "multiple-occurrence", "multiple_occurrence":
		return StyleMultipleOccurrence, true
	case "comma", "comma-separated", "comma_separated":
		return StyleCommaSeparated, true
	default:
		return StyleDefault, false
	}
}

// ModeDecl declares a mode. Title defaults to ID.
type ModeDecl struct {
	ID       string
	Title    string
	Parents  []string
	Abstract bool
}

// Option declares a named option. Name and Aliases are complete tokens such
// as "--verbose" or "-v". An empty Mode means the default mode.
type Option struct {
	Name     string
	Aliases  []string
	Mode     string
	Required bool
	Trigger  bool
	Type     Type
	Style    ContainerStyle
}

// Names returns the primary name followed by the aliases.
func (o *Option) Names() []string {
	return append([]string{o.Name}, o.Aliases...)
}

// Argument declares a positional argument. ID defaults to Name. CloseTo is
// another argument's id, [ArgFirst], or [ArgLast]; empty means ArgLast.
// After places the argument immediately after its referent instead of
// before it.
type Argument struct {
	ID       string
	Name     string
	Mode     string
	Required bool
	Type     Type
	Style    ContainerStyle
	CloseTo  string
	After    bool
}

// Key returns the argument's effective id.
func (a *Argument) Key() string {
	if a.ID != "" {
		return a.ID
	}

	return a.Name
}

// anchor returns the argument's effective placement referent.
func (a *Argument) anchor() string {
	if a.CloseTo == "" {
		return ArgLast
	}

	return a.CloseTo
}

// Declarations is the complete input to [New].
type Declarations struct {
	Modes     []ModeDecl
	Options   []Option
	Arguments []Argument
}

func isOptionToken(s string) bool {
	return len(s) > len(ShortPrefix) && strings.HasPrefix(s, ShortPrefix) &&
		s != EndOfOptions
}
