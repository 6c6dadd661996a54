package argv

import (
	"maps"
	"slices"
)

// Result is the outcome of a successful [Model.Parse].
//
// Options is keyed by primary option name and Arguments by argument id. A
// declaration that was never assigned is absent. Scalars hold the converted
// value, collections a []any and maps a map[string]any.
type Result struct {
	Mode        *Mode
	Options     map[string]any
	Arguments   map[string]any
	Diagnostics []Diagnostic

	model *Model
}

func (s *state) result() *Result {
	r := &Result{
		Mode:        s.mode,
		Options:     make(map[string]any, len(s.opts)),
		Arguments:   make(map[string]any, len(s.values)),
		Diagnostics: slices.Clone(s.report.diags),
		model:       s.model,
	}

	for o, c := range s.opts {
		r.Options[o.Name] = c.value()
	}

	for a, c := range s.values {
		r.Arguments[a.ID] = c.value()
	}

	return r
}

// Option returns the value bound to the option declared with the given name
// or alias.
func (r *Result) Option(name string) (any, bool) {
	if o, ok := r.model.byName[name]; ok {
		name = o.Name
	}

	v, ok := r.Options[name]

	return v, ok
}

// Argument returns the value bound to the argument with the given id.
func (r *Result) Argument(id string) (any, bool) {
	v, ok := r.Arguments[id]

	return v, ok
}

// Values returns the options and arguments active in the resolved mode that
// were assigned, in declaration order for options followed by positional
// order for arguments.
func (r *Result) Values() []Value {
	var out []Value

	for _, o := range r.model.optionsFor(r.Mode) {
		if v, ok := r.Options[o.Name]; ok {
			out = append(out, Value{Name: o.Name, Kind: KindOption, Type: o.Type, Value: v})
		}
	}

	for _, a := range r.model.argumentsFor(r.Mode) {
		if v, ok := r.Arguments[a.ID]; ok {
			out = append(out, Value{Name: a.ID, Kind: KindArgument, Type: a.Type, Value: v})
		}
	}

	return out
}

// Map returns a copy of the bound values as a single map keyed by option
// name and argument id.
func (r *Result) Map() map[string]any {
	out := maps.Clone(r.Options)
	if out == nil {
		out = make(map[string]any, len(r.Arguments))
	}

	maps.Copy(out, r.Arguments)

	return out
}

// Kind distinguishes options from positional arguments in a [Value].
type Kind int

const (
	KindOption Kind = iota
	KindArgument
)

// String returns "option" or "argument".
func (k Kind) String() string {
	if k == KindArgument {
		return "argument"
	}

	return "option"
}

// Value is one bound declaration of a [Result].
type Value struct {
	Name  string
	Kind  Kind
	Type  Type
	Value any
}
