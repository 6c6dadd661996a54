package argv

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ardnew/modecli/log"
)

// Model is the immutable declaration store built by [New]. It holds the mode
// graph, the option index and the global positional-argument order, and may
// be shared by concurrent calls to [Model.Parse].
type Model struct {
	settings

	graph     *modeGraph
	options   []*Option
	byName    map[string]*Option
	arguments []*Argument
	diags     []Diagnostic
}

type settings struct {
	logger      log.Logger
	policy      Policy
	defaultMode string
	style       ContainerStyle
	convert     Converter
	sink        DiagnosticSink
}

// Setting configures a [Model].
type Setting func(*settings)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Setting {
	return func(s *settings) { s.logger = logger }
}

// WithPolicy sets the response to each soft condition.
// The default is [DefaultPolicy].
func WithPolicy(p Policy) Setting {
	return func(s *settings) { s.policy = p }
}

// WithDefaultMode sets the id of the mode used when no option fixes one.
func WithDefaultMode(id string) Setting {
	return func(s *settings) {
		if id != "" {
			s.defaultMode = id
		}
	}
}

// WithContainerStyle sets the style of container declarations that do not
// choose one. The default is [StyleMultipleOccurrence].
func WithContainerStyle(style ContainerStyle) Setting {
	return func(s *settings) {
		if style != StyleDefault {
			s.style = style
		}
	}
}

// WithConverter sets the string-to-value converter. The default is
// [TextConverter].
func WithConverter(c Converter) Setting {
	return func(s *settings) {
		if c != nil {
			s.convert = c
		}
	}
}

// WithDiagnosticSink registers a function called with every diagnostic as it
// is recorded, at construction and during each parse.
func WithDiagnosticSink(sink DiagnosticSink) Setting {
	return func(s *settings) { s.sink = sink }
}

func makeSettings(opts ...Setting) settings {
	s := settings{
		policy:      DefaultPolicy(),
		defaultMode: DefaultModeID,
		style:       StyleMultipleOccurrence,
		convert:     TextConverter,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func (s settings) reporter() *reporter {
	return &reporter{
		policy: s.policy,
		sink:   s.sink,
		log: func(msg string, attrs ...slog.Attr) {
			s.logger.Warn(msg, attrs...)
		},
	}
}

// New validates decls and builds a [Model].
//
// Structural errors (conflicting option names, cyclic modes or placements,
// reserved or duplicate argument ids, misplaced container arguments) are
// always fatal. Duplicate and undefined modes are handled by the configured
// [Policy].
func New(decls Declarations, opts ...Setting) (*Model, error) {
	m := &Model{
		settings: makeSettings(opts...),
		byName:   make(map[string]*Option),
	}

	report := m.reporter()
	m.graph = newModeGraph(report)

	for _, d := range decls.Modes {
		if err := m.graph.register(d); err != nil {
			return nil, err
		}
	}

	if m.graph.mode(m.defaultMode) == nil {
		m.graph.add(&Mode{id: m.defaultMode, title: m.defaultMode})
	}

	if err := m.graph.requireParents(); err != nil {
		return nil, err
	}

	for _, o := range decls.Options {
		if err := m.declareOption(o); err != nil {
			return nil, err
		}
	}

	args := make([]*Argument, 0, len(decls.Arguments))

	for _, a := range decls.Arguments {
		arg, err := m.declareArgument(a)
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}

	if err := m.graph.resolve(); err != nil {
		return nil, err
	}

	order, err := orderArguments(args)
	if err != nil {
		return nil, err
	}

	m.arguments = make([]*Argument, len(order))
	for i, j := range order {
		m.arguments[i] = args[j]
	}

	if err := m.checkContainers(); err != nil {
		return nil, err
	}

	m.diags = report.diags

	m.logger.Trace("model built",
		slog.Int("modes", len(m.graph.modes)),
		slog.Int("options", len(m.options)),
		slog.Int("arguments", len(m.arguments)),
	)

	return m, nil
}

func (m *Model) declareOption(decl Option) error {
	o := decl
	o.Aliases = slices.Clone(decl.Aliases)

	if o.Mode == "" {
		o.Mode = m.defaultMode
	}

	if o.Trigger && o.Type == (Type{}) {
		o.Type = Scalar(TypeBool)
	}

	if o.Style == StyleDefault {
		o.Style = m.style
	}

	names := o.Names()
	for i, name := range names {
		if !isOptionToken(name) {
			return ErrInvalidOptionName.Wrap(fmt.Errorf("%q", name)).
				With(slog.String("option", o.Name))
		}

		prev, ok := m.byName[name]
		if !ok && slices.Contains(names[:i], name) {
			prev, ok = &o, true
		}

		if ok {
			return ErrOptionConflict.
				Wrap(fmt.Errorf("%s (declared by %s)", name, prev.Name)).
				With(
					slog.String("option", o.Name),
					slog.String("name", name),
					slog.String("declared_by", prev.Name),
				)
		}
	}

	if _, err := m.graph.require(o.Mode, "option "+o.Name); err != nil {
		return err
	}

	p := &o
	for _, name := range names {
		m.byName[name] = p
	}

	m.options = append(m.options, p)

	return nil
}

func (m *Model) declareArgument(decl Argument) (*Argument, error) {
	a := decl
	a.ID = a.Key()

	if a.ID == "" {
		return nil, ErrInvalidArgumentID.Wrap(errors.New("empty id"))
	}

	if a.Mode == "" {
		a.Mode = m.defaultMode
	}

	if a.Style == StyleDefault {
		a.Style = m.style
	}

	if _, err := m.graph.require(a.Mode, "argument "+a.ID); err != nil {
		return nil, err
	}

	return &a, nil
}

// checkContainers verifies that a container argument is never followed by
// another argument active in the same mode, since it absorbs every remaining
// token.
func (m *Model) checkContainers() error {
	for _, mode := range m.graph.modes {
		args := m.argumentsFor(mode)
		for i, a := range args[:max(len(args)-1, 0)] {
			if a.Type.IsContainer() {
				return ErrContainerNotLast.
					Wrap(fmt.Errorf("%s is followed by %s in mode %q",
						a.ID, args[i+1].ID, mode.title)).
					With(
						slog.String("argument", a.ID),
						slog.String("mode", mode.id),
					)
			}
		}
	}

	return nil
}

// Mode returns the mode registered with id, or nil.
func (m *Model) Mode(id string) *Mode { return m.graph.mode(id) }

// DefaultMode returns the mode used when no option fixes one.
func (m *Model) DefaultMode() *Mode { return m.graph.mode(m.defaultMode) }

// Modes returns the non-abstract modes in registration order.
func (m *Model) Modes() []*Mode {
	modes := make([]*Mode, 0, len(m.graph.modes))
	for _, mode := range m.graph.modes {
		if !mode.abstract {
			modes = append(modes, mode)
		}
	}

	return modes
}

// AllModes returns every mode, abstract or not, in registration order.
func (m *Model) AllModes() []*Mode { return slices.Clone(m.graph.modes) }

// Option returns the option declared with the given name or alias.
func (m *Model) Option(token string) (Option, bool) {
	o, ok := m.byName[token]
	if !ok {
		return Option{}, false
	}

	return o.clone(), true
}

// Options returns every option in declaration order.
func (m *Model) Options() []Option { return cloneOptions(m.options) }

// Arguments returns every argument in the global positional order.
func (m *Model) Arguments() []Argument { return cloneArguments(m.arguments) }

// OptionsFor returns the options active in mode: those whose owning mode is
// mode itself or a mode it extends.
func (m *Model) OptionsFor(mode *Mode) []Option {
	return cloneOptions(m.optionsFor(mode))
}

// ArgumentsFor returns the arguments active in mode, in global order.
func (m *Model) ArgumentsFor(mode *Mode) []Argument {
	return cloneArguments(m.argumentsFor(mode))
}

// Diagnostics returns the diagnostics recorded while building the model.
func (m *Model) Diagnostics() []Diagnostic { return slices.Clone(m.diags) }

// Policy returns the configured policy.
func (m *Model) Policy() Policy { return m.policy }

// ContainerStyle returns the style inherited by container declarations.
func (m *Model) ContainerStyle() ContainerStyle { return m.style }

func (m *Model) optionsFor(mode *Mode) []*Option {
	var opts []*Option

	for _, o := range m.options {
		if mode.Extends(o.Mode) {
			opts = append(opts, o)
		}
	}

	return opts
}

func (m *Model) argumentsFor(mode *Mode) []*Argument {
	var args []*Argument

	for _, a := range m.arguments {
		if mode.Extends(a.Mode) {
			args = append(args, a)
		}
	}

	return args
}

func (o *Option) clone() Option {
	c := *o
	c.Aliases = slices.Clone(o.Aliases)

	return c
}

func cloneOptions(opts []*Option) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = o.clone()
	}

	return out
}

func cloneArguments(args []*Argument) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = *a
	}

	return out
}
