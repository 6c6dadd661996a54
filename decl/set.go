package decl

import (
	"fmt"
	"maps"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/convert"
)

// Set is a compiled declaration file.
type Set struct {
	Name string

	decls       argv.Declarations
	defaultMode string
	style       argv.ContainerStyle
	policy      argv.Policy
	checks      map[string]check
}

type check struct {
	source  string
	program *vm.Program
}

// checkEnv is the environment a check expression is compiled against.
func checkEnv(value any, name, mode string) map[string]any {
	return map[string]any{
		"value": value,
		"name":  name,
		"mode":  mode,
	}
}

// Compile validates f and converts it into a [Set]. Declaration-level
// errors such as cycles are reported later, by [Set.Model].
func Compile(name string, f File) (*Set, error) {
	s := &Set{
		Name:        name,
		defaultMode: f.DefaultMode,
		policy:      argv.DefaultPolicy(),
		checks:      make(map[string]check),
	}

	var err error

	if s.style, err = parseStyle("file", f.Style); err != nil {
		return nil, err
	}

	// Map iteration order is irrelevant: each entry sets a distinct condition.
	for cond, action := range f.Policy {
		c, err := argv.ParseCondition(cond)
		if err != nil {
			return nil, fmt.Errorf("%w: policy: %w", ErrInvalid, err)
		}

		a, err := argv.ParseAction(action)
		if err != nil {
			return nil, fmt.Errorf("%w: policy: %w", ErrInvalid, err)
		}

		s.policy = s.policy.Set(c, a)
	}

	for _, m := range f.Modes {
		s.decls.Modes = append(s.decls.Modes, argv.ModeDecl{
			ID:       m.ID,
			Title:    m.Title,
			Parents:  slices.Clone(m.Parents),
			Abstract: m.Abstract,
		})
	}

	for _, o := range f.Options {
		opt, err := s.option(o)
		if err != nil {
			return nil, err
		}

		s.decls.Options = append(s.decls.Options, opt)
	}

	for _, a := range f.Arguments {
		arg, err := s.argument(a)
		if err != nil {
			return nil, err
		}

		s.decls.Arguments = append(s.decls.Arguments, arg)
	}

	return s, nil
}

func (s *Set) option(o Option) (argv.Option, error) {
	subject := "option " + o.Name

	t, err := parseType(subject, o.Type)
	if err != nil {
		return argv.Option{}, err
	}

	if o.Trigger && o.Type == "" {
		t = argv.Scalar(argv.TypeBool)
	}

	style, err := parseStyle(subject, o.Style)
	if err != nil {
		return argv.Option{}, err
	}

	if err := s.compileCheck(o.Name, o.Check); err != nil {
		return argv.Option{}, err
	}

	return argv.Option{
		Name:     o.Name,
		Aliases:  slices.Clone(o.Aliases),
		Mode:     o.Mode,
		Required: o.Required,
		Trigger:  o.Trigger,
		Type:     t,
		Style:    style,
	}, nil
}

func (s *Set) argument(a Argument) (argv.Argument, error) {
	subject := "argument " + a.ID

	t, err := parseType(subject, a.Type)
	if err != nil {
		return argv.Argument{}, err
	}

	style, err := parseStyle(subject, a.Style)
	if err != nil {
		return argv.Argument{}, err
	}

	if err := s.compileCheck(a.ID, a.Check); err != nil {
		return argv.Argument{}, err
	}

	return argv.Argument{
		ID:       a.ID,
		Mode:     a.Mode,
		Required: a.Required,
		Type:     t,
		Style:    style,
		CloseTo:  a.CloseTo,
		After:    a.After,
	}, nil
}

func (s *Set) compileCheck(name, source string) error {
	if source == "" {
		return nil
	}

	program, err := expr.Compile(source,
		expr.Env(checkEnv(nil, "", "")),
		expr.AsBool(),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: check %q: %w", ErrInvalid, name, source, err)
	}

	s.checks[name] = check{source: source, program: program}

	return nil
}

// Declarations returns the declarations of the file.
func (s *Set) Declarations() argv.Declarations { return s.decls }

// Policy returns the file's policy applied over [argv.DefaultPolicy].
func (s *Set) Policy() argv.Policy { return s.policy }

// Settings returns the model settings the file configures: its default
// mode, container style and policy, and the cty-backed converter.
func (s *Set) Settings() []argv.Setting {
	return []argv.Setting{
		argv.WithDefaultMode(s.defaultMode),
		argv.WithContainerStyle(s.style),
		argv.WithPolicy(s.policy),
		argv.WithConverter(convert.Converter{}),
	}
}

// Model builds an [argv.Model] from the file. Settings in extra are applied
// after the file's own.
func (s *Set) Model(extra ...argv.Setting) (*argv.Model, error) {
	return argv.New(s.decls, append(s.Settings(), extra...)...)
}

// Checks returns the names of the declarations that carry a check, sorted.
func (s *Set) Checks() []string {
	return slices.Sorted(maps.Keys(s.checks))
}

// Validate evaluates the check of every declaration bound in res, in the
// order of [argv.Result.Values], and returns the first failure.
func (s *Set) Validate(res *argv.Result) error {
	for _, v := range res.Values() {
		c, ok := s.checks[v.Name]
		if !ok {
			continue
		}

		out, err := expr.Run(c.program, checkEnv(v.Value, v.Name, res.Mode.ID()))
		if err != nil {
			return fmt.Errorf("%w: %s: %q: %w", ErrCheck, v.Name, c.source, err)
		}

		if ok, _ := out.(bool); !ok {
			return fmt.Errorf("%w: %s: %q is false for %v",
				ErrCheck, v.Name, c.source, v.Value)
		}
	}

	return nil
}
