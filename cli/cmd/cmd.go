package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/decl"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Declaration is a loaded declaration file together with the model settings
// selected on the command line.
type Declaration struct {
	Path     string
	Set      *decl.Set
	Settings []argv.Setting
}

// Model builds the [argv.Model] described by d.
func (d *Declaration) Model() (*argv.Model, error) {
	m, err := d.Set.Model(d.Settings...)
	if err != nil {
		return nil, ErrBuildModel.Wrap(err)
	}

	return m, nil
}

// Parse builds the model, parses tokens and evaluates the declaration's
// check expressions against the result.
func (d *Declaration) Parse(tokens []string) (*argv.Result, error) {
	m, err := d.Model()
	if err != nil {
		return nil, err
	}

	return d.ParseWith(m, tokens)
}

// ParseWith is like [Declaration.Parse] using a model already built by
// [Declaration.Model].
func (d *Declaration) ParseWith(m *argv.Model, tokens []string) (*argv.Result, error) {
	res, err := m.Parse(tokens)
	if err != nil {
		return nil, ErrParseArgs.Wrap(err)
	}

	if err := d.Set.Validate(res); err != nil {
		return nil, ErrCheckFailed.Wrap(err)
	}

	return res, nil
}

// Var returns the kong variable name, such as [CacheIdentifier], from the
// kong context stored in ctx.
func Var(ctx context.Context, name string) (string, bool) {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return "", false
	}

	v, ok := ktx.Model.Vars()[name]

	return v, ok
}

type (
	declarationKey struct{}
	outputKey      struct{}
)

// WithDeclaration returns a new context.Context carrying d for use by
// commands.
func WithDeclaration(ctx context.Context, d *Declaration) context.Context {
	return context.WithValue(ctx, declarationKey{}, d)
}

// DeclarationFrom returns the declaration stored by [WithDeclaration], or
// [ErrNoDeclaration].
func DeclarationFrom(ctx context.Context) (*Declaration, error) {
	d, ok := ctx.Value(declarationKey{}).(*Declaration)
	if !ok || d == nil || d.Set == nil {
		return nil, ErrNoDeclaration
	}

	return d, nil
}

// WithOutput returns a new context.Context whose commands write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by [WithOutput], or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}
