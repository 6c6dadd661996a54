package argv

// Builder accumulates declarations for [New].
//
//	model, err := argv.NewBuilder().
//		Mode("build").
//		Mode("release", "build").
//		Trigger("--verbose", "-v").
//		Option(argv.Option{Name: "--tag", Mode: "release", Required: true}).
//		Argument(argv.Argument{ID: "target", Mode: "build"}).
//		Build()
type Builder struct {
	decls Declarations
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Mode declares a mode extending parents.
func (b *Builder) Mode(id string, parents ...string) *Builder {
	b.decls.Modes = append(b.decls.Modes, ModeDecl{ID: id, Parents: parents})

	return b
}

// AbstractMode declares an abstract mode extending parents.
func (b *Builder) AbstractMode(id string, parents ...string) *Builder {
	b.decls.Modes = append(b.decls.Modes,
		ModeDecl{ID: id, Parents: parents, Abstract: true})

	return b
}

// Declare adds a fully specified mode declaration.
func (b *Builder) Declare(d ModeDecl) *Builder {
	b.decls.Modes = append(b.decls.Modes, d)

	return b
}

// Option declares an option.
func (b *Builder) Option(o Option) *Builder {
	b.decls.Options = append(b.decls.Options, o)

	return b
}

// Trigger declares a trigger option in the default mode.
func (b *Builder) Trigger(name string, aliases ...string) *Builder {
	return b.Option(Option{Name: name, Aliases: aliases, Trigger: true})
}

// Argument declares a positional argument.
func (b *Builder) Argument(a Argument) *Builder {
	b.decls.Arguments = append(b.decls.Arguments, a)

	return b
}

// Declarations returns the accumulated declarations.
func (b *Builder) Declarations() Declarations { return b.decls }

// Build calls [New] with the accumulated declarations.
func (b *Builder) Build(opts ...Setting) (*Model, error) {
	return New(b.decls, opts...)
}
