package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/modecli/cli/cmd"
	"github.com/ardnew/modecli/cli/cmd/repl"
	"github.com/ardnew/modecli/pkg"
)

// CLI is the top-level command-line interface for modecli.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Decl  declConfig  `embed:"" group:"decl"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Init  cmd.Init     `cmd:"" help:"Initialize configuration file"`
	Modes cmd.Modes    `cmd:"" help:"List declared modes"`
	Order cmd.Order    `cmd:"" help:"Show the positional argument order"`
	Bench cmd.Bench    `cmd:"" help:"Repeatedly parse arguments"`
	Repl  repl.Command `cmd:"" help:"Parse arguments interactively"`

	Parse cmd.Parse `cmd:"" default:"withargs" help:"Parse arguments against the declarations"`
}

// Run executes the modecli CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Decl.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logging flags before kong reports anything.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Decl.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Reapply with every parsed value, including those from config files.
	cli.Log.start(ctx)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOutput(ctx, ktx.Stdout)

	d, err := cli.Decl.load(ctx)
	if err != nil {
		return err
	}

	if d != nil {
		ctx = cmd.WithDeclaration(ctx, d)
	}

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx, ktx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
