package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/cli/cmd"
	"github.com/ardnew/modecli/decl"
	"github.com/ardnew/modecli/log"
	"github.com/ardnew/modecli/pkg"
)

// declConfig selects the declaration file and the model settings that
// override the file's own.
type declConfig struct {
	Path        string   `help:"Declaration file, searched in ${pathEnv}, the working directory and ${configDir} (default: ${declName} with extension ${declExt})." name:"decl"          placeholder:"FILE" short:"d"`
	Policy      []string `help:"Set the action for a soft condition (${conditionEnum})."                                          placeholder:"CONDITION=ACTION"`
	Strict      bool     `help:"Fail on every soft condition."                                                                    xor:"preset"`
	Lenient     bool     `help:"Accept every soft condition silently."                                                            xor:"preset"`
	DefaultMode string   `help:"Mode used when no option selects one."                                                            placeholder:"MODE"`
	Style       string   `default:""                                                                                              enum:",multiple,comma" help:"Default container style (${enum})."`
}

func (*declConfig) vars() kong.Vars {
	conditions := make([]string, 0, len(argv.Conditions()))
	for _, c := range argv.Conditions() {
		conditions = append(conditions, c.String())
	}

	return kong.Vars{
		"pathEnv":       pkg.PathEnv(),
		"configDir":     pkg.ConfigDir(),
		"declName":      pkg.Name,
		"declExt":       strings.Join(decl.Extensions, ","),
		"conditionEnum": strings.Join(conditions, ", "),
	}
}

func (*declConfig) group() kong.Group {
	var group kong.Group

	group.Key = "decl"
	group.Title = "Declaration options"

	return group
}

// load finds and compiles the declaration file. Without --decl a missing
// default file is not an error; commands that need declarations report
// [cmd.ErrNoDeclaration] themselves.
func (f *declConfig) load(ctx context.Context) (*cmd.Declaration, error) {
	name, explicit := f.Path, f.Path != ""
	if !explicit {
		name = pkg.Name
	}

	path, ok := pkg.FindDecl(name, decl.Extensions...)
	if !ok {
		if explicit {
			return nil, cmd.ErrNoDeclaration.With(slog.String("decl", name))
		}

		log.DebugContext(ctx, "no default declaration file",
			slog.String("name", name),
			slog.Any("search", pkg.SearchPath()),
		)

		return nil, nil
	}

	set, err := decl.Load(path)
	if err != nil {
		return nil, cmd.ErrLoadDecl.With(slog.String("decl", path)).Wrap(err)
	}

	settings, err := f.settings(set.Policy())
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "declaration loaded",
		slog.String("path", path),
		slog.Int("checks", len(set.Checks())),
	)

	return &cmd.Declaration{Path: path, Set: set, Settings: settings}, nil
}

// settings returns the model settings selected by the flags. The policy
// starts from base, or from a preset with --strict or --lenient, and applies
// each --policy entry in order.
func (f *declConfig) settings(base argv.Policy) ([]argv.Setting, error) {
	switch {
	case f.Strict:
		base = argv.StrictPolicy()
	case f.Lenient:
		base = argv.LenientPolicy()
	}

	policy := base

	for _, entry := range f.Policy {
		var err error

		policy, err = argv.ParsePolicy(policy, entry)
		if err != nil {
			return nil, cmd.ErrInvalidPolicy.
				With(slog.String("policy", entry)).
				Wrap(err)
		}
	}

	style, ok := argv.ParseContainerStyle(f.Style)
	if !ok {
		return nil, cmd.ErrInvalidStyle.With(slog.String("style", f.Style))
	}

	return []argv.Setting{
		argv.WithPolicy(policy),
		argv.WithDefaultMode(f.DefaultMode),
		argv.WithContainerStyle(style),
		argv.WithLogger(log.Default()),
	}, nil
}
