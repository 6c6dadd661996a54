package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/modecli/argv"
)

// Order prints the resolved positional-argument order, globally or for the
// arguments active in one mode.
type Order struct {
	Output string `default:"table" enum:"table,json,yaml" help:"Output format (${enum})." short:"o"`

	Mode string `arg:"" help:"Restrict to the arguments active in this mode." name:"mode" optional:""`
}

// Run executes the order command.
func (c *Order) Run(ctx context.Context) error {
	d, err := DeclarationFrom(ctx)
	if err != nil {
		return err
	}

	m, err := d.Model()
	if err != nil {
		return err
	}

	var args []argv.Argument

	if c.Mode == "" {
		args = m.Arguments()
	} else {
		mode := m.Mode(c.Mode)
		if mode == nil {
			return ErrUnknownMode.Wrap(argv.ErrUndefinedMode).
				With(slog.String("mode", c.Mode))
		}

		args = m.ArgumentsFor(mode)
	}

	report := makeOrderReport(c.Mode, args)

	return render(ctx, outputFrom(ctx), c.Output, report, report.grid())
}
