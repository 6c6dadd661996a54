package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/modecli/log"
)

// Parse parses arguments against the loaded declarations and prints the
// resolved mode and bound values.
type Parse struct {
	Output string `default:"table" enum:"table,json,yaml" help:"Output format (${enum})." short:"o"`

	Args []string `arg:"" help:"Arguments to parse; use -- before the first option." name:"args" optional:"" passthrough:""`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	d, err := DeclarationFrom(ctx)
	if err != nil {
		return err
	}

	res, err := d.Parse(p.Args)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "parsed",
		slog.String("mode", res.Mode.ID()),
		slog.Int("values", len(res.Values())),
		slog.Int("diagnostics", len(res.Diagnostics)),
	)

	report := makeResultReport(res)

	return render(ctx, outputFrom(ctx), p.Output, report, report.grids()...)
}
