package cmd

import "context"

// Modes lists the declared modes with their parents and extension closure.
type Modes struct {
	All    bool   `help:"Include abstract modes."                       short:"a"`
	Output string `default:"table" enum:"table,json,yaml" help:"Output format (${enum})." short:"o"`
}

// Run executes the modes command.
func (c *Modes) Run(ctx context.Context) error {
	d, err := DeclarationFrom(ctx)
	if err != nil {
		return err
	}

	m, err := d.Model()
	if err != nil {
		return err
	}

	modes := m.Modes()
	if c.All {
		modes = m.AllModes()
	}

	report := makeModeReports(m, modes)

	return render(ctx, outputFrom(ctx), c.Output, report, modesGrid(report))
}
