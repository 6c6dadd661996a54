package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/modecli/argv"
)

// Output formats accepted by the --output flag.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// defaultIndent is the indent width of JSON and YAML output.
const defaultIndent = 2

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).
			Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// grid is a titled table rendered with lipgloss.
type grid struct {
	title   string
	headers []string
	rows    [][]string
}

func (g grid) String() string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(g.headers...).
		Rows(g.rows...)

	if g.title == "" {
		return t.String()
	}

	return titleStyle.Render(g.title) + "\n" + t.String()
}

// render writes data to w in format. Table output is produced by grids;
// JSON and YAML output marshal data.
func render(ctx context.Context, w io.Writer, format string, data any, grids ...fmt.Stringer) error {
	switch format {
	case FormatTable, "":
		for i, g := range grids {
			if i > 0 {
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w, g)
		}

		return nil

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", defaultIndent))

		if err := enc.Encode(data); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case FormatYAML:
		buf, err := yaml.MarshalContext(ctx, data, yaml.Indent(defaultIndent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(buf)

		return err

	default:
		return ErrInvalidFormat.
			Wrap(fmt.Errorf("%q (want %s, %s or %s)",
				format, FormatTable, FormatJSON, FormatYAML)).
			With(slog.String("format", format))
	}
}

type resultReport struct {
	Mode        string             `json:"mode"                  yaml:"mode"`
	Options     []valueReport      `json:"options,omitempty"     yaml:"options,omitempty"`
	Arguments   []valueReport      `json:"arguments,omitempty"   yaml:"arguments,omitempty"`
	Diagnostics []diagnosticReport `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type valueReport struct {
	Name  string `json:"name"  yaml:"name"`
	Type  string `json:"type"  yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

type diagnosticReport struct {
	Condition string `json:"condition" yaml:"condition"`
	Message   string `json:"message"   yaml:"message"`
}

func makeResultReport(res *argv.Result) resultReport {
	r := resultReport{Mode: res.Mode.ID()}

	for _, v := range res.Values() {
		vr := valueReport{Name: v.Name, Type: v.Type.String(), Value: v.Value}
		if v.Kind == argv.KindOption {
			r.Options = append(r.Options, vr)
		} else {
			r.Arguments = append(r.Arguments, vr)
		}
	}

	for _, d := range res.Diagnostics {
		r.Diagnostics = append(r.Diagnostics, diagnosticReport{
			Condition: d.Condition.String(),
			Message:   d.Message,
		})
	}

	return r
}

func (r resultReport) grids() []fmt.Stringer {
	values := grid{
		title:   "mode " + r.Mode,
		headers: []string{"KIND", "NAME", "TYPE", "VALUE"},
	}

	for _, v := range r.Options {
		values.rows = append(values.rows,
			[]string{"option", v.Name, v.Type, FormatValue(v.Value)})
	}

	for _, v := range r.Arguments {
		values.rows = append(values.rows,
			[]string{"argument", v.Name, v.Type, FormatValue(v.Value)})
	}

	out := []fmt.Stringer{values}

	if len(r.Diagnostics) > 0 {
		diags := grid{
			title:   warnStyle.Render("diagnostics"),
			headers: []string{"CONDITION", "MESSAGE"},
		}

		for _, d := range r.Diagnostics {
			diags.rows = append(diags.rows, []string{d.Condition, d.Message})
		}

		out = append(out, diags)
	}

	return out
}

// FormatValue renders a bound value on one line: collections as
// space-separated items in brackets and maps as sorted key=value pairs.
func FormatValue(v any) string {
	switch x := v.(type) {
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = FormatValue(item)
		}

		return "[" + strings.Join(items, " ") + "]"

	case map[string]any:
		items := make([]string, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			items = append(items, k+"="+FormatValue(x[k]))
		}

		return "{" + strings.Join(items, " ") + "}"

	case string:
		return x

	default:
		return fmt.Sprint(x)
	}
}

type modeReport struct {
	ID       string   `json:"id"                yaml:"id"`
	Title    string   `json:"title"             yaml:"title"`
	Parents  []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Extends  []string `json:"extends"           yaml:"extends"`
	Abstract bool     `json:"abstract"          yaml:"abstract"`
	Default  bool     `json:"default"           yaml:"default"`
}

func makeModeReports(m *argv.Model, modes []*argv.Mode) []modeReport {
	out := make([]modeReport, len(modes))

	for i, mode := range modes {
		out[i] = modeReport{
			ID:       mode.ID(),
			Title:    mode.Title(),
			Parents:  mode.Parents(),
			Extends:  mode.ExtendedModes(),
			Abstract: mode.Abstract(),
			Default:  mode == m.DefaultMode(),
		}
	}

	return out
}

func modesGrid(modes []modeReport) grid {
	g := grid{headers: []string{"ID", "TITLE", "PARENTS", "EXTENDS", ""}}

	for _, m := range modes {
		var flags []string
		if m.Default {
			flags = append(flags, "default")
		}

		if m.Abstract {
			flags = append(flags, "abstract")
		}

		g.rows = append(g.rows, []string{
			m.ID,
			m.Title,
			strings.Join(m.Parents, ","),
			strings.Join(m.Extends, ","),
			strings.Join(flags, ","),
		})
	}

	return g
}

type argumentReport struct {
	Position int    `json:"position"           yaml:"position"`
	ID       string `json:"id"                 yaml:"id"`
	Mode     string `json:"mode"               yaml:"mode"`
	Type     string `json:"type"               yaml:"type"`
	Required bool   `json:"required"           yaml:"required"`
	CloseTo  string `json:"close_to,omitempty" yaml:"close_to,omitempty"`
	After    bool   `json:"after,omitempty"    yaml:"after,omitempty"`
}

type orderReport struct {
	Mode      string           `json:"mode,omitempty" yaml:"mode,omitempty"`
	Arguments []argumentReport `json:"arguments"      yaml:"arguments"`
}

func makeOrderReport(mode string, args []argv.Argument) orderReport {
	r := orderReport{Mode: mode, Arguments: make([]argumentReport, len(args))}

	for i, a := range args {
		r.Arguments[i] = argumentReport{
			Position: i,
			ID:       a.ID,
			Mode:     a.Mode,
			Type:     a.Type.String(),
			Required: a.Required,
			CloseTo:  a.CloseTo,
			After:    a.After,
		}
	}

	return r
}

func (r orderReport) grid() grid {
	title := "global order"
	if r.Mode != "" {
		title = "mode " + r.Mode
	}

	g := grid{
		title:   title,
		headers: []string{"#", "ID", "MODE", "TYPE", "REQUIRED", "PLACEMENT"},
	}

	for _, a := range r.Arguments {
		placement := a.CloseTo
		if placement != "" {
			if a.After {
				placement = "after " + placement
			} else {
				placement = "before " + placement
			}
		}

		g.rows = append(g.rows, []string{
			fmt.Sprint(a.Position),
			a.ID,
			a.Mode,
			a.Type,
			fmt.Sprint(a.Required),
			placement,
		})
	}

	return g
}
