package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/log"
)

type logConfig struct {
	Level      string `default:"warn"    enum:"${logLevelEnum}"  help:"Log level (${enum})."`
	Format     string `default:"text"    enum:"${logFormatEnum}" help:"Log format (${enum})."`
	TimeLayout string `default:"RFC3339"                         help:"Timestamp layout, or none."`
	Caller     bool   `default:"false"                           help:"Annotate records with source location." negatable:""`
	Pretty     bool   `default:"true"                            help:"Colorize text records."                 negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// LogValue implements slog.LogValuer.
func (f *logConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", f.Level),
		slog.String("format", f.Format),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// start reconfigures the default logger from the fully parsed flags.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(f.Level)),
		log.WithFormat(log.ParseFormat(f.Format)),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger configured", slog.Any("log", f))
}

// earlyLog declares the logging flags applied before kong parses the
// command line. Each flag is a collection so that repeating it is not an
// error; the last occurrence wins.
var earlyLog = sync.OnceValues(func() (*argv.Model, error) {
	b := argv.NewBuilder()

	for _, name := range []string{"--log-level", "--log-format"} {
		b.Option(argv.Option{Name: name, Type: argv.Collection(argv.TypeString)})
	}

	for _, name := range []string{"--log-caller", "--log-pretty"} {
		b.Option(argv.Option{
			Name:    name,
			Trigger: true,
			Type:    argv.Collection(argv.TypeBool),
		})
	}

	return b.Build(
		argv.WithPolicy(argv.LenientPolicy()),
		argv.WithContainerStyle(argv.StyleMultipleOccurrence),
	)
})

// scan applies the logging flags found anywhere in args before kong parses
// them, so that the logger is configured regardless of flag position.
// Malformed logging flags are left for kong to report.
func (f *logConfig) scan(args []string) {
	m, err := earlyLog()
	if err != nil {
		return
	}

	res, err := m.Parse(logTokens(m, args))
	if err != nil {
		return
	}

	var opts []log.Option

	if v, ok := lastValue[string](res, "--log-level"); ok {
		f.Level = v
		opts = append(opts, log.WithLevel(log.ParseLevel(v)))
	}

	if v, ok := lastValue[string](res, "--log-format"); ok {
		f.Format = v
		opts = append(opts, log.WithFormat(log.ParseFormat(v)))
	}

	if v, ok := lastValue[bool](res, "--log-caller"); ok {
		f.Caller = v
		opts = append(opts, log.WithCaller(v))
	}

	if v, ok := lastValue[bool](res, "--log-pretty"); ok {
		f.Pretty = v
		opts = append(opts, log.WithPretty(v))
	}

	if len(opts) > 0 {
		log.Config(opts...)
	}
}

// logTokens extracts the tokens of args that m declares, stopping at "--".
// A negated flag is rewritten to its positive form with an inline value, and
// a flag that takes a separate value keeps the token following it.
func logTokens(m *argv.Model, args []string) []string {
	var out []string

	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == argv.EndOfOptions {
			break
		}

		name, value, inline := strings.Cut(tok, "=")

		if rest, ok := strings.CutPrefix(name, argv.LongPrefix+"no-"); ok {
			v := true

			if inline {
				b, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				v = b
			}

			name = argv.LongPrefix + rest
			tok, inline = name+"="+strconv.FormatBool(!v), true
		}

		o, ok := m.Option(name)
		if !ok {
			continue
		}

		if inline || o.Trigger {
			out = append(out, tok)

			continue
		}

		if i+1 < len(args) && !strings.HasPrefix(args[i+1], argv.ShortPrefix) {
			out = append(out, tok, args[i+1])
			i++
		}
	}

	return out
}

// lastValue returns the final element of the collection bound to name.
func lastValue[T any](res *argv.Result, name string) (T, bool) {
	var zero T

	v, _ := res.Option(name)

	list, _ := v.([]any)
	if len(list) == 0 {
		return zero, false
	}

	t, ok := list[len(list)-1].(T)

	return t, ok
}
