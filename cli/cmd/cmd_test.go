package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/decl"
)

const testDecl = `
default_mode: run
style: comma
mode:
  - id: common
    abstract: true
  - id: run
    parents: [common]
  - id: list
    parents: [common]
option:
  - name: --verbose
    aliases: [-v]
    mode: common
    trigger: true
  - name: --jobs
    aliases: [-j]
    mode: run
    type: number
    check: value > 0
  - name: --long
    aliases: [-l]
    mode: list
    trigger: true
argument:
  - id: target
    mode: run
    close_to: FIRST
    required: true
  - id: extra
    mode: run
    type: list(string)
`

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	set, err := decl.Parse("app.yaml", []byte(testDecl))
	if err != nil {
		t.Fatalf("decl.Parse() error = %v", err)
	}

	var out bytes.Buffer

	ctx := WithDeclaration(context.Background(), &Declaration{Path: "app.yaml", Set: set})
	ctx = WithOutput(ctx, &out)

	return ctx, &out
}

func TestParseRun(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t)

	p := &Parse{Output: FormatJSON, Args: []string{"-v", "--jobs", "4", "build", "a,b", "c"}}
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Parse.Run() error = %v", err)
	}

	var got struct {
		Mode    string `json:"mode"`
		Options []struct {
			Name  string `json:"name"`
			Value any    `json:"value"`
		} `json:"options"`
		Arguments []struct {
			Name  string `json:"name"`
			Value any    `json:"value"`
		} `json:"arguments"`
	}

	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out.String(), err)
	}

	if got.Mode != "run" {
		t.Errorf("mode = %q, want run", got.Mode)
	}

	if len(got.Options) != 2 || got.Options[0].Value != true || got.Options[1].Value != float64(4) {
		t.Errorf("options = %+v", got.Options)
	}

	if len(got.Arguments) != 2 || got.Arguments[0].Value != "build" {
		t.Fatalf("arguments = %+v", got.Arguments)
	}

	extra, _ := got.Arguments[1].Value.([]any)
	if len(extra) != 3 || extra[0] != "a" || extra[2] != "c" {
		t.Errorf("extra = %v", got.Arguments[1].Value)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		want  error
		cause error
	}{
		{"check", []string{"--jobs", "0", "x"}, ErrCheckFailed, decl.ErrCheck},
		{"undefined", []string{"--bogus"}, ErrParseArgs, argv.ErrUndefinedOption},
		{"incompatible", []string{"-l", "-j", "2"}, ErrParseArgs, argv.ErrIncompatibleModes},
		{"missing", nil, ErrParseArgs, argv.ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, out := testContext(t)

			err := (&Parse{Output: FormatTable, Args: tt.args}).Run(ctx)
			if !errors.Is(err, tt.want) || !errors.Is(err, tt.cause) {
				t.Errorf("Parse.Run() error = %v, want %v wrapping %v", err, tt.want, tt.cause)
			}

			if out.Len() != 0 {
				t.Errorf("output = %q, want none", out.String())
			}
		})
	}
}

func TestParseTable(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t)

	if err := (&Parse{Output: FormatTable, Args: []string{"-v", "-v", "build"}}).Run(ctx); err != nil {
		t.Fatalf("Parse.Run() error = %v", err)
	}

	for _, want := range []string{"mode run", "--verbose", "build", "diagnostics", "option-duplicated"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestNoDeclaration(t *testing.T) {
	t.Parallel()

	for name, run := range map[string]func(context.Context) error{
		"parse": (&Parse{}).Run,
		"modes": (&Modes{}).Run,
		"order": (&Order{}).Run,
		"bench": (&Bench{}).Run,
	} {
		if err := run(context.Background()); !errors.Is(err, ErrNoDeclaration) {
			t.Errorf("%s: error = %v, want %v", name, err, ErrNoDeclaration)
		}
	}
}

func TestModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		all  bool
		want []string
	}{
		{false, []string{"run", "list"}},
		{true, []string{"common", "run", "list"}},
	}

	for _, tt := range tests {
		ctx, out := testContext(t)

		if err := (&Modes{All: tt.all, Output: FormatJSON}).Run(ctx); err != nil {
			t.Fatalf("Modes.Run() error = %v", err)
		}

		var got []modeReport
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		ids := make([]string, len(got))
		for i, m := range got {
			ids[i] = m.ID
		}

		if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
			t.Errorf("all=%v: modes = %v, want %v", tt.all, ids, tt.want)
		}

		for _, m := range got {
			if m.Default != (m.ID == "run") {
				t.Errorf("mode %s: Default = %v", m.ID, m.Default)
			}
		}
	}
}

func TestOrder(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t)

	if err := (&Order{Output: FormatYAML, Mode: "run"}).Run(ctx); err != nil {
		t.Fatalf("Order.Run() error = %v", err)
	}

	got := out.String()
	if strings.Index(got, "id: target") > strings.Index(got, "id: extra") ||
		!strings.Contains(got, "mode: run") {
		t.Errorf("order output:\n%s", got)
	}

	ctx, _ = testContext(t)
	if err := (&Order{Mode: "nope"}).Run(ctx); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Order.Run(nope) error = %v, want %v", err, ErrUnknownMode)
	}
}

func TestBench(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t)

	b := &Bench{Count: 50, Workers: 2, Args: []string{"-j", "3", "x"}}
	if err := b.Run(ctx); err != nil {
		t.Fatalf("Bench.Run() error = %v", err)
	}

	if !strings.Contains(out.String(), "50 parses (0 failed) on 2 workers") {
		t.Errorf("output = %q", out.String())
	}

	ctx, _ = testContext(t)
	if err := (&Bench{Count: 5, Args: []string{"--bogus"}}).Run(ctx); !errors.Is(err, ErrParseArgs) {
		t.Errorf("Bench.Run(--bogus) error = %v", err)
	}
}

func TestBenchStats_ConcurrentFailures(t *testing.T) {
	t.Parallel()

	stats := &benchStats{Count: 64, Workers: 8}

	var wg sync.WaitGroup

	for range stats.Workers {
		wg.Go(func() {
			for range stats.Count / stats.Workers {
				stats.Failed.Add(1)
			}
		})
	}

	wg.Wait()

	if got := stats.String(); !strings.HasPrefix(got, "64 parses (64 failed) on 8 workers") {
		t.Errorf("String() = %q", got)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	t.Parallel()

	err := render(context.Background(), &bytes.Buffer{}, "xml", nil)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("render(xml) error = %v, want %v", err, ErrInvalidFormat)
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{int64(3), "3"},
		{true, "true"},
		{[]any{"a", int64(1)}, "[a 1]"},
		{map[string]any{"b": 2.5, "a": "x"}, "{a=x b=2.5}"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := ErrParseArgs.Wrap(argv.ErrMissingValue)

	if !errors.Is(err, ErrParseArgs) || !errors.Is(err, argv.ErrMissingValue) {
		t.Errorf("errors.Is failed for %v", err)
	}

	if errors.Is(err, ErrCheckFailed) {
		t.Errorf("%v matched unrelated sentinel", err)
	}
}
