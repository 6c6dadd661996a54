package repl

import (
	"context"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/modecli/cli/cmd"
	"github.com/ardnew/modecli/decl"
	"github.com/ardnew/modecli/log"
)

const testDecl = `
default_mode: run
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

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansi.ReplaceAllString(s, "") }

func testModel(t *testing.T) model {
	t.Helper()

	set, err := decl.Parse("app.yaml", []byte(testDecl))
	if err != nil {
		t.Fatalf("decl.Parse() error = %v", err)
	}

	d := &cmd.Declaration{Path: "app.yaml", Set: set}

	argm, err := d.Model()
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}

	return newModel(context.Background(), d, argm, NewHistory(""), log.Logger{})
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"blank", "   \t ", nil, false},
		{"words", "-v  run x", []string{"-v", "run", "x"}, false},
		{"single_quoted", `'a b' c`, []string{"a b", "c"}, false},
		{"double_quoted", `"a \"b\"" c`, []string{`a "b"`, "c"}, false},
		{"escaped_space", `a\ b`, []string{"a b"}, false},
		{"empty_quotes", `'' x`, []string{"", "x"}, false},
		{"joined", `--name="x y"`, []string{"--name=x y"}, false},
		{"literal_backslash_in_single", `'a\b'`, []string{`a\b`}, false},
		{"unterminated_single", `'abc`, nil, true},
		{"unterminated_double", `"abc`, nil, true},
		{"trailing_escape", `abc\`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitLine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitLine(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("splitLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "--jobs", 6, "--jobs", 0, 6},
		{"second_word", "-v --jo", 7, "--jo", 3, 7},
		{"mid_word", "--verbose", 4, "--verbose", 0, 9},
		{"at_start", "-v", 0, "-v", 0, 2},
		{"empty_at_boundary", "-v ", 3, "", 3, 3},
		{"inline_name", "--jobs=4", 4, "--jobs", 0, 6},
		{"inline_value", "--jobs=4", 8, "4", 7, 8},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	m := testModel(t)

	allNames := []string{"--verbose", "-v", "--jobs", "-j", "--long", "-l"}

	tests := []struct {
		name      string
		mode      inputMode
		input     string
		word      string
		wordStart int
		want      []string
	}{
		{"parse_option", modeParse, "--j", "--j", 0, allNames},
		{"parse_positional", modeParse, "bu", "bu", 0, nil},
		{"parse_inline_value", modeParse, "--jobs=-", "-", 7, nil},
		{"ctrl_command", modeCtrl, "mo", "mo", 0, ctrlCommands},
		{"ctrl_mode_arg", modeCtrl, "order r", "r", 6, []string{"run", "list"}},
		{"ctrl_no_arg", modeCtrl, "help x", "x", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.mode = tt.mode

			got := m.candidates(tt.input, tt.word, tt.wordStart)
			if !slices.Equal(got, tt.want) {
				t.Errorf("candidates(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("-v --jo")
	m.input.SetCursor(7)

	matches, start, end := m.computeMatches()
	if start != 3 || end != 7 {
		t.Errorf("bounds = (%d, %d), want (3, 7)", start, end)
	}

	if len(matches) == 0 || matches[0].Str != "--jobs" {
		t.Fatalf("best match = %v, want --jobs", matches)
	}
}

func TestCycleCompletesSoleCandidate(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("--verb")
	m.input.SetCursor(6)
	refreshMatches(&m, false)

	if len(m.matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(m.matches))
	}

	m = m.cycle(1)

	if got := m.input.Value(); got != "--verbose" {
		t.Errorf("input = %q, want --verbose", got)
	}

	if m.tabActive {
		t.Error("tabActive = true after sole completion")
	}
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() of missing file error = %v", err)
	}

	for _, e := range []HistoryEntry{
		{"-v run", modeParse},
		{"modes", modeCtrl},
		{"  ", modeParse},
		{"-v run", modeParse},
		{"modes", modeParse},
	} {
		if err := h.Write(e.Line, e.Mode); err != nil {
			t.Fatalf("Write(%q) error = %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"modes", modeCtrl},
		{"-v run", modeParse},
		{"modes", modeParse},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}

	if _, err := reloaded.Entry(len(want)); err != ErrOutOfBounds {
		t.Errorf("Entry(%d) error = %v, want %v", len(want), err, ErrOutOfBounds)
	}
}

func TestParseHistoryEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"P:-v x", HistoryEntry{"-v x", modeParse}},
		{"C:modes", HistoryEntry{"modes", modeCtrl}},
		{"bare", HistoryEntry{"bare", modeParse}},
	}

	for _, tt := range tests {
		if got := parseHistoryEntry(tt.line); got != tt.want {
			t.Errorf("parseHistoryEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}

		if got := tt.want.String(); tt.line != "bare" && got != tt.line {
			t.Errorf("String() = %q, want %q", got, tt.line)
		}
	}
}

func TestDescribeOption(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		word string
		want []string
	}{
		{"--jobs", []string{"--jobs, -j", "number", "mode run"}},
		{"-j=4", []string{"--jobs, -j", "number"}},
		{"-v", []string{"--verbose, -v", "flag", "mode common"}},
		{"--nope", nil},
	}

	for _, tt := range tests {
		got := stripANSI(describeOption(m.argm, tt.word))

		if tt.want == nil && got != "" {
			t.Errorf("describeOption(%q) = %q, want empty", tt.word, got)
		}

		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("describeOption(%q) = %q, missing %q", tt.word, got, w)
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bound", "--jobs 4 build a b", []string{
			"mode run", "--jobs = 4", "target = build", "extra = [a b]",
		}},
		{"quoted", `build 'a b'`, []string{"target = build", "extra = [a b]"}},
		{"bundle_warns", "-vj 2 build", []string{"mode run", "warning:"}},
		{"undefined", "--bogus", []string{"error:", "--bogus"}},
		{"incompatible", "--long --jobs 2", []string{"error:"}},
		{"unterminated", `"build`, []string{"error:", ErrUnterminated.Error()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(m.evaluate(tt.input))

			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("evaluate(%q) = %q, missing %q", tt.input, got, w)
				}
			}
		})
	}
}

func TestListings(t *testing.T) {
	m := testModel(t)

	modes := stripANSI(m.listModes())
	if !strings.Contains(modes, "run (default)") || !strings.Contains(modes, "list") {
		t.Errorf("listModes() = %q", modes)
	}

	order := stripANSI(m.listOrder([]string{"run"}))
	if !strings.Contains(order, "1. target") || !strings.Contains(order, "2. extra") {
		t.Errorf("listOrder(run) = %q", order)
	}

	if got := stripANSI(m.listOrder([]string{"nope"})); !strings.Contains(got, "error:") {
		t.Errorf("listOrder(nope) = %q, want error", got)
	}

	opts := stripANSI(m.listOptions([]string{"list"}))
	if !strings.Contains(opts, "--long") || strings.Contains(opts, "--jobs") {
		t.Errorf("listOptions(list) = %q", opts)
	}
}

func TestSwitchToModePreservesInput(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("-v")

	m = m.switchToMode(modeCtrl)
	if m.input.Value() != "" || m.mode != modeCtrl {
		t.Fatalf("after switch: mode %d input %q", m.mode, m.input.Value())
	}

	m.input.SetValue("mod")
	m = m.switchToMode(modeParse)

	if got := m.input.Value(); got != "-v" {
		t.Errorf("restored parse input = %q, want -v", got)
	}

	m = m.switchToMode(modeCtrl)
	if got := m.input.Value(); got != "mod" {
		t.Errorf("restored ctrl input = %q, want mod", got)
	}
}

func TestHistoryStepSwitchesMode(t *testing.T) {
	m := testModel(t)

	_ = m.history.Write("-v build", modeParse)
	_ = m.history.Write("modes", modeCtrl)
	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	if m.mode != modeCtrl || m.input.Value() != "modes" {
		t.Fatalf("step -1: mode %d input %q", m.mode, m.input.Value())
	}

	m = m.historyStep(-1, false)
	if m.mode != modeParse || m.input.Value() != "-v build" {
		t.Fatalf("step -2: mode %d input %q", m.mode, m.input.Value())
	}

	m = m.historyStep(1, true)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("same-mode step past newest: idx %d input %q",
			m.historyIdx, m.input.Value())
	}
}
