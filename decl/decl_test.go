package decl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/modecli/argv"
)

const sampleYAML = `
default_mode: run
style: comma
policy:
  option-duplicated: fail
mode:
  - id: common
    abstract: true
  - id: run
    title: Run
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
argument:
  - id: target
    mode: run
    close_to: FIRST
    required: true
  - id: extra
    mode: run
    type: list(string)
`

const sampleHCL = `
default_mode = "run"
style        = "comma"
policy       = { "option-duplicated" = "fail" }

mode "common" {
  abstract = true
}

mode "run" {
  title   = "Run"
  parents = ["common"]
}

option "--verbose" {
  aliases = ["-v"]
  mode    = "common"
  trigger = true
}

option "--jobs" {
  aliases = ["-j"]
  mode    = "run"
  type    = "number"
  check   = "value > 0"
}

argument "target" {
  mode     = "run"
  close_to = "FIRST"
  required = true
}

argument "extra" {
  mode = "run"
  type = "list(string)"
}
`

const sampleJSON = `{
  "default_mode": "run",
  "style": "comma",
  "policy": {"option-duplicated": "fail"},
  "mode": {
    "common": {"abstract": true},
    "run": {"title": "Run", "parents": ["common"]}
  },
  "option": {
    "--verbose": {"aliases": ["-v"], "mode": "common", "trigger": true},
    "--jobs": {"aliases": ["-j"], "mode": "run", "type": "number", "check": "value > 0"}
  },
  "argument": {
    "target": {"mode": "run", "close_to": "FIRST", "required": true},
    "extra": {"mode": "run", "type": "list(string)"}
  }
}`

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"decl.yaml", sampleYAML},
		{"decl.yml", sampleYAML},
		{"decl.hcl", sampleHCL},
		{"decl.json", sampleJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse(tt.name, []byte(tt.src))
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if set.Policy().OptionDuplicated != argv.Fail {
				t.Errorf("policy not applied: %+v", set.Policy())
			}

			if got := set.Checks(); !slices.Equal(got, []string{"--jobs"}) {
				t.Errorf("checks = %v", got)
			}

			model, err := set.Model()
			if err != nil {
				t.Fatalf("model error: %v", err)
			}

			if got := model.DefaultMode().Title(); got != "Run" {
				t.Errorf("default mode = %q, want Run", got)
			}

			res, err := model.Parse([]string{"-v", "-j", "4", "app", "a,b"})
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if v, _ := res.Option("--jobs"); v != int64(4) {
				t.Errorf("jobs = %v (%T)", v, v)
			}

			if v, _ := res.Argument("extra"); !slices.Equal(v.([]any), []any{"a", "b"}) {
				t.Errorf("extra = %v", v)
			}

			if err := set.Validate(res); err != nil {
				t.Errorf("validate: %v", err)
			}

			res, err = model.Parse([]string{"-j", "0", "app"})
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if err := set.Validate(res); !errors.Is(err, ErrCheck) {
				t.Errorf("expected ErrCheck, got %v", err)
			}

			_, err = model.Parse([]string{"-v", "-v", "app"})
			if !errors.Is(err, argv.ErrDuplicateOption) {
				t.Errorf("expected argv.ErrDuplicateOption, got %v", err)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"decl.toml", "", ErrFormat},
		{"decl.yaml", "mode: [", ErrDecode},
		{"decl.yaml", "unknown: 1", ErrDecode},
		{"decl.hcl", `mode {`, ErrDecode},
		{"decl.yaml", "style: sideways", ErrInvalid},
		{"decl.yaml", "policy: {nope: fail}", ErrInvalid},
		{"decl.yaml", "policy: {mode-undefined: maybe}", ErrInvalid},
		{"decl.yaml", "option: [{name: --x, type: 'list('}]", ErrInvalid},
		{"decl.yaml", "argument: [{id: x, type: any}]", ErrInvalid},
		{"decl.yaml", "option: [{name: --x, check: 'value >'}]", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.src, func(t *testing.T) {
			_, err := Parse(tt.name, []byte(tt.src))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	set, err := Parse("empty.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	model, err := set.Model()
	if err != nil {
		t.Fatalf("model error: %v", err)
	}

	if got := model.DefaultMode().ID(); got != argv.DefaultModeID {
		t.Errorf("default mode = %q", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decl.hcl")
	if err := os.WriteFile(path, []byte(sampleHCL), 0o600); err != nil {
		t.Fatal(err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if set.Name != path {
		t.Errorf("name = %q, want %q", set.Name, path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead, got %v", err)
	}
}

func TestSet_ModelErrors(t *testing.T) {
	set, err := Parse("cycle.yaml", []byte(`
mode:
  - {id: a, parents: [b]}
  - {id: b, parents: [a]}
`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, err := set.Model(); !errors.Is(err, argv.ErrModeCycle) {
		t.Errorf("expected argv.ErrModeCycle, got %v", err)
	}
}
