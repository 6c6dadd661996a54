package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/ardnew/modecli/argv"
	"github.com/ardnew/modecli/convert"
)

// Sentinel errors.
var (
	ErrRead    = errors.New("read declarations")
	ErrFormat  = errors.New("unsupported declaration format")
	ErrDecode  = errors.New("decode declarations")
	ErrInvalid = errors.New("invalid declaration")
	ErrCheck   = errors.New("check failed")
)

// Extensions lists the file extensions [Load] understands.
var Extensions = []string{".yaml", ".yml", ".hcl", ".json"}

// File is the decoded form of a declaration file.
type File struct {
	DefaultMode string            `yaml:"default_mode" hcl:"default_mode,optional"`
	Style       string            `yaml:"style"        hcl:"style,optional"`
	Policy      map[string]string `yaml:"policy"       hcl:"policy,optional"`
	Modes       []Mode            `yaml:"mode"         hcl:"mode,block"`
	Options     []Option          `yaml:"option"       hcl:"option,block"`
	Arguments   []Argument        `yaml:"argument"     hcl:"argument,block"`
}

// Mode declares a mode.
type Mode struct {
	ID       string   `yaml:"id"       hcl:"id,label"`
	Title    string   `yaml:"title"    hcl:"title,optional"`
	Parents  []string `yaml:"parents"  hcl:"parents,optional"`
	Abstract bool     `yaml:"abstract" hcl:"abstract,optional"`
}

// Option declares an option.
type Option struct {
	Name     string   `yaml:"name"     hcl:"name,label"`
	Aliases  []string `yaml:"aliases"  hcl:"aliases,optional"`
	Mode     string   `yaml:"mode"     hcl:"mode,optional"`
	Required bool     `yaml:"required" hcl:"required,optional"`
	Trigger  bool     `yaml:"trigger"  hcl:"trigger,optional"`
	Type     string   `yaml:"type"     hcl:"type,optional"`
	Style    string   `yaml:"style"    hcl:"style,optional"`
	Check    string   `yaml:"check"    hcl:"check,optional"`
}

// Argument declares a positional argument.
type Argument struct {
	ID       string `yaml:"id"       hcl:"id,label"`
	Mode     string `yaml:"mode"     hcl:"mode,optional"`
	Required bool   `yaml:"required" hcl:"required,optional"`
	Type     string `yaml:"type"     hcl:"type,optional"`
	Style    string `yaml:"style"    hcl:"style,optional"`
	CloseTo  string `yaml:"close_to" hcl:"close_to,optional"`
	After    bool   `yaml:"after"    hcl:"after,optional"`
	Check    string `yaml:"check"    hcl:"check,optional"`
}

// Load reads and compiles the declaration file at path.
func Load(path string) (*Set, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	return Parse(path, src)
}

// Parse decodes src, whose format is chosen by the extension of name, and
// compiles it into a [Set].
func Parse(name string, src []byte) (*Set, error) {
	var (
		f   File
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(src, &f)
	case ".hcl", ".json":
		err = decodeHCL(name, src, &f)
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)",
			ErrFormat, ext, strings.Join(Extensions, ", "))
	}

	if err != nil {
		return nil, err
	}

	return Compile(name, f)
}

func decodeYAML(src []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(src), yaml.DisallowUnknownField())
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

func decodeHCL(name string, src []byte, f *File) error {
	var (
		parser = hclparse.NewParser()
		file   *hcl.File
		diags  hcl.Diagnostics
	)

	if strings.EqualFold(filepath.Ext(name), ".json") {
		file, diags = parser.ParseJSON(src, name)
	} else {
		file, diags = parser.ParseHCL(src, name)
	}

	if diags.HasErrors() {
		return fmt.Errorf("%w: %w", ErrDecode, diags)
	}

	if diags := gohcl.DecodeBody(file.Body, nil, f); diags.HasErrors() {
		return fmt.Errorf("%w: %w", ErrDecode, diags)
	}

	return nil
}

// parseStyle parses a container style name of the file.
func parseStyle(subject, s string) (argv.ContainerStyle, error) {
	style, ok := argv.ParseContainerStyle(s)
	if !ok {
		return style, fmt.Errorf("%w: %s: style %q", ErrInvalid, subject, s)
	}

	return style, nil
}

// parseType parses a type expression of the file.
func parseType(subject, s string) (argv.Type, error) {
	t, err := convert.ParseType(s)
	if err != nil {
		return t, fmt.Errorf("%w: %s: %w", ErrInvalid, subject, err)
	}

	return t, nil
}
