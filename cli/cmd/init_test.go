package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct {
				Decl   string   `name:"decl"`
				Policy []string `name:"policy"`
				Strict bool     `name:"strict"`
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{
				"--decl=app.yaml", "--policy", "mode-undefined=fail", "--strict",
			})
			if err != nil {
				t.Fatal(err)
			}

			err = (&Init{Force: tt.force}).Run(WithContext(context.Background(), ktx))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			buf, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(buf, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, buf)
			}

			if got["decl"] != "app.yaml" || got["strict"] != true {
				t.Errorf("config = %v", got)
			}

			if _, ok := got["help"]; ok {
				t.Errorf("config includes help flag: %v", got)
			}

			if !strings.Contains(string(buf), "mode-undefined=fail") {
				t.Errorf("config lacks policy:\n%s", buf)
			}
		})
	}
}
