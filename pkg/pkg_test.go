package pkg

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "modecli" {
		t.Errorf("Name = %q, want %q", Name, "modecli")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version() != want {
		t.Errorf("Version() = %q, want %q", Version(), want)
	}

	if strings.ContainsAny(Version(), " \n") {
		t.Errorf("Version() = %q has surrounding space", Version())
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for _, a := range Author {
		if a.Name == "" || !strings.Contains(a.Email, "@") {
			t.Errorf("invalid author %+v", a)
		}
	}
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/usr/bin/modecli", "modecli"},
		{"/tmp/__debug_bin1234", Name},
		{"/home/u/.hidden", "hidden"},
		{"C:/bin/tool.exe", "tool"},
		{"/opt/...", Name},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := prefixOf(tt.path); got != tt.want {
				t.Errorf("prefixOf(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDirs(t *testing.T) {
	for name, dir := range map[string]string{
		"ConfigDir": ConfigDir(),
		"CacheDir":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s() = %q does not end in %q", name, dir, Prefix())
		}
	}
}

func TestPathEnv(t *testing.T) {
	if got := PathEnv(); !strings.HasSuffix(got, "_PATH") || got != strings.ToUpper(got) {
		t.Errorf("PathEnv() = %q", got)
	}
}

func TestSearchPath(t *testing.T) {
	env1, env2, cwd, cfg := t.TempDir(), t.TempDir(), t.TempDir(), t.TempDir()
	missing := filepath.Join(cwd, "missing")
	join := func(dirs ...string) string {
		return strings.Join(dirs, string(os.PathListSeparator))
	}

	tests := []struct {
		name string
		env  string
		want []string
	}{
		{"empty env", "", []string{cwd, cfg}},
		{"env first", join(env1, missing, env2), []string{env1, env2, cwd, cfg}},
		{"duplicate keeps first", join(cfg, env1), []string{cfg, env1, cwd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchPath(tt.env, cwd, cfg); !slices.Equal(got, tt.want) {
				t.Errorf("searchPath(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindIn(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()

	for path, body := range map[string]string{
		filepath.Join(low, "app.yaml"):  "low",
		filepath.Join(high, "app.hcl"):  "high",
		filepath.Join(low, "other.hcl"): "other",
	} {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	dirs := []string{high, low}

	got, ok := findIn(dirs, "app", ".yaml", ".hcl")
	if !ok || got != filepath.Join(high, "app.hcl") {
		t.Errorf("findIn(app) = %q, %v", got, ok)
	}

	got, ok = findIn(dirs, "other.hcl")
	if !ok || got != filepath.Join(low, "other.hcl") {
		t.Errorf("findIn(other.hcl) = %q, %v", got, ok)
	}

	if _, ok := findIn(dirs, "missing", ".yaml"); ok {
		t.Error("findIn(missing) found a file")
	}

	abs := filepath.Join(low, "app.yaml")
	if got, ok := findIn(nil, abs); !ok || got != abs {
		t.Errorf("findIn(%q) = %q, %v", abs, got, ok)
	}
}
