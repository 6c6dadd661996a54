package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Prefix returns the base prefix string used to construct the path to the
// configuration directory and the prefix for environment variable identifiers.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with cmd
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		return prefixOf(id)
	},
)

func prefixOf(path string) string {
	id := filepath.Base(path)
	id = strings.TrimSuffix(id, filepath.Ext(id))

	for _, sub := range []struct {
		rex *regexp.Regexp
		rep string
	}{
		{regexp.MustCompile(`^__debug_bin\d*$`), Name}, // default output from dlv
		{regexp.MustCompile(`^\.+`), ""},               // remove leading dot(s)
	} {
		id = sub.rex.ReplaceAllString(id, sub.rep)
	}

	if id == "" {
		return Name
	}

	return id
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(os.UserConfigDir, ".config")
	},
)

// CacheDir returns the cache directory path used for transient files such as
// the interactive history.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(os.UserCacheDir, ".cache")
	},
)

func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// PathEnv returns the name of the environment variable holding extra
// declaration directories, e.g. "MODECLI_PATH".
func PathEnv() string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").
		Replace(Prefix())) + "_PATH"
}

// SearchPath returns the directories searched for declaration files, in
// priority order: the entries of [PathEnv], the working directory, then
// [ConfigDir]. Entries that are not existing directories and duplicates are
// dropped.
func SearchPath() []string {
	return searchPath(os.Getenv(PathEnv()), ".", ConfigDir())
}

func searchPath(env string, fallback ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(fallback...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(filepath.SplitList(env)...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		if dir == "" || !isDir(dir) {
			continue
		}

		if dir = filepath.Clean(dir); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// FindDecl returns the first file named name, with or without one of exts
// appended, found in [SearchPath]. Absolute and explicitly relative paths
// are returned unchanged when they exist.
func FindDecl(name string, exts ...string) (string, bool) {
	return findIn(SearchPath(), name, exts...)
}

func findIn(dirs []string, name string, exts ...string) (string, bool) {
	candidates := append([]string{""}, exts...)

	if filepath.IsAbs(name) || strings.HasPrefix(name, "."+string(filepath.Separator)) {
		dirs = []string{""}
	}

	for _, dir := range dirs {
		for _, ext := range candidates {
			path := filepath.Join(dir, name+ext)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, true
			}
		}
	}

	return "", false
}
