//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/modecli/log"
	"github.com/ardnew/modecli/pkg"
	"github.com/ardnew/modecli/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Profile the selected command (${enum})." placeholder:"MODE" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Parent of per-command profile directories." type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling options"}
}

// start profiles the command selected in ktx when a mode is set, writing
// into a subdirectory of Dir named after that command.
func (f pprofConfig) start(ctx context.Context, ktx *kong.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	var command string
	if node := ktx.Selected(); node != nil {
		command = node.Name
	}

	profiler := profile.Make(
		profile.WithMode(f.Mode),
		profile.WithPath(f.Dir),
		profile.WithLabel(command),
		profile.WithQuiet(true),
	)

	attrs := []slog.Attr{
		slog.String("mode", f.Mode),
		slog.String("command", command),
		slog.String("dir", profiler.Dir()),
	}

	log.DebugContext(ctx, "pprof start", attrs...)

	session := profiler.Start()

	return func() {
		session.Stop()
		log.DebugContext(ctx, "pprof stop", attrs...)
	}
}
