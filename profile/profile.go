package profile

import "path/filepath"

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler configures a profiling session.
type Profiler struct {
	Mode  string
	Path  string
	Label string
	Quiet bool
}

// Option applies a configuration option to a Profiler.
type Option func(Profiler) Profiler

// Make returns a Profiler with opts applied.
func Make(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath returns a functional option for setting a profiler's output
// directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithLabel returns a functional option that places a profiler's output in
// the subdirectory label of its path.
func WithLabel(label string) Option {
	return func(p Profiler) Profiler {
		p.Label = label

		return p
	}
}

// Dir returns the directory profile files are written to.
func (p Profiler) Dir() string {
	if p.Label == "" {
		return p.Path
	}

	return filepath.Join(p.Path, filepath.Base(p.Label))
}

// WithQuiet returns a functional option for suppressing the profiler's own
// log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Start begins profiling and returns a handle for stopping it.
//
// If the binary was built without the pprof tag, or p.Mode is empty or not
// one of [Modes], Start returns a no-op. Both Start and Stop are always
// safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether the binary was built with profiling support.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
