// Package profile wraps [github.com/pkg/profile] for the modecli command.
//
// Profiling is compiled in only with the pprof build tag; otherwise [Modes]
// is empty and [Profiler.Start] returns a no-op. The command exposes it via
// --pprof-mode and --pprof-dir, and each run writes into a subdirectory of
// the output directory named after the selected command, so that profiles of
// "bench" and "parse" runs do not overwrite each other:
//
//	go build -tags pprof .
//	modecli --pprof-mode cpu -d app.yaml bench -n 10000 -- run -v x
//	go tool pprof -http=: ~/.cache/modecli/pprof/bench/cpu.pprof
//
// The bench command is the intended target: it repeats a model parse over a fixed argument list across a worker pool, which keeps the parser
// hot long enough for a CPU or allocation profile to be meaningful.
package profile
