// Package cli contains the command line interface for modecli.
//
// # Usage
//
// The default command parses its arguments against a declaration file and
// prints the resolved mode and bound values:
//
//	modecli --decl app.yaml -- -v --jobs 4 build src
//
// Without --decl, a file named modecli with one of the extensions .yaml,
// .yml, .hcl or .json is searched for in the directories listed in
// MODECLI_PATH, the working directory and the configuration directory.
//
// # Commands
//
//   - parse: Parse arguments (default)
//   - modes: List declared modes and their extension closures
//   - order: Show the positional argument order, optionally for one mode
//   - bench: Repeatedly parse the same arguments on concurrent workers
//   - repl: Parse arguments interactively
//   - init: Write the current global flags to the configuration file
//
// # Declaration Options
//
//   - --decl, -d: Declaration file
//   - --policy: Set CONDITION=ACTION for a soft condition (repeatable)
//   - --strict, --lenient: Start from the all-fail or all-accept policy
//   - --default-mode: Mode used when no option selects one
//   - --style: Default container style (multiple, comma)
//
// # Configuration
//
// Global flags may also be set in config.yaml (or config.json) in the
// configuration directory. Keys are flag names with hyphens or underscores:
//
//	log-level: debug
//	strict: true
//	policy: [map-duplicate-key=accept]
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//		go build -tags pprof -o modecli .
//
//	  - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//	    heap, mem, mutex, thread, trace)
//	  - --pprof-dir: Set profile output directory (default:
//	    ~/.cache/modecli/pprof)
//
// # Examples
//
//	# Trace every token of a parse
//	modecli --log-level=trace -- --jobs 4 build
//
//	# Profile the parser
//	modecli --pprof-mode=cpu bench -n 100000 -- --jobs 4 build
package cli
