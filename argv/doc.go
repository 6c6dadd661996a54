// Package argv implements a declarative, mode-aware command-line argument
// parser.
//
// A [Model] is built once from plain declaration records and is then used to
// parse any number of token vectors, possibly concurrently.
//
// # Modes
//
// Every option and positional argument belongs to a mode. Modes form an
// extension graph: a mode extends each of its parents and, transitively,
// everything they extend. A declaration owned by a mode is active in that
// mode and in every mode that extends it. The mode of a parse is fixed by
// the first option seen, narrowed by options of descendant modes, and left
// alone by options of ancestor modes. Options of unrelated modes are
// rejected with [ErrIncompatibleModes]. When no option fixes the mode, the
// default mode is used.
//
// # Positional order
//
// Arguments are ordered globally by placement directives. An argument is
// placed immediately before (or, with After, after) another argument, or
// relative to one of the anchors [ArgFirst] and [ArgLast]:
//
//	input  CloseTo: FIRST
//	output CloseTo: input,  After: true
//	extra  CloseTo: LAST                 // list(string), absorbs the rest
//
// The order for a mode is the global order filtered to the arguments active
// in that mode.
//
// # Tokens
//
//	--name value     option with a value
//	--name=value     option with an inline value
//	-abc             bundled triggers -a -b -c
//	--               end of options; everything after is positional
//	-                positional
//
// # Policy
//
// Six anomalies are soft conditions whose handling is configured by a
// [Policy]: each may be accepted silently, accepted with a [Diagnostic], or
// treated as an error. Every other anomaly is an error identified by one of
// the Err sentinels, which match with errors.Is.
//
// # Usage
//
//	model, err := argv.New(argv.Declarations{
//		Options: []argv.Option{
//			{Name: "--verbose", Aliases: []string{"-v"}, Trigger: true},
//			{Name: "--name", Required: true},
//		},
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := model.Parse([]string{"-v", "--name", "Alice"})
//	if err != nil {
//		return err
//	}
//
//	name, _ := res.Option("--name") // "Alice"
package argv
