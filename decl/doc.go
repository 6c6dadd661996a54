// Package decl loads option, argument and mode declarations from files.
//
// YAML files (.yaml, .yml) are decoded with goccy/go-yaml; HCL files (.hcl)
// and their JSON form (.json) with hashicorp/hcl. All formats share one
// schema:
//
//	default_mode = "run"
//	style        = "comma"
//	policy       = { "mode-undefined" = "fail" }
//
//	mode "run" {
//	  title   = "Run"
//	  parents = ["common"]
//	}
//
//	option "--jobs" {
//	  aliases = ["-j"]
//	  mode    = "run"
//	  type    = "number"
//	  check   = "value > 0"
//	}
//
//	argument "target" {
//	  mode     = "run"
//	  close_to = "FIRST"
//	}
//
// The equivalent YAML uses lists under the keys mode, option and argument,
// with the block label given as id (modes and arguments) or name (options).
//
// A check is an expr-lang boolean expression evaluated by [Set.Validate]
// against the parsed value, with the variables value, name and mode.
package decl
