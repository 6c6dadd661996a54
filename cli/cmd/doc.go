// Package cmd implements the modecli subcommands: parse, modes, order,
// bench and init. Each command reads the loaded [Declaration] from its
// context.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
