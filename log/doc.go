// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("model built", slog.Int("modes", 3))
//	logger.Error("parse failed", slog.Any("error", err))
//
// The zero [Logger] discards everything, so a component can hold one
// unconditionally and let callers opt in with a real logger.
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options replaced, and [Config]
// does the same for the package-level logger returned by [Default].
//
// # Adding Attributes
//
// Attributes can be added to the logger to be included in all subsequent
// log messages using the [Logger.With] method:
//
//	logger = logger.With(slog.String("mode", "run"))
//	logger.Info("option bound") // includes mode=run
//
// # Context-Aware Logging
//
// Each logging level has both a context-aware and context-unaware variant.
// Context-unaware functions use [DefaultContextProvider], which returns
// [context.TODO] by default.
//
// # Supported Levels
//
// The package supports five log levels: [LevelTrace], [LevelDebug],
// [LevelInfo], [LevelWarn], and [LevelError]. Messages below the
// configured level are discarded.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and
// [FormatJSON]. With [WithPretty] enabled, which is the default, both are
// colorized for terminals; otherwise the standard [slog] handlers are used.
package log
