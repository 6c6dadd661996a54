package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/modecli/log"
)

func ExampleMake() {
	logger := log.Make(os.Stdout,
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelTrace),
	)

	logger.Trace("token", slog.Int("pos", 0), slog.String("token", "--verbose"))
	logger.With(slog.String("mode", "run")).Warn("duplicate option")

	// Output:
	// level=TRACE msg=token pos=0 token=--verbose
	// level=WARN msg="duplicate option" mode=run
}
