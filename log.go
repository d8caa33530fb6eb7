package safely

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

const failureMsg = "safely: operation failed"

// stderrLogger is the default failure sink: a tint handler on standard
// error.
func stderrLogger() func(error) {
	l := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelError,
		TimeFormat: time.RFC3339,
	}))
	return slogSink(l)
}

func slogSink(l *slog.Logger) func(error) {
	return func(err error) {
		l.Error(failureMsg, tint.Err(err))
	}
}
