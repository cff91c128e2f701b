package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Lines carry a wall-clock stamp with
// centiseconds; level filtering happens here, not per command.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch times a command step such as an import.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	return &stopwatch{logger: l, start: time.Now()}
}

// done logs the formatted message at info level with the time since the
// stopwatch started as the "took" field.
func (s *stopwatch) done(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...), "took", time.Since(s.start).Round(time.Millisecond))
}
