package rtty

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Diagnostics only.  Decoded text goes to stdout, never through here.
var logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	Prefix:          "rtty",
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

func Logger() *log.Logger {
	return logger
}

// SetLogLevel accepts debug, info, warn, error or fatal.
func SetLogLevel(level string) error {
	var l, err = log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, ErrInvalidConfig)
	}

	logger.SetLevel(l)

	return nil
}

func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
