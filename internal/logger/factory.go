package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Default creates a charm logger without timestamps that follows the global
// level. Output goes to stderr; stdout belongs to the transports.
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
