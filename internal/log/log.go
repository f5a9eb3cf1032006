// Package log builds the slog handlers used by the command-line tools.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

const (
	JSONFormat   = "json"
	LogfmtFormat = "logfmt"
	TextFormat   = "text"
)

// CreateHandler creates a [slog.Handler] writing to w from level and format
// names.
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := charmlog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(logFormat) {
	case JSONFormat:
		formatter = charmlog.JSONFormatter
	case LogfmtFormat:
		formatter = charmlog.LogfmtFormatter
	case TextFormat, "":
		formatter = charmlog.TextFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormat)
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
	}), nil
}
