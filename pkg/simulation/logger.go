package simulation

import (
	"fmt"
	"io"
	"strings"

	golog "github.com/tochemey/goakt/v3/log"
)

func parseLogLevel(level string) (golog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return golog.DebugLevel, nil
	case "", "info":
		return golog.InfoLevel, nil
	case "warn", "warning":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// NewLogger returns the logger shared by the world, its actor system and the harness.
// An unknown level falls back to info.
func NewLogger(level string, w io.Writer) golog.Logger {
	lvl, err := parseLogLevel(level)
	if err != nil {
		lvl = golog.InfoLevel
	}
	return golog.New(lvl, w)
}
