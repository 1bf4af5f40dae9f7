package cli

import (
	"log/slog"

	"github.com/mpath-tools/mpathkit/internal/constants"
)

// SetVerbosity sets the logging level for the default logger based on the
// verbose flag count (-v info, -vv debug).
func SetVerbosity(level int) {
	switch level {
	case 0:
		slog.SetLogLoggerLevel(constants.DefaultLogLevel)
	case 1:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	default:
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
}
