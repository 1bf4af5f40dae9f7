// Main package for the mpath command line tool.
package main

import (
	"log/slog"
	"os"

	"github.com/mpath-tools/mpathkit/cmd/mpath/commands"
	"github.com/mpath-tools/mpathkit/internal/constants"
)

func main() {
	slog.SetLogLoggerLevel(constants.DefaultLogLevel)

	a, err := commands.New()
	if err != nil {
		os.Exit(1)
	}

	os.Exit(run(a))
}

type app interface {
	Run() error
	UsageError() bool
}

func run(a app) int {
	if err := a.Run(); err != nil {
		slog.Error(err.Error())

		if hint := commands.Hint(err); hint != "" {
			os.Stderr.WriteString(hint + "\n")
		}

		if a.UsageError() {
			return 2
		}
		return 1
	}

	return 0
}
