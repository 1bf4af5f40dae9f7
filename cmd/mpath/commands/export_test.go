package commands

import (
	"bytes"

	"github.com/spf13/cobra"
)

// SetArgs sets the arguments for the command.
func (a *App) SetArgs(args []string) {
	a.cmd.SetArgs(args)
}

// CaptureOutput redirects the command output and returns the buffer.
func (a *App) CaptureOutput() *bytes.Buffer {
	buf := &bytes.Buffer{}
	a.cmd.SetOut(buf)
	a.cmd.SetErr(buf)
	return buf
}

// RootCmd returns the root command.
func (a App) RootCmd() *cobra.Command {
	return a.cmd
}
