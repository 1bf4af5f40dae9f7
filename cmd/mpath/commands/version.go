package commands

import (
	"fmt"

	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/spf13/cobra"
)

func installVersionCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Returns the version of " + constants.CmdName + " and exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", constants.CmdName, constants.Version)
			return nil
		},
	}
	app.cmd.AddCommand(cmd)
}
