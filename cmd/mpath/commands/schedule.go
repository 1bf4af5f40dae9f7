package commands

import (
	"fmt"

	"github.com/mpath-tools/mpathkit/internal/flatten"
	"github.com/spf13/cobra"
)

type scheduleConfig struct {
	Preview bool
}

func installScheduleCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "get-schedule",
		Short: "Download one participant's beep schedule",
		Long: "Downloads the current beep schedule of one client connection, persists the " +
			"raw payload and writes a flattened CSV table next to it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.scheduleRun()
		},
	}

	cmd.Flags().BoolVar(&app.config.Schedule.Preview, "preview", false, "print a preview of the flattened table")

	app.cmd.AddCommand(cmd)
}

func (a *App) scheduleRun() error {
	connID, err := a.connectionID()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	res, err := client.GetSchedule(a.context(), connID)
	if err != nil {
		return err
	}
	logFetched("getSchedule", len(res.Rows), res.DumpPath)

	table := flatten.Objects(res.Rows)
	loc, err := a.location()
	if err != nil {
		return err
	}
	flatten.ConvertTimestamps(&table, loc)

	path, err := saveCSV(&table, res.DumpDir, fmt.Sprintf("schedule_%d", connID), stampOf(res))
	if err != nil {
		return err
	}
	a.report("raw payload", res.DumpPath)
	a.report("schedule table", path)

	if a.config.Schedule.Preview {
		return a.preview(&table)
	}
	return nil
}
