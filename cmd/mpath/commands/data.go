package commands

import (
	"fmt"

	"github.com/mpath-tools/mpathkit/internal/flatten"
	"github.com/spf13/cobra"
)

type dataConfig struct {
	Preview bool
}

func installDataCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "get-data",
		Short: "Download one participant's data points",
		Long: "Downloads the raw data points of one client connection, persists the payload " +
			"and flattens each beep answer into a CSV row.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.dataRun()
		},
	}

	cmd.Flags().BoolVar(&app.config.Data.Preview, "preview", false, "print a preview of the flattened table")

	app.cmd.AddCommand(cmd)
}

func (a *App) dataRun() error {
	connID, err := a.connectionID()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	res, err := client.GetData(a.context(), connID)
	if err != nil {
		return err
	}
	logFetched("getData", len(res.Rows), res.DumpPath)

	table := flatten.DataRows(res.Rows)
	loc, err := a.location()
	if err != nil {
		return err
	}
	flatten.ConvertTimestamps(&table, loc)

	path, err := saveCSV(&table, res.DumpDir, fmt.Sprintf("data_clean_%d", connID), stampOf(res))
	if err != nil {
		return err
	}
	a.report("raw payload", res.DumpPath)
	a.report("data table", path)

	if a.config.Data.Preview {
		return a.preview(&table)
	}
	return nil
}
