package commands

import (
	"fmt"

	"github.com/mpath-tools/mpathkit/internal/dump"
	"github.com/mpath-tools/mpathkit/internal/flatten"
	"github.com/mpath-tools/mpathkit/internal/mpath"
	"github.com/spf13/cobra"
)

type clientsConfig struct {
	ChangedAfter string
	All          bool
	IDs          bool
	Preview      bool
}

func installClientsCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "get-clients",
		Short: "Download the practitioner's client metadata",
		Long: "Downloads the metadata of all client connections, persists the raw payload " +
			"and writes a flattened CSV table next to it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.clientsRun()
		},
	}

	cmd.Flags().StringVar(&app.config.Clients.ChangedAfter, "changed-after", "", "only connections changed after this UTC time (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().BoolVar(&app.config.Clients.All, "all", false, "fetch all connections regardless of change time")
	cmd.Flags().BoolVar(&app.config.Clients.IDs, "ids", false, "print only connection IDs and aliases")
	cmd.Flags().BoolVar(&app.config.Clients.Preview, "preview", false, "print a preview of the flattened table")

	app.cmd.AddCommand(cmd)
}

func (a *App) clientsRun() error {
	client, err := a.client()
	if err != nil {
		return err
	}

	res, err := client.GetClients(a.context(), mpath.ClientsQuery{
		ChangedAfterUTC: a.config.Clients.ChangedAfter,
		All:             a.config.Clients.All,
	})
	if err != nil {
		return err
	}
	logFetched("getClients", len(res.Rows), res.DumpPath)

	if a.config.Clients.IDs {
		for _, ref := range mpath.ClientIDsAndAliases(res.Rows) {
			fmt.Fprintf(a.cmd.OutOrStdout(), "%d\t%s\n", ref.ConnectionID, ref.Alias)
		}
		return nil
	}

	table := flatten.Objects(res.Rows)
	loc, err := a.location()
	if err != nil {
		return err
	}
	flatten.ConvertTimestamps(&table, loc)

	path, err := saveCSV(&table, res.DumpDir, "clients", stampOf(res))
	if err != nil {
		return err
	}
	a.report("raw payload", res.DumpPath)
	a.report("clients table", path)

	if a.config.Clients.Preview {
		return a.preview(&table)
	}
	return nil
}

// stampOf derives the filename stamp from the moment the fetch happened,
// so the raw dump and its CSV share a timestamp.
func stampOf(res mpath.FetchResult) string {
	return dump.Stamp(res.Raw.RequestedAt)
}
