package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mpath-tools/mpathkit/internal/dump"
	"github.com/mpath-tools/mpathkit/internal/fileutils"
	"github.com/mpath-tools/mpathkit/internal/flatten"
	"github.com/spf13/cobra"
)

type interactionsConfig struct {
	Preview bool
}

func installInteractionsCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "get-interactions",
		Short: "Download one participant's interaction definitions",
		Long: "Downloads the questionnaire tree of one client connection and writes one " +
			"raw JSON file and one flattened CSV table per interaction root.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.interactionsRun()
		},
	}

	cmd.Flags().BoolVar(&app.config.Interactions.Preview, "preview", false, "print a preview of each flattened table")

	app.cmd.AddCommand(cmd)
}

func (a *App) interactionsRun() error {
	connID, err := a.connectionID()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	res, err := client.GetInteractions(a.context(), connID)
	if err != nil {
		return err
	}
	logFetched("getInteractions", len(res.Rows), res.DumpPath)

	loc, err := a.location()
	if err != nil {
		return err
	}

	stamp := stampOf(res)
	for i, root := range flatten.InteractionRoots(res.Rows) {
		stem := fmt.Sprintf("%02d_%s", i+1, dump.Slug(root.Title))

		if res.DumpDir != "" {
			raw, err := json.MarshalIndent(res.Rows[i], "", "  ")
			if err != nil {
				return fmt.Errorf("could not serialize interaction root %q: %v", root.Title, err)
			}
			rawPath := filepath.Join(res.DumpDir, fmt.Sprintf("%s_%s_raw.json", stem, stamp))
			if err := fileutils.AtomicWrite(rawPath, raw); err != nil {
				return fmt.Errorf("could not write interaction root %q: %v", root.Title, err)
			}
			a.report("raw interaction", rawPath)
		}

		table := root.Table
		flatten.ConvertTimestamps(&table, loc)

		path, err := saveCSV(&table, res.DumpDir, stem, stamp)
		if err != nil {
			return err
		}
		a.report("interaction table", path)

		if a.config.Interactions.Preview {
			fmt.Fprintf(a.cmd.OutOrStdout(), "\n%s\n", root.Title)
			if err := a.preview(&table); err != nil {
				return err
			}
		}
	}
	return nil
}
