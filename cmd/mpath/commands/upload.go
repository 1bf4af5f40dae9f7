package commands

import (
	"fmt"

	"github.com/mpath-tools/mpathkit/internal/fileutils"
	"github.com/spf13/cobra"
)

type uploadConfig struct {
	Minimal bool
}

func installSetScheduleCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "set-schedule FILE",
		Short: "Upload a full replacement schedule from a JSON file",
		Long: "Reads a JSON array of schedule entries and uploads it as the complete new " +
			"schedule of one client connection, replacing whatever is live.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.setScheduleRun(args[0])
		},
	}

	cmd.Flags().BoolVar(&app.config.Upload.Minimal, "minimal", false, "strip keys the platform does not accept before uploading")

	app.cmd.AddCommand(cmd)
}

func (a *App) setScheduleRun(file string) error {
	connID, err := a.connectionID()
	if err != nil {
		return err
	}

	var entries []map[string]any
	if err := fileutils.ReadJSONFile(file, &entries); err != nil {
		return fmt.Errorf("could not read schedule file: %v", err)
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	res, err := client.SetSchedule(a.context(), connID, entries, a.config.Upload.Minimal)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.cmd.OutOrStdout(), "uploaded %d schedule entries\n", len(entries))
	for localID, beepID := range res.New2ID {
		fmt.Fprintf(a.cmd.OutOrStdout(), "%s -> beep %d\n", localID, beepID)
	}
	return nil
}

func installSetInteractionsCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "set-interactions FILE",
		Short: "Upload interaction definitions from a JSON file",
		Long: "Reads a JSON array of interaction trees and uploads it as the complete new " +
			"questionnaire set of one client connection.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.setInteractionsRun(args[0])
		},
	}

	app.cmd.AddCommand(cmd)
}

func (a *App) setInteractionsRun(file string) error {
	connID, err := a.connectionID()
	if err != nil {
		return err
	}

	var interactions []any
	if err := fileutils.ReadJSONFile(file, &interactions); err != nil {
		return fmt.Errorf("could not read interactions file: %v", err)
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	if _, err := client.SetInteractions(a.context(), connID, interactions); err != nil {
		return err
	}

	fmt.Fprintf(a.cmd.OutOrStdout(), "uploaded %d interaction roots\n", len(interactions))
	return nil
}
