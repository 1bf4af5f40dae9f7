package commands

import (
	"fmt"
	"time"

	"github.com/mpath-tools/mpathkit/internal/mpath"
	"github.com/mpath-tools/mpathkit/internal/schedule"
	"github.com/spf13/cobra"
)

type pushConfig struct {
	Item          string
	Starts        []string
	Ends          []string
	Labels        []string
	Expiration    int
	Reminders     []int
	Randomization int
	AllowOverlap  bool
	SaveJSON      bool
	DryRun        bool
}

func installPushScheduleCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "push-schedule",
		Short: "Build new beeps and merge them into the live schedule",
		Long: "Builds beep entries from start and end times, merges them with the schedule " +
			"currently on the platform and uploads the combined set.",
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if app.config.Push.Item == "" {
				return app.usageErrorf("an interaction item ID is required (--item)")
			}
			if len(app.config.Push.Starts) == 0 {
				return app.usageErrorf("at least one start time is required (--start)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.pushScheduleRun()
		},
	}

	cmd.Flags().StringVar(&app.config.Push.Item, "item", "", "interaction item ID the beeps trigger")
	cmd.Flags().StringSliceVar(&app.config.Push.Starts, "start", nil, "beep start times (YYYY-MM-DD HH:MM:SS, repeatable)")
	cmd.Flags().StringSliceVar(&app.config.Push.Ends, "end", nil, "beep end times, omit to derive from --expiration")
	cmd.Flags().StringSliceVar(&app.config.Push.Labels, "label", nil, "local IDs for the new beeps, one per beep or a single one to broadcast")
	cmd.Flags().IntVar(&app.config.Push.Expiration, "expiration", 0, "expiration interval in seconds, substitutes for missing end times")
	cmd.Flags().IntSliceVar(&app.config.Push.Reminders, "reminder", nil, "reminder offsets in seconds, copied to every beep")
	cmd.Flags().IntVar(&app.config.Push.Randomization, "randomization", 0, "randomization scheme of the new beeps")
	cmd.Flags().BoolVar(&app.config.Push.AllowOverlap, "allow-overlap", false, "accept beeps with overlapping time windows")
	cmd.Flags().BoolVar(&app.config.Push.SaveJSON, "save-json", false, "save the built entries as JSON before uploading")
	cmd.Flags().BoolVar(&app.config.Push.DryRun, "dry-run", false, "merge and print the resulting schedule without uploading")

	app.cmd.AddCommand(cmd)
}

func (a *App) pushScheduleRun() error {
	connID, err := a.connectionID()
	if err != nil {
		return err
	}
	loc, err := a.location()
	if err != nil {
		return err
	}

	opts := schedule.BuildOptions{
		Labels:              a.config.Push.Labels,
		ReminderIntervals:   a.config.Push.Reminders,
		RandomizationScheme: a.config.Push.Randomization,
		Location:            loc,
	}
	if a.config.Push.Expiration > 0 {
		exp := a.config.Push.Expiration
		opts.ExpirationInterval = &exp
	}

	entries, err := schedule.BuildEntries(a.config.Push.Starts, a.config.Push.Ends, a.config.Push.Item, opts)
	if err != nil {
		return err
	}

	if a.config.Push.SaveJSON && a.config.OutputDir != "" {
		path, err := schedule.SaveUploadJSON(entries, a.config.OutputDir, "schedule_upload_", time.Now())
		if err != nil {
			return err
		}
		a.report("upload snapshot", path)
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	mergeOpts := schedule.MergeOptions{AllowOverlap: a.config.Push.AllowOverlap, Location: loc}

	if a.config.Push.DryRun {
		return a.dryRunMerge(client, connID, entries, mergeOpts)
	}

	res, err := client.MergeAndPush(a.context(), connID, entries, mergeOpts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.cmd.OutOrStdout(), "uploaded %d new beeps\n", len(entries))
	for localID, beepID := range res.New2ID {
		fmt.Fprintf(a.cmd.OutOrStdout(), "%s -> beep %d\n", localID, beepID)
	}
	return nil
}

// dryRunMerge previews the merged schedule without touching the platform.
func (a *App) dryRunMerge(client *mpath.Client, connID int, latest []schedule.Entry, opts schedule.MergeOptions) error {
	res, err := client.GetSchedule(a.context(), connID)
	if err != nil {
		return err
	}
	existing, err := schedule.FromMaps(res.Rows)
	if err != nil {
		return err
	}

	merged, err := schedule.Merge(existing, latest, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.cmd.OutOrStdout(), "dry run: %d existing + %d new = %d beeps\n", len(existing), len(latest), len(merged))
	for _, e := range merged {
		fmt.Fprintf(a.cmd.OutOrStdout(), "%s\t%s\t%s\n", e.StartTime, e.EndTime, e.ItemID)
	}
	return nil
}
