package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LilydevMC/mrpack-distributor/internal/analytics"
	"github.com/LilydevMC/mrpack-distributor/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past release runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent release runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		d, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer d.Close()

		runs, err := d.RecentRuns(limit)
		if err != nil {
			return err
		}

		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No release runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tTYPE\tNAME\tVERSION\tSTATUS\tRUN ID")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt, r.ProjectType, r.ProjectName, r.Version, r.Status, r.ID)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one release run with its publish events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer d.Close()

		run, err := d.GetRun(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %q not found", args[0])
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s\n", run.ID)
		fmt.Fprintf(w, "  Type:     %s\n", run.ProjectType)
		fmt.Fprintf(w, "  Project:  %s\n", run.ProjectName)
		fmt.Fprintf(w, "  Version:  %s\n", run.Version)
		if run.DisplayName != "" {
			fmt.Fprintf(w, "  Release:  %s\n", run.DisplayName)
		}
		fmt.Fprintf(w, "  Status:   %s\n", run.Status)
		if run.Detail != "" {
			fmt.Fprintf(w, "  Detail:   %s\n", run.Detail)
		}
		fmt.Fprintf(w, "  Started:  %s\n", run.StartedAt)
		if run.FinishedAt != "" {
			fmt.Fprintf(w, "  Finished: %s\n", run.FinishedAt)
		}

		events, err := d.EventsForRun(run.ID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		fmt.Fprintln(w, "  Publish Events:")
		for _, ev := range events {
			status := "ok"
			if !ev.OK {
				status = "failed"
			}
			line := fmt.Sprintf("    %s %s: %s", ev.Timestamp, ev.Target, status)
			if ev.RemoteRef != "" {
				line += " " + ev.RemoteRef
			}
			if ev.Detail != "" {
				line += " (" + ev.Detail + ")"
			}
			fmt.Fprintln(w, line)
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics across recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetString("since")
		format, _ := cmd.Flags().GetString("format")

		d, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer d.Close()

		outcomes, err := analytics.QueryRunOutcomes(d, since)
		if err != nil {
			return err
		}
		targets, err := analytics.QueryTargetReliability(d, since)
		if err != nil {
			return err
		}
		weekly, err := analytics.QueryWeeklyThroughput(d, since)
		if err != nil {
			return err
		}
		causes, err := analytics.QueryFailureCauses(d, since)
		if err != nil {
			return err
		}

		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"runs":           outcomes,
				"targets":        targets,
				"weekly":         weekly,
				"failure_causes": causes,
			})
		}

		w := cmd.OutOrStdout()
		if len(outcomes) == 0 {
			fmt.Fprintln(w, "No release runs recorded")
			return nil
		}

		fmt.Fprintln(w, "Runs:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  TYPE\tTOTAL\tDONE\tFAILED\tSUCCESS")
		for _, r := range outcomes {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%.1f%%\n", r.ProjectType, r.Total, r.Done, r.Failed, r.SuccessPct)
		}
		tw.Flush()

		fmt.Fprintln(w, "Targets:")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  TARGET\tATTEMPTS\tOK\tSUCCESS")
		for _, r := range targets {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%.1f%%\n", r.Target, r.Attempts, r.Succeeded, r.SuccessPct)
		}
		tw.Flush()

		if len(weekly) > 0 {
			fmt.Fprintln(w, "Weekly:")
			tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "  WEEK\tRUNS\tDONE\tFAILED")
			for _, r := range weekly {
				fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\n", r.Period, r.Runs, r.Done, r.Failed)
			}
			tw.Flush()
		}

		if len(causes) > 0 {
			fmt.Fprintln(w, "Common failures:")
			for _, c := range causes {
				fmt.Fprintf(w, "  %dx %s\n", c.Count, c.Detail)
			}
		}
		return nil
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all recorded runs (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			return fmt.Errorf("use --confirm to delete the release history")
		}

		d, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Release history cleared")
		return nil
	},
}

func openHistoryDB() (*history.DB, error) {
	path, err := history.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	d, err := history.Open(path)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	historyListCmd.Flags().String("format", "table", "Output format: table or json")
	historyStatsCmd.Flags().String("since", "", "Only count runs started on or after this date (YYYY-MM-DD)")
	historyStatsCmd.Flags().String("format", "table", "Output format: table or json")
	historyResetCmd.Flags().Bool("confirm", false, "Confirm deleting the entire history")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyResetCmd)
}
