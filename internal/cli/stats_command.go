package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"snakesound.click/internal/tracking"
)

func newStatsCommand() *cobra.Command {
	var since string
	var limit int
	var asJSON bool

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded playback events",
		Long: `Summarize the playback events recorded in the tracking database.

--since takes a preset (today, yesterday, week, last-week, month, last-month, all)
or a natural-language phrase such as "3 days ago" or "last monday".

Examples:
  snakesound stats
  snakesound stats --since today
  snakesound stats --since "2 hours ago" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, since, limit, asJSON)
		},
	}

	statsCmd.Flags().StringVar(&since, "since", "all", "Time range to summarize")
	statsCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sounds to list (0 = all)")
	statsCmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return statsCmd
}

func runStats(cmd *cobra.Command, since string, limit int, asJSON bool) error {
	cli, err := requireCLI(cmd)
	if err != nil {
		return err
	}

	cfg, err := cli.loadAndValidateConfig(cmd)
	if err != nil {
		return err
	}
	cli.setupLogging(cfg, cmd.ErrOrStderr())
	cli.initializeTracking(cfg)

	if cli.trackingDB == nil {
		return fmt.Errorf("playback tracking is not enabled or database is not available")
	}

	now := time.Now()
	filter, err := tracking.ParseSince(since, now)
	if err != nil {
		return err
	}
	filter.Limit = limit

	summary, err := tracking.GetSummary(cli.trackingDB, filter, now)
	if err != nil {
		slog.Error("failed to summarize playback events", "error", err)
		return fmt.Errorf("failed to summarize playback events: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	printSummary(cmd.OutOrStdout(), summary, since)
	return nil
}

func printSummary(w io.Writer, summary *tracking.Summary, since string) {
	fmt.Fprintf(w, "Playback events (%s):\n\n", since)

	if summary.TotalEvents == 0 {
		fmt.Fprintln(w, "No events recorded")
		return
	}

	fmt.Fprintf(w, "Summary: %d events across %d sessions\n\n", summary.TotalEvents, summary.Sessions)

	for _, k := range summary.Kinds {
		fmt.Fprintf(w, "  %-15s %5d  %5.1f%%\n", k.Kind, k.Count, k.Percentage)
	}

	if len(summary.Sounds) == 0 {
		return
	}

	fmt.Fprintf(w, "\n  %4s  %6s  %6s  %7s  %7s  %s\n", "ID", "PLAYED", "MUTED", "DROPPED", "UNKNOWN", "LAST SEEN")
	for _, s := range summary.Sounds {
		fmt.Fprintf(w, "  %4d  %6d  %6d  %7d  %7d  %s\n",
			s.SoundID, s.Played, s.Muted, s.Dropped, s.Unknown, s.LastSeen.Format(time.DateTime))
	}
}
