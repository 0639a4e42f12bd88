// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pm-agent/internal/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List processed meetings from the tracker",
	Long: `Status prints the meetings recorded as processed, most recent first.
Meetings recorded by older versions have no title or timestamp.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Int("limit", 20, "maximum rows to show (0 for all)")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tr, err := tracker.Open(cfg.Tracker, tracker.ReadOnly)
	if err != nil {
		return err
	}
	defer tr.Close()

	entries, err := tr.Entries(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No meetings processed yet.")
		return nil
	}

	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	rows := make([][]string, 0, len(shown))
	for _, e := range shown {
		at := ""
		if !e.ProcessedAt.IsZero() {
			at = e.ProcessedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{e.DocumentID, truncate(e.Title, 40), at, e.RunID})
	}
	fmt.Fprintln(out, renderTable([]string{"Document", "Title", "Processed", "Run"}, rows))
	fmt.Fprintf(out, "Total tracked (%s): %d\n", cfg.Tracker.Backend, len(entries))
	return nil
}
