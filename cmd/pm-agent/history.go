// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pm-agent/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved meeting summaries",
	Long: `History reads the frontmatter of every summary in the outputs directory
and lists them, newest first.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum rows to show (0 for all)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	summaries, err := output.ListSummaries(cfg.Output.Dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintf(out, "No summaries in %s.\n", cfg.Output.Dir)
		return nil
	}

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{s.Generated, s.Date, truncate(s.Meeting, 40), s.DocumentID})
	}
	fmt.Fprintln(out, renderTable([]string{"Generated", "Meeting Date", "Meeting", "Document"}, rows))
	return nil
}
