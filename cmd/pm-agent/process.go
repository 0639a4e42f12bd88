// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pm-agent/internal/config"
	"github.com/pdiddy/pm-agent/internal/extract"
	"github.com/pdiddy/pm-agent/internal/granola"
	"github.com/pdiddy/pm-agent/internal/notes"
	"github.com/pdiddy/pm-agent/internal/output"
	"github.com/pdiddy/pm-agent/internal/pipeline"
	"github.com/pdiddy/pm-agent/internal/tracker"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process the latest (or every unprocessed) Granola meeting",
	Long: `Process fetches recent meetings from Granola, skips meetings that were
already processed, and extracts PM tasks, development tickets and a summary
from each remaining meeting. By default only the latest meeting is processed;
--all processes every unprocessed meeting in the listing.`,
	Example: `  pm-agent process
  pm-agent process --all
  pm-agent process --limit 5
  pm-agent process --force --provider openai --model gpt-4o`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("all", false, "process all unprocessed meetings (default: latest only)")
	processCmd.Flags().Int("limit", 0, "maximum number of meetings to fetch (default 50 with --all, else 1)")
	processCmd.Flags().Bool("force", false, "reprocess meetings even if already processed")
	processCmd.Flags().String("output-dir", "", "output directory (default: outputs)")
	processCmd.Flags().String("provider", "", "AI provider: anthropic or openai")
	processCmd.Flags().String("model", "", "model identifier (default: provider default)")

	_ = viper.BindPFlag("output.dir", processCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("ai.provider", processCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("ai.model", processCmd.Flags().Lookup("model"))

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.RequireCredentials(cfg.AI); err != nil {
		return fmt.Errorf("ai: %w", err)
	}

	client, err := granola.New(cfg.Granola, logger)
	if err != nil {
		if errors.Is(err, granola.ErrNoCredentials) {
			return fmt.Errorf("%w: make sure Granola is installed and you are logged in, or set granola-access-token in %s", err, secretsDir)
		}
		return err
	}

	backend, err := extract.NewBackend(cfg.AI, logger)
	if err != nil {
		return err
	}
	prompts, err := extract.NewPrompts(cfg.Prompts)
	if err != nil {
		return err
	}
	rules := config.NewRules(cfg.Rules)
	processor := extract.NewProcessor(backend, prompts, extract.Options{
		CallRetries:  cfg.AI.CallRetries,
		HighPriority: rules.IsHighPriority,
	}, logger)

	manager, err := output.NewManager(cfg.Output, rules.SlackHandle, logger)
	if err != nil {
		return err
	}

	tr, err := tracker.Open(cfg.Tracker, tracker.ReadWrite)
	if err != nil {
		return err
	}
	defer tr.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "AI provider: %s\n", cfg.AI.Provider)

	runner := pipeline.NewRunner(
		client,
		notes.NewMerger(notes.OptionsFromConfig(cfg.Notes), logger),
		processor,
		manager,
		tr,
		pipeline.Options{MinMeetingLength: rules.MinMeetingLength(), Skip: rules.ShouldSkip},
		logger,
		out,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := runner.Run(ctx, pipeline.RunOptions{All: all, Limit: limit, Force: force})
	if len(summary.Outcomes) > 0 {
		fmt.Fprintln(out, renderOutcomes(summary))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Processed: %d  Skipped: %d  Empty: %d  Failed: %d  Total tracked: %d\n",
		summary.Processed, summary.Skipped, summary.Empty, summary.Failed, summary.Tracked)
	if summary.HasFailures() {
		return fmt.Errorf("%d meeting(s) failed", summary.Failed)
	}
	return nil
}

func renderOutcomes(summary pipeline.BatchSummary) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		detail := o.Reason
		if o.Err != nil {
			detail = o.Err.Error()
		}
		if o.Status == pipeline.StatusProcessed {
			detail = o.Paths.Summary
			if detail == "" {
				detail = o.Paths.PMTasks
			}
		}
		rows = append(rows, []string{
			o.DocumentID,
			truncate(o.Title, 40),
			string(o.Status),
			strconv.Itoa(o.PMItems),
			strconv.Itoa(o.DevTickets),
			truncate(detail, 60),
		})
	}
	return renderTable([]string{"Document", "Title", "Status", "PM Tasks", "Dev Tickets", "Detail"}, rows, 4, 5)
}
