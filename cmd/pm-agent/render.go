// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pm-agent/internal/notes"
	"github.com/pdiddy/pm-agent/internal/prosemirror"
	"github.com/pdiddy/pm-agent/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render a rich-text tree or a Granola document to Markdown",
	Long: `Render reads a ProseMirror JSON tree and prints its Markdown. With
--document the input is a whole Granola document record, which is merged the
same way process merges it (transcript, enhanced notes, manual notes).
Reads stdin when no file or "-" is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Bool("document", false, "input is a document record, not a bare tree")
	renderCmd.Flags().String("transcript", "", "JSON file of transcript segments to merge with --document")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	asDocument, _ := cmd.Flags().GetBool("document")
	transcriptPath, _ := cmd.Flags().GetString("transcript")

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !asDocument {
		md, err := prosemirror.RenderJSON(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, md)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	src, err := notes.SourcesFromDocument(doc)
	if err != nil {
		return fmt.Errorf("document %s: %w", doc.Key(), err)
	}
	if transcriptPath != "" {
		raw, err := os.ReadFile(transcriptPath)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
		if err := json.Unmarshal(raw, &src.Transcript); err != nil {
			return fmt.Errorf("decoding transcript: %w", err)
		}
	}

	merged := notes.NewMerger(notes.OptionsFromConfig(cfg.Notes), logger).Merge(src)
	if merged == "" {
		return fmt.Errorf("document %s has no content", doc.Key())
	}
	fmt.Fprintln(out, merged)
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
