// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a batch of meeting documents through merge,
// extraction and persistence, one document at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pdiddy/pm-agent/internal/notes"
	"github.com/pdiddy/pm-agent/internal/output"
	"github.com/pdiddy/pm-agent/internal/tracker"
	"github.com/pdiddy/pm-agent/pkg/types"
)

const (
	defaultAllLimit    = 50
	defaultLatestLimit = 1
)

// ErrNoDocuments is returned when the note service lists nothing.
var ErrNoDocuments = errors.New("no documents found")

// Source lists documents and fetches their transcripts.
type Source interface {
	ListDocuments(ctx context.Context, limit, offset int) ([]types.Document, error)
	Transcript(ctx context.Context, documentID string) ([]types.TranscriptSegment, error)
}

// Extractor turns merged notes into a structured result.
type Extractor interface {
	Extract(ctx context.Context, notes string) (*types.ExtractionResult, error)
}

// Sink persists a result.
type Sink interface {
	SaveAll(result *types.ExtractionResult, meta types.MeetingMeta) (output.Paths, error)
}

// Status is the fate of one document in a batch.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// Outcome records what happened to one document.
type Outcome struct {
	DocumentID string
	Title      string
	Status     Status
	Reason     string
	Err        error
	Paths      output.Paths
	PMItems    int
	DevTickets int
}

// BatchSummary holds counts from a run.
type BatchSummary struct {
	RunID     string
	Processed int
	Skipped   int
	Empty     int
	Failed    int

	// Tracked is the tracker's total after the run.
	Tracked  int
	Outcomes []Outcome
}

// Total returns the number of documents considered.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Empty + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

func (s *BatchSummary) record(o Outcome) {
	switch o.Status {
	case StatusProcessed:
		s.Processed++
	case StatusSkipped:
		s.Skipped++
	case StatusEmpty:
		s.Empty++
	case StatusFailed:
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// RunOptions selects which documents a run considers.
type RunOptions struct {
	// All processes every unprocessed document in the listing instead of
	// stopping after the first success.
	All bool

	// Limit caps the listing (default 50 with All, else 1).
	Limit int

	// Force reprocesses documents the tracker already holds.
	Force bool
}

// Options holds the document filters.
type Options struct {
	// MinMeetingLength is the shortest trimmed merged-notes length worth
	// extracting.
	MinMeetingLength int

	// Skip reports whether a meeting title should be skipped. Nil skips
	// nothing.
	Skip func(title string) bool
}

// Runner wires the collaborators of a run.
type Runner struct {
	source    Source
	merger    *notes.Merger
	extractor Extractor
	sink      Sink
	tracker   tracker.Tracker
	opts      Options
	logger    *slog.Logger
	w         io.Writer

	// newRunID is swapped in tests.
	newRunID func() string
}

// NewRunner returns a Runner. Progress lines go to w; a nil logger discards.
func NewRunner(source Source, merger *notes.Merger, extractor Extractor, sink Sink, tr tracker.Tracker, opts Options, logger *slog.Logger, w io.Writer) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if w == nil {
		w = io.Discard
	}
	return &Runner{
		source:    source,
		merger:    merger,
		extractor: extractor,
		sink:      sink,
		tracker:   tr,
		opts:      opts,
		logger:    logger,
		w:         w,
		newRunID:  uuid.NewString,
	}
}

// Run lists documents and processes them in order. A failing document is
// recorded and the batch continues; only listing failures, tracker read
// failures and cancellation end the run early.
func (r *Runner) Run(ctx context.Context, ro RunOptions) (BatchSummary, error) {
	summary := BatchSummary{RunID: r.newRunID()}
	logger := r.logger.With("run_id", summary.RunID)

	limit := ro.Limit
	if limit <= 0 {
		limit = defaultLatestLimit
		if ro.All {
			limit = defaultAllLimit
		}
	}

	logger.Info("listing documents", "limit", limit, "all", ro.All, "force", ro.Force)
	docs, err := r.source.ListDocuments(ctx, limit, 0)
	if err != nil {
		return summary, fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		return summary, ErrNoDocuments
	}
	fmt.Fprintf(r.w, "found %d meeting(s)\n", len(docs))

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		id := doc.Key()
		if id == "" {
			id = fmt.Sprintf("unknown_%d", i+1)
		}
		title := doc.DisplayTitle()

		if !ro.Force {
			done, err := r.tracker.IsProcessed(ctx, id)
			if err != nil {
				return summary, fmt.Errorf("checking tracker: %w", err)
			}
			if done {
				summary.record(Outcome{DocumentID: id, Title: title, Status: StatusSkipped, Reason: "already processed"})
				fmt.Fprintf(r.w, "skipped %s: already processed (use --force to reprocess)\n", id)
				continue
			}
		}

		if r.opts.Skip != nil && r.opts.Skip(doc.Title) {
			summary.record(Outcome{DocumentID: id, Title: title, Status: StatusSkipped, Reason: "skip keyword"})
			fmt.Fprintf(r.w, "skipped %s: title %q matches a skip keyword\n", id, title)
			continue
		}

		fmt.Fprintf(r.w, "processing %s (%s)\n", title, id)
		o := r.processOne(ctx, logger.With("document_id", id), doc, id, summary.RunID)
		summary.record(o)

		switch o.Status {
		case StatusProcessed:
			fmt.Fprintf(r.w, "processed %s: %d PM task(s), %d dev ticket(s)\n", id, o.PMItems, o.DevTickets)
		case StatusEmpty:
			fmt.Fprintf(r.w, "empty   %s: %s\n", id, o.Reason)
		case StatusFailed:
			fmt.Fprintf(r.w, "failed  %s: %v\n", id, o.Err)
		}

		if !ro.All && summary.Processed > 0 {
			break
		}
	}

	if n, err := r.tracker.Count(ctx); err != nil {
		logger.Warn("counting tracked documents", "error", err)
	} else {
		summary.Tracked = n
	}

	logger.Info("run complete",
		"processed", summary.Processed, "skipped", summary.Skipped,
		"empty", summary.Empty, "failed", summary.Failed, "tracked", summary.Tracked)
	return summary, nil
}

// processOne merges, extracts, saves and marks one document. Every failure
// is captured in the Outcome.
func (r *Runner) processOne(ctx context.Context, logger *slog.Logger, doc types.Document, id, runID string) Outcome {
	o := Outcome{DocumentID: id, Title: doc.DisplayTitle()}
	fail := func(stage string, err error) Outcome {
		logger.Error(stage+" failed", "error", err)
		o.Status = StatusFailed
		o.Err = fmt.Errorf("%s: %w", stage, err)
		return o
	}

	src, err := notes.SourcesFromDocument(doc)
	if err != nil {
		return fail("reading notes", err)
	}

	transcript, err := r.source.Transcript(ctx, id)
	if err != nil {
		logger.Warn("transcript unavailable, continuing without it", "error", err)
	}
	src.Transcript = transcript

	merged := r.merger.Merge(src)
	if n := utf8.RuneCountInString(strings.TrimSpace(merged)); n == 0 || n < r.opts.MinMeetingLength {
		logger.Info("document empty or too short", "length", n)
		o.Status = StatusEmpty
		o.Reason = "notes empty or too short"
		return o
	}
	logger.Debug("merged notes", "length", len(merged))

	result, err := r.extractor.Extract(ctx, merged)
	if err != nil {
		return fail("extracting", err)
	}
	o.PMItems = len(result.PMActionItems)
	o.DevTickets = len(result.DevTickets)

	// An untitled meeting keeps an empty title so file names fall back to
	// the document ID.
	meta := types.MeetingMeta{
		Title:      doc.Title,
		Date:       doc.Created(),
		DocumentID: id,
		RunID:      runID,
	}
	paths, err := r.sink.SaveAll(result, meta)
	if err != nil {
		return fail("saving", err)
	}
	o.Paths = paths
	if paths.Empty() {
		logger.Info("nothing extracted")
		o.Status = StatusEmpty
		o.Reason = "nothing extracted"
		return o
	}

	if err := r.tracker.MarkProcessed(ctx, tracker.Entry{DocumentID: id, Title: o.Title, RunID: runID}); err != nil {
		return fail("tracking", err)
	}

	logger.Info("document processed", "pm_items", o.PMItems, "dev_tickets", o.DevTickets, "files", len(paths.All()))
	o.Status = StatusProcessed
	return o
}
