// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notes merges a meeting's transcript, the note service's enhanced
// notes, and the user's manual notes into one Markdown document.
package notes

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/pm-agent/internal/prosemirror"
	"github.com/pdiddy/pm-agent/pkg/types"
)

const (
	DefaultTranscriptTitle    = "Transcript"
	DefaultEnhancedNotesTitle = "Enhanced Notes (by Granola)"
	DefaultManualNotesTitle   = "Manual Notes"
	DefaultMinManualLength    = 10

	sectionSeparator = "\n\n---\n\n"
)

// Options configures section titles and the manual-notes threshold. Zero
// fields take the defaults above.
type Options struct {
	TranscriptTitle    string
	EnhancedNotesTitle string
	ManualNotesTitle   string

	// MinManualLength is the rune count manual notes must exceed.
	MinManualLength int

	// SpeakerLabels maps a transcript source to its label. Sources without a
	// label are emitted as raw text.
	SpeakerLabels map[types.TranscriptSource]string
}

// DefaultSpeakerLabels labels the local microphone and remote system audio.
func DefaultSpeakerLabels() map[types.TranscriptSource]string {
	return map[types.TranscriptSource]string{
		types.SourceMicrophone: "Me",
		types.SourceSystem:     "System",
	}
}

// OptionsFromConfig builds Options from the notes section of the config.
func OptionsFromConfig(cfg types.NotesConfig) Options {
	return Options{
		TranscriptTitle:    cfg.TranscriptTitle,
		EnhancedNotesTitle: cfg.EnhancedNotesTitle,
		ManualNotesTitle:   cfg.ManualNotesTitle,
		MinManualLength:    cfg.MinManualLength,
	}
}

func (o Options) withDefaults() Options {
	if o.TranscriptTitle == "" {
		o.TranscriptTitle = DefaultTranscriptTitle
	}
	if o.EnhancedNotesTitle == "" {
		o.EnhancedNotesTitle = DefaultEnhancedNotesTitle
	}
	if o.ManualNotesTitle == "" {
		o.ManualNotesTitle = DefaultManualNotesTitle
	}
	if o.MinManualLength <= 0 {
		o.MinManualLength = DefaultMinManualLength
	}
	if o.SpeakerLabels == nil {
		o.SpeakerLabels = DefaultSpeakerLabels()
	}
	return o
}

// Manual is the user's manual notes: a tree, a string, or absent.
type Manual struct {
	Tree *prosemirror.Node
	Text string
}

// ManualTree wraps an already-decoded tree.
func ManualTree(n *prosemirror.Node) Manual { return Manual{Tree: n} }

// ManualText wraps a string, which may itself be a JSON-encoded tree.
func ManualText(s string) Manual { return Manual{Text: s} }

// IsZero reports whether no manual notes were supplied.
func (m Manual) IsZero() bool { return m.Tree == nil && m.Text == "" }

// ManualFromJSON classifies a raw document field. Empty values such as
// null, "", {} and [] are absent; objects are decoded as trees; strings are kept for render-time
// parsing. Any other JSON shape is a *prosemirror.ShapeError.
func ManualFromJSON(raw json.RawMessage) (Manual, error) {
	if types.IsEmptyJSON(raw) {
		return Manual{}, nil
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '{':
		n, err := prosemirror.Decode(trimmed)
		if err != nil {
			return Manual{}, err
		}
		return ManualTree(n), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Manual{}, &prosemirror.ShapeError{Path: "$", Value: string(trimmed), Err: err}
		}
		return ManualText(s), nil
	}
	return Manual{}, &prosemirror.ShapeError{Path: "$", Value: string(trimmed)}
}

// Sources are the inputs to one merge. Every field is optional.
type Sources struct {
	Transcript    []types.TranscriptSegment
	EnhancedNotes string
	Manual        Manual

	// Fallback is returned when no section qualifies.
	Fallback string
}

// SourcesFromDocument collects the note fields of a service document.
// The transcript is fetched separately and attached by the caller.
func SourcesFromDocument(doc types.Document) (Sources, error) {
	manual, err := ManualFromJSON(doc.ManualContent())
	if err != nil {
		return Sources{}, err
	}
	return Sources{
		EnhancedNotes: doc.NotesMarkdown,
		Manual:        manual,
		Fallback:      doc.Fallback(),
	}, nil
}

// Merger combines note sources into a single Markdown document.
type Merger struct {
	opts   Options
	logger *slog.Logger
}

// NewMerger returns a Merger. A nil logger discards output.
func NewMerger(opts Options, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Merger{opts: opts.withDefaults(), logger: logger}
}

type section struct {
	title string
	body  string
}

// Merge returns the merged Markdown. An empty result means there is nothing
// to process; it is not an error.
func (m *Merger) Merge(src Sources) string {
	var sections []section

	if transcript := FormatTranscript(src.Transcript, m.opts.SpeakerLabels); transcript != "" {
		m.logger.Debug("transcript section", "length", len(transcript), "segments", len(src.Transcript))
		sections = append(sections, section{m.opts.TranscriptTitle, transcript})
	}

	enhanced := strings.TrimSpace(src.EnhancedNotes)
	if enhanced != "" {
		m.logger.Debug("enhanced notes section", "length", len(enhanced))
		sections = append(sections, section{m.opts.EnhancedNotesTitle, enhanced})
	}

	if !src.Manual.IsZero() {
		manual := m.renderManual(src.Manual)
		switch {
		case utf8.RuneCountInString(manual) <= m.opts.MinManualLength:
			m.logger.Debug("manual notes skipped: too short", "length", len(manual))
		case manual == enhanced:
			m.logger.Debug("manual notes skipped: duplicate of enhanced notes")
		default:
			m.logger.Debug("manual notes section", "length", len(manual))
			sections = append(sections, section{m.opts.ManualNotesTitle, manual})
		}
	}

	if len(sections) == 0 {
		if src.Fallback != "" {
			m.logger.Debug("using plain-text fallback", "length", len(src.Fallback))
		}
		return src.Fallback
	}

	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = "# " + s.title + "\n\n" + s.body
	}
	combined := strings.Join(parts, sectionSeparator)
	m.logger.Debug("merged notes", "sections", len(sections), "length", len(combined))
	return combined
}

// renderManual renders a tree, or a string that parses as one; a string that
// does not parse is used as-is.
func (m *Merger) renderManual(manual Manual) string {
	if manual.Tree != nil {
		m.logUnknownKinds(manual.Tree)
		return prosemirror.Render(manual.Tree)
	}
	n, err := prosemirror.Parse([]byte(manual.Text))
	if err != nil {
		m.logger.Debug("manual notes are not a rich-text tree, using raw text", "error", err)
		return strings.TrimSpace(manual.Text)
	}
	m.logUnknownKinds(n)
	return prosemirror.Render(n)
}

func (m *Merger) logUnknownKinds(n *prosemirror.Node) {
	if kinds := prosemirror.UnknownKinds(n); len(kinds) > 0 {
		m.logger.Debug("passing through unknown node kinds", "kinds", kinds)
	}
}
