// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
)

// TranscriptSource identifies which audio channel produced a transcript segment.
type TranscriptSource string

const (
	SourceMicrophone TranscriptSource = "microphone"
	SourceSystem     TranscriptSource = "system"
)

// TranscriptSegment is one utterance from a meeting transcript.
type TranscriptSegment struct {
	// Source is "microphone" for the local user, "system" for remote audio.
	Source TranscriptSource `json:"source" yaml:"source"`

	// Text is the transcribed utterance.
	Text string `json:"text" yaml:"text"`

	StartTimestamp string `json:"start_timestamp,omitempty" yaml:"start_timestamp,omitempty"`
	EndTimestamp   string `json:"end_timestamp,omitempty" yaml:"end_timestamp,omitempty"`
}

// Document is a meeting-note document as returned by the note service.
// Manual note fields are kept raw because the service sends either a
// rich-text object or a JSON-encoded string.
type Document struct {
	ID         string `json:"id" yaml:"id"`
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	Title      string `json:"title" yaml:"title"`

	CreatedAt    string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CreatedAtAlt string `json:"createdAt,omitempty" yaml:"-"`

	// NotesMarkdown holds the service's AI-enhanced notes, already Markdown.
	NotesMarkdown string `json:"notes_markdown,omitempty" yaml:"notes_markdown,omitempty"`

	// Notes, Content, and ProsemirrorContent are candidate locations of the
	// user's manual notes, checked in that order.
	Notes              json.RawMessage `json:"notes,omitempty" yaml:"-"`
	Content            json.RawMessage `json:"content,omitempty" yaml:"-"`
	ProsemirrorContent json.RawMessage `json:"prosemirror_content,omitempty" yaml:"-"`

	// NotesPlain and Text are plain-text fallbacks used when nothing else renders.
	NotesPlain string `json:"notes_plain,omitempty" yaml:"notes_plain,omitempty"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Key returns the document identifier, preferring "id" over "document_id".
func (d Document) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return d.DocumentID
}

// Created returns the creation timestamp from whichever field carries it.
func (d Document) Created() string {
	if d.CreatedAt != "" {
		return d.CreatedAt
	}
	return d.CreatedAtAlt
}

// DisplayTitle returns the title or a placeholder for untitled meetings.
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return "Untitled Meeting"
}

// ManualContent returns the first manual-notes field that carries a value.
// Empty values (see IsEmptyJSON) count as absent.
func (d Document) ManualContent() json.RawMessage {
	for _, raw := range []json.RawMessage{d.Notes, d.Content, d.ProsemirrorContent} {
		if !IsEmptyJSON(raw) {
			return raw
		}
	}
	return nil
}

// Fallback returns the plain-text field used when no note section renders.
func (d Document) Fallback() string {
	if d.NotesPlain != "" {
		return d.NotesPlain
	}
	return d.Text
}

// IsEmptyJSON reports whether raw is missing or an empty value: null, "",
// {}, [], false or 0.
func IsEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	switch string(trimmed) {
	case "null", `""`, "false", "0":
		return true
	}
	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil && len(obj) == 0 {
			return true
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err == nil && len(arr) == 0 {
			return true
		}
	}
	return false
}
