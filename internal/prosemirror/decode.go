// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prosemirror

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const snippetLen = 80

// ShapeError reports a value of the wrong fundamental shape where a node or
// mark object was required. Path locates it within the input tree.
type ShapeError struct {
	Path  string
	Value string
	Err   error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prosemirror: malformed value at %s (%s): %v", e.Path, e.Value, e.Err)
	}
	return fmt.Sprintf("prosemirror: expected object at %s, got %s", e.Path, e.Value)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// wireNode accepts both the editor's field names (type, content, attrs) and
// the generic ones (kind, children, attributes).
type wireNode struct {
	Type       string            `json:"type"`
	Kind       string            `json:"kind"`
	Text       string            `json:"text"`
	Content    []json.RawMessage `json:"content"`
	Children   []json.RawMessage `json:"children"`
	Marks      []json.RawMessage `json:"marks"`
	Attrs      map[string]any    `json:"attrs"`
	Attributes map[string]any    `json:"attributes"`
}

type wireMark struct {
	Type       string         `json:"type"`
	Kind       string         `json:"kind"`
	Attrs      map[string]any `json:"attrs"`
	Attributes map[string]any `json:"attributes"`
}

// Parse decodes a JSON-encoded node tree.
func Parse(data []byte) (*Node, error) {
	return decodeNode(data, "$")
}

// Decode decodes a raw JSON node tree.
func Decode(raw json.RawMessage) (*Node, error) {
	return decodeNode(raw, "$")
}

func decodeNode(raw []byte, path string) (*Node, error) {
	raw = bytes.TrimSpace(raw)
	if !isObject(raw) {
		return nil, &ShapeError{Path: path, Value: snippet(raw)}
	}

	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &ShapeError{Path: path, Value: snippet(raw), Err: err}
	}

	n := &Node{
		Kind:  Kind(firstNonEmpty(w.Type, w.Kind)),
		Text:  w.Text,
		Attrs: w.Attrs,
	}
	if n.Attrs == nil {
		n.Attrs = w.Attributes
	}

	childField, children := "content", w.Content
	if children == nil {
		childField, children = "children", w.Children
	}
	for i, c := range children {
		if isNull(c) {
			continue
		}
		child, err := decodeNode(c, fmt.Sprintf("%s.%s[%d]", path, childField, i))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	for i, m := range w.Marks {
		if isNull(m) {
			continue
		}
		mark, err := decodeMark(m, fmt.Sprintf("%s.marks[%d]", path, i))
		if err != nil {
			return nil, err
		}
		n.Marks = append(n.Marks, mark)
	}

	return n, nil
}

func decodeMark(raw []byte, path string) (Mark, error) {
	raw = bytes.TrimSpace(raw)
	if !isObject(raw) {
		return Mark{}, &ShapeError{Path: path, Value: snippet(raw)}
	}
	var w wireMark
	if err := json.Unmarshal(raw, &w); err != nil {
		return Mark{}, &ShapeError{Path: path, Value: snippet(raw), Err: err}
	}
	m := Mark{Kind: MarkKind(firstNonEmpty(w.Type, w.Kind)), Attrs: w.Attrs}
	if m.Attrs == nil {
		m.Attrs = w.Attributes
	}
	return m, nil
}

func isObject(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func isNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func snippet(raw []byte) string {
	if len(raw) == 0 {
		return "empty input"
	}
	s := string(raw)
	if len(s) > snippetLen {
		s = s[:snippetLen] + "..."
	}
	return s
}
