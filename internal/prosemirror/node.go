// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prosemirror models the rich-text node trees used by the note
// service's editor and renders them as Markdown.
package prosemirror

// Kind names a node type. The vocabulary is open: kinds not listed here are
// still valid and render as the concatenation of their children.
type Kind string

const (
	KindDoc            Kind = "doc"
	KindDocument       Kind = "document"
	KindText           Kind = "text"
	KindParagraph      Kind = "paragraph"
	KindHeading        Kind = "heading"
	KindBulletList     Kind = "bulletList"
	KindOrderedList    Kind = "orderedList"
	KindListItem       Kind = "listItem"
	KindCodeBlock      Kind = "codeBlock"
	KindBlockquote     Kind = "blockquote"
	KindHardBreak      Kind = "hardBreak"
	KindHorizontalRule Kind = "horizontalRule"
)

// Known reports whether the renderer has a dedicated rule for k.
func (k Kind) Known() bool {
	switch k {
	case KindDoc, KindDocument, KindText, KindParagraph, KindHeading,
		KindBulletList, KindOrderedList, KindListItem, KindCodeBlock,
		KindBlockquote, KindHardBreak, KindHorizontalRule:
		return true
	}
	return false
}

func (k Kind) isList() bool {
	return k == KindBulletList || k == KindOrderedList
}

// MarkKind names an inline style.
type MarkKind string

const (
	MarkBold   MarkKind = "bold"
	MarkItalic MarkKind = "italic"
	MarkCode   MarkKind = "code"
	MarkLink   MarkKind = "link"
)

// Mark is an inline style attached to a text leaf.
type Mark struct {
	Kind  MarkKind
	Attrs map[string]any
}

// Node is one element of a rich-text tree. A node with non-empty Text is a
// leaf; its Children are ignored.
type Node struct {
	Kind     Kind
	Text     string
	Children []*Node
	Marks    []Mark
	Attrs    map[string]any
}

// IsLeaf reports whether n carries text.
func (n *Node) IsLeaf() bool {
	return n.Text != ""
}

// Attr returns the attribute value for key, or nil.
func (n *Node) Attr(key string) any {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs[key]
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// UnknownKinds lists, in first-seen order, the node kinds in the tree that
// the renderer passes through without a dedicated rule.
func UnknownKinds(n *Node) []Kind {
	seen := make(map[Kind]bool)
	var out []Kind
	Walk(n, func(n *Node, _ int) bool {
		if n.Kind != "" && !n.Kind.Known() && !seen[n.Kind] {
			seen[n.Kind] = true
			out = append(out, n.Kind)
		}
		return true
	})
	return out
}
