// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prosemirror

// Tree builders for tests.

// Doc builds a document root.
func Doc(children ...*Node) *Node { return &Node{Kind: KindDoc, Children: children} }

// Paragraph builds a paragraph block.
func Paragraph(children ...*Node) *Node { return &Node{Kind: KindParagraph, Children: children} }

// Heading builds a heading block of the given level.
func Heading(level int, children ...*Node) *Node {
	return &Node{Kind: KindHeading, Children: children, Attrs: map[string]any{"level": level}}
}

// BulletList builds an unordered list.
func BulletList(items ...*Node) *Node { return &Node{Kind: KindBulletList, Children: items} }

// OrderedList builds an ordered list.
func OrderedList(items ...*Node) *Node { return &Node{Kind: KindOrderedList, Children: items} }

// ListItem builds a list item.
func ListItem(children ...*Node) *Node { return &Node{Kind: KindListItem, Children: children} }

// Text builds a text leaf with the given marks.
func Text(s string, marks ...Mark) *Node { return &Node{Kind: KindText, Text: s, Marks: marks} }

// Bold, Italic and Code are the attribute-less marks.
func Bold() Mark   { return Mark{Kind: MarkBold} }
func Italic() Mark { return Mark{Kind: MarkItalic} }
func Code() Mark   { return Mark{Kind: MarkCode} }

// Link builds a hyperlink mark.
func Link(href string) Mark {
	return Mark{Kind: MarkLink, Attrs: map[string]any{"href": href}}
}
