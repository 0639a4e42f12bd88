// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prosemirror

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hardBreak() *Node { return &Node{Kind: KindHardBreak} }

func TestApplyMarks(t *testing.T) {
	tests := []struct {
		name  string
		marks []Mark
		want  string
	}{
		{name: "no marks", want: "hi"},
		{name: "bold", marks: []Mark{Bold()}, want: "**hi**"},
		{name: "italic", marks: []Mark{Italic()}, want: "*hi*"},
		{name: "code", marks: []Mark{Code()}, want: "`hi`"},
		{name: "link", marks: []Mark{Link("https://example.com")}, want: "[hi](https://example.com)"},
		{name: "link without href", marks: []Mark{{Kind: MarkLink}}, want: "[hi]()"},
		{name: "bold then italic wraps outward", marks: []Mark{Bold(), Italic()}, want: "*" + "**hi**" + "*"},
		{name: "italic then bold", marks: []Mark{Italic(), Bold()}, want: "***hi***"},
		{name: "bold inside link", marks: []Mark{Bold(), Link("u")}, want: "[**hi**](u)"},
		{name: "unknown mark is a no-op", marks: []Mark{{Kind: "underline"}}, want: "hi"},
		{name: "unknown mark between known marks", marks: []Mark{Code(), {Kind: "strike"}, Bold()}, want: "**`hi`**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyMarks("hi", tt.marks))
		})
	}
}

func TestRenderNode(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "heading level 2",
			node: Heading(2, Text("Decisions")),
			want: "## Decisions\n\n",
		},
		{
			name: "heading without level defaults to 1",
			node: &Node{Kind: KindHeading, Children: []*Node{Text("Top")}},
			want: "# Top\n\n",
		},
		{
			name: "heading level from JSON number",
			node: &Node{Kind: KindHeading, Attrs: map[string]any{"level": float64(3)}, Children: []*Node{Text("Sub")}},
			want: "### Sub\n\n",
		},
		// Levels outside 1..6 are clamped instead of emitting "#######" or
		// no marker at all.
		{
			name: "heading level above 6 is clamped",
			node: Heading(9, Text("Deep")),
			want: "###### Deep\n\n",
		},
		{
			name: "heading level below 1 is clamped",
			node: Heading(0, Text("Flat")),
			want: "# Flat\n\n",
		},
		{
			name: "blank heading is suppressed",
			node: Heading(2, Text("  ")),
			want: "",
		},
		{
			name: "bullet list",
			node: BulletList(ListItem(Paragraph(Text("A"))), ListItem(Paragraph(Text("B")))),
			want: "- A\n- B\n",
		},
		{
			name: "ordered list repeats 1.",
			node: OrderedList(ListItem(Paragraph(Text("first"))), ListItem(Paragraph(Text("second"))), ListItem(Paragraph(Text("third")))),
			want: "1. first\n1. second\n1. third\n",
		},
		{
			name: "list item outside a list renders as bullet",
			node: ListItem(Paragraph(Text("orphan"))),
			want: "- orphan\n",
		},
		{
			name: "list item body is trimmed",
			node: BulletList(ListItem(Paragraph(Text("  padded  ")))),
			want: "- padded\n",
		},
		{
			name: "paragraph",
			node: Paragraph(Text("Hello "), Text("world", Bold())),
			want: "Hello **world**\n\n",
		},
		{
			name: "empty paragraph is suppressed",
			node: Paragraph(),
			want: "",
		},
		{
			name: "whitespace paragraph is suppressed",
			node: Paragraph(Text(" \t ")),
			want: "",
		},
		{
			name: "code block with language",
			node: &Node{Kind: KindCodeBlock, Attrs: map[string]any{"language": "go"}, Children: []*Node{Text("x := 1")}},
			want: "```go\nx := 1\n```\n\n",
		},
		{
			name: "code block with null language",
			node: &Node{Kind: KindCodeBlock, Attrs: map[string]any{"language": nil}, Children: []*Node{Text("plain")}},
			want: "```\nplain\n```\n\n",
		},
		{
			name: "blockquote prefixes each line",
			node: &Node{Kind: KindBlockquote, Children: []*Node{Paragraph(Text("one"), hardBreak(), Text("two"))}},
			want: "> one\n> two\n\n",
		},
		{
			name: "hard break",
			node: hardBreak(),
			want: "\n",
		},
		{
			name: "horizontal rule",
			node: &Node{Kind: KindHorizontalRule},
			want: "---\n\n",
		},
		{
			name: "unknown kind passes children through",
			node: &Node{Kind: "callout", Children: []*Node{Text("keep "), Text("me", Italic())}},
			want: "keep *me*",
		},
		{
			name: "node with no text and no children renders empty",
			node: &Node{Kind: KindText},
			want: "",
		},
		{
			name: "leaf ignores its kind",
			node: &Node{Kind: KindParagraph, Text: "raw"},
			want: "raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderNode(tt.node, renderContext{}))
		})
	}
}

func TestRender_ParagraphInsideListHasNoBlankLine(t *testing.T) {
	doc := Doc(
		Paragraph(Text("Intro")),
		BulletList(
			ListItem(Paragraph(Text("one"))),
			ListItem(Paragraph(Text("two"))),
		),
		Paragraph(Text("Outro")),
	)

	assert.Equal(t, "Intro\n\n- one\n- two\nOutro", Render(doc))
}

// A nested list is lifted out of its item's text onto its own lines and
// indented two spaces per level, instead of being run into the parent
// item's body ("- ParentChild A...").
func TestRender_NestedLists(t *testing.T) {
	doc := Doc(BulletList(
		ListItem(
			Paragraph(Text("Parent")),
			OrderedList(
				ListItem(Paragraph(Text("Child A"))),
				ListItem(
					Paragraph(Text("Child B")),
					BulletList(ListItem(Paragraph(Text("Grandchild")))),
				),
			),
		),
		ListItem(Paragraph(Text("Sibling"))),
	))

	want := "- Parent\n" +
		"  1. Child A\n" +
		"  1. Child B\n" +
		"    - Grandchild\n" +
		"- Sibling"
	assert.Equal(t, want, Render(doc))
}

func TestRender_TopLevelCleanup(t *testing.T) {
	doc := Doc(
		Paragraph(),
		Heading(2, Text("Decisions")),
		Paragraph(Text("a"), hardBreak(), hardBreak(), hardBreak(), hardBreak(), Text("b")),
		&Node{Kind: KindHorizontalRule},
		&Node{Kind: KindHorizontalRule},
		Paragraph(Text("end")),
	)

	out := Render(doc)
	assert.NotContains(t, out, "\n\n\n")
	assert.Equal(t, "## Decisions\n\na\n\nb\n\n---\n\n---\n\nend", out)
}

func TestRender_TrimsAndHandlesNil(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "## Decisions", Render(Doc(Heading(2, Text("Decisions")))))
	assert.Equal(t, "- A\n- B", Render(Doc(BulletList(ListItem(Paragraph(Text("A"))), ListItem(Paragraph(Text("B")))))))
	assert.Equal(t, "", Render(Doc(Paragraph(), Paragraph(Text("   ")))))
}

func TestRender_DocumentAlias(t *testing.T) {
	n := &Node{Kind: KindDocument, Children: []*Node{Paragraph(Text("x"))}}
	assert.Equal(t, "x", Render(n))
}

func TestRenderJSON_MeetingNotes(t *testing.T) {
	raw := []byte(`{
	  "type": "doc",
	  "content": [
	    {"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Decisions"}]},
	    {"type": "bulletList", "content": [
	      {"type": "listItem", "content": [{"type": "paragraph", "content": [
	        {"type": "text", "text": "Ship "},
	        {"type": "text", "text": "v2", "marks": [{"type": "bold"}]},
	        {"type": "text", "text": " on Friday"}
	      ]}]},
	      {"type": "listItem", "content": [{"type": "paragraph", "content": [
	        {"type": "text", "text": "design doc", "marks": [{"type": "link", "attrs": {"href": "https://docs.example.com/design"}}]}
	      ]}]}
	    ]},
	    {"type": "paragraph", "content": []},
	    {"type": "paragraph", "content": [{"type": "text", "text": "Run "}, {"type": "text", "text": "make test", "marks": [{"type": "code"}]}]},
	    {"type": "mention", "attrs": {"id": "u1"}, "content": [{"type": "text", "text": "@dana"}]}
	  ]
	}`)

	out, err := RenderJSON(raw)
	require.NoError(t, err)

	want := strings.Join([]string{
		"## Decisions",
		"",
		"- Ship **v2** on Friday",
		"- [design doc](https://docs.example.com/design)",
		"Run `make test`",
		"",
		"@dana",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestUnknownKinds(t *testing.T) {
	doc := Doc(
		&Node{Kind: "mention", Children: []*Node{Text("@a")}},
		Paragraph(&Node{Kind: "emoji"}),
		&Node{Kind: "mention"},
		Paragraph(Text("x")),
	)
	assert.Equal(t, []Kind{"mention", "emoji"}, UnknownKinds(doc))
	assert.Empty(t, UnknownKinds(Doc(Paragraph(Text("ok")))))
}
