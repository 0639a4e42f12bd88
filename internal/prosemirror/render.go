// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prosemirror

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// listKind is the kind of the nearest enclosing list.
type listKind int

const (
	listNone listKind = iota
	listBullet
	listOrdered
)

// renderContext is threaded through one Render call. It is never shared
// across calls.
type renderContext struct {
	list  listKind
	depth int
}

func (c renderContext) enterList(kind listKind) renderContext {
	return renderContext{list: kind, depth: c.depth + 1}
}

// itemPrefix returns the marker for a list item, indented two spaces per
// nesting level below the outermost list. Ordered items are always "1.";
// Markdown renderers renumber them.
func (c renderContext) itemPrefix() string {
	indent := ""
	if c.depth > 1 {
		indent = strings.Repeat("  ", c.depth-1)
	}
	if c.list == listOrdered {
		return indent + "1. "
	}
	return indent + "- "
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// Render converts a node tree to Markdown. Runs of blank lines collapse to
// one and the result is trimmed. A nil node renders as "".
func Render(n *Node) string {
	if n == nil {
		return ""
	}
	out := renderNode(n, renderContext{})
	return strings.TrimSpace(blankRun.ReplaceAllString(out, "\n\n"))
}

// RenderJSON decodes a JSON node tree and renders it.
func RenderJSON(raw json.RawMessage) (string, error) {
	n, err := Decode(raw)
	if err != nil {
		return "", err
	}
	return Render(n), nil
}

// renderNode renders n without the top-level cleanup. Block kinds supply
// their own trailing whitespace.
func renderNode(n *Node, ctx renderContext) string {
	if n.IsLeaf() {
		return applyMarks(n.Text, n.Marks)
	}

	switch n.Kind {
	case KindBulletList:
		return renderChildren(n.Children, ctx.enterList(listBullet))
	case KindOrderedList:
		return renderChildren(n.Children, ctx.enterList(listOrdered))
	case KindListItem:
		return renderListItem(n, ctx)
	}

	body := renderChildren(n.Children, ctx)

	switch n.Kind {
	case KindDoc, KindDocument:
		return body
	case KindParagraph:
		if strings.TrimSpace(body) == "" {
			return ""
		}
		if ctx.list != listNone {
			return body
		}
		return body + "\n\n"
	case KindHeading:
		if strings.TrimSpace(body) == "" {
			return ""
		}
		return strings.Repeat("#", headingLevel(n)) + " " + body + "\n\n"
	case KindCodeBlock:
		return "```" + stringAttr(n.Attrs, "language") + "\n" + body + "\n```\n\n"
	case KindBlockquote:
		lines := strings.Split(strings.TrimSpace(body), "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n") + "\n\n"
	case KindHardBreak:
		return "\n"
	case KindHorizontalRule:
		return "---\n\n"
	default:
		return body
	}
}

func renderChildren(children []*Node, ctx renderContext) string {
	var b strings.Builder
	for _, c := range children {
		if c == nil {
			continue
		}
		b.WriteString(renderNode(c, ctx))
	}
	return b.String()
}

// renderListItem emits "<prefix><trimmed body>\n". Lists nested inside the
// item are rendered after it on their own lines.
func renderListItem(n *Node, ctx renderContext) string {
	var body, nested strings.Builder
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if !c.IsLeaf() && c.Kind.isList() {
			nested.WriteString(renderNode(c, ctx))
			continue
		}
		body.WriteString(renderNode(c, ctx))
	}
	return ctx.itemPrefix() + strings.TrimSpace(body.String()) + "\n" + nested.String()
}

// headingLevel reads the "level" attribute, defaulting to 1 and clamping to
// the six levels Markdown supports.
func headingLevel(n *Node) int {
	level := 1
	switch v := n.Attr("level").(type) {
	case int:
		level = v
	case int64:
		level = int(v)
	case float64:
		level = int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			level = int(i)
		}
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			level = i
		}
	}
	return min(max(level, 1), 6)
}

func stringAttr(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
