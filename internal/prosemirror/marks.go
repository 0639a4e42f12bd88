// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prosemirror

// markWrapper wraps the text accumulated so far for one mark.
type markWrapper func(text string, attrs map[string]any) string

var markWrappers = map[MarkKind]markWrapper{
	MarkBold:   func(s string, _ map[string]any) string { return "**" + s + "**" },
	MarkItalic: func(s string, _ map[string]any) string { return "*" + s + "*" },
	MarkCode:   func(s string, _ map[string]any) string { return "`" + s + "`" },
	MarkLink: func(s string, attrs map[string]any) string {
		href, _ := attrs["href"].(string)
		return "[" + s + "](" + href + ")"
	},
}

// applyMarks applies marks left to right; each wraps the previous result.
// Unrecognized marks leave the text unchanged.
func applyMarks(text string, marks []Mark) string {
	for _, m := range marks {
		if wrap, ok := markWrappers[m.Kind]; ok {
			text = wrap(text, m.Attrs)
		}
	}
	return text
}
