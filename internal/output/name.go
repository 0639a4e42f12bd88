// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/pm-agent/pkg/types"
)

const (
	maxTitleRunes = 50
	docIDPrefix   = 12
	dateLayout    = "2006-01-02"
	clockLayout   = "150405"
)

var filenameReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_", " ", "_",
)

// SanitizeTitle makes a title safe for a filename: reserved characters and
// spaces become underscores, runs of underscores collapse, the result is
// NFC-normalized and cut to maxRunes, and edge underscores are trimmed.
func SanitizeTitle(title string, maxRunes int) string {
	s := filenameReplacer.Replace(norm.NFC.String(title))
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	if maxRunes > 0 && utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes])
	}
	return strings.Trim(s, "_")
}

// meetingDate formats the date part of a filename from a meeting
// timestamp: the parsed RFC 3339 date, else the first ten characters, else
// today. The fallback is sanitized like a title.
func meetingDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Format(dateLayout)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	if len(raw) > 10 {
		raw = raw[:10]
	}
	return SanitizeTitle(raw, 0)
}

// BaseName builds "<date>_<title>_<HHMMSS>" for a meeting. Without a usable
// title the first twelve characters of the document ID stand in.
func BaseName(meta types.MeetingMeta, now time.Time) string {
	parts := []string{meetingDate(meta.Date, now)}
	if title := SanitizeTitle(meta.Title, maxTitleRunes); title != "" {
		parts = append(parts, title)
	} else if meta.DocumentID != "" {
		id := meta.DocumentID
		if len(id) > docIDPrefix {
			id = id[:docIDPrefix]
		}
		parts = append(parts, SanitizeTitle(id, 0))
	}
	parts = append(parts, now.Format(clockLayout))
	return strings.Join(parts, "_")
}
