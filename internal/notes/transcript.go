// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"strings"

	"github.com/pdiddy/pm-agent/pkg/types"
)

// FormatTranscript renders segments as speaker-labeled lines separated by a
// blank line. Segments with blank text are dropped. A nil labels map uses
// DefaultSpeakerLabels.
func FormatTranscript(segments []types.TranscriptSegment, labels map[types.TranscriptSource]string) string {
	if labels == nil {
		labels = DefaultSpeakerLabels()
	}
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if label, ok := labels[seg.Source]; ok {
			lines = append(lines, "**"+label+":** "+text)
			continue
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n\n")
}
