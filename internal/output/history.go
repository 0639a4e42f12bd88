// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// SavedSummary is a summary file read back from disk.
type SavedSummary struct {
	Path string
	SummaryMeta
	Body string
}

// ListSummaries reads the frontmatter of every summary under
// dir/summaries, newest first. Files without frontmatter are listed with
// empty metadata. A missing directory yields no summaries.
func ListSummaries(dir string) ([]SavedSummary, error) {
	summariesDir := filepath.Join(dir, SummariesDir)
	entries, err := os.ReadDir(summariesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading summaries directory %s: %w", summariesDir, err)
	}

	var out []SavedSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(summariesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var meta SummaryMeta
		body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
		if err != nil {
			return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
		}
		out = append(out, SavedSummary{
			Path:        path,
			SummaryMeta: meta,
			Body:        strings.TrimSpace(string(body)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Generated != out[j].Generated {
			return out[i].Generated > out[j].Generated
		}
		return out[i].Path > out[j].Path
	})
	return out, nil
}
