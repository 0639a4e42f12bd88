// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pm-agent/internal/digest"
	"github.com/pdiddy/pm-agent/pkg/types"
)

var fixedNow = time.Date(2026, 3, 4, 9, 8, 7, 0, time.UTC)

func newTestManager(t *testing.T, cfg types.OutputConfig, handles digest.HandleLookup) *Manager {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	m, err := NewManager(cfg, handles, nil)
	require.NoError(t, err)
	m.now = func() time.Time { return fixedNow }
	return m
}

func fullResult() *types.ExtractionResult {
	deadline := "Friday"
	return &types.ExtractionResult{
		PMActionItems: []types.PMActionItem{{Title: "Draft roadmap", Description: "Q3", Priority: types.PriorityHigh, Deadline: &deadline}},
		DevTickets:    []types.DevTicket{{Title: "Add SSO", Type: "backend", Priority: types.PriorityMedium, AcceptanceCriteria: []string{"Okta works"}}},
		Summary: types.Summary{
			Overview:              "Planning sync.",
			AdditionalActionItems: []types.AssignedAction{{Assignee: "Dana", Task: "Book venue"}},
		},
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name, in string
		max      int
		want     string
	}{
		{"spaces", "Weekly Sync", 50, "Weekly_Sync"},
		{"reserved", `a<b>c:d"e/f\g|h?i*j`, 50, "a_b_c_d_e_f_g_h_i_j"},
		{"collapse", "a  /  b", 50, "a_b"},
		{"trim", " _hello_ ", 50, "hello"},
		{"truncate runes", "ééééé", 3, "ééé"},
		{"nfc", "Café", 50, "Café"},
		{"only reserved", "???", 50, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.in, tt.max))
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		meta types.MeetingMeta
		want string
	}{
		{"rfc3339", types.MeetingMeta{Title: "Weekly Sync", Date: "2024-01-15T10:30:00Z"}, "2024-01-15_Weekly_Sync_090807"},
		{"fractional with offset", types.MeetingMeta{Title: "X", Date: "2024-01-15T23:30:00.123-05:00"}, "2024-01-15_X_090807"},
		{"unparseable", types.MeetingMeta{Title: "X", Date: "2024/01/15 morning"}, "2024_01_15_X_090807"},
		{"no date", types.MeetingMeta{Title: "X"}, "2026-03-04_X_090807"},
		{"no title", types.MeetingMeta{DocumentID: "abcdef1234567890", Date: "2024-01-15"}, "2024-01-15_abcdef123456_090807"},
		{"nothing", types.MeetingMeta{}, "2026-03-04_090807"},
		{"long title", types.MeetingMeta{Title: strings.Repeat("a", 80), Date: "2024-01-15"}, "2024-01-15_" + strings.Repeat("a", 50) + "_090807"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.meta, fixedNow))
		})
	}
}

func TestSaveAll(t *testing.T) {
	dir := t.TempDir()
	handles := func(name string) (string, bool) { return "@" + strings.ToLower(name), true }
	m := newTestManager(t, types.OutputConfig{
		Dir:                 dir,
		HTML:                true,
		Exports:             []string{"notion", "linear"},
		IncludeMetadata:     true,
		DefaultTicketLabels: []string{"meeting"},
	}, handles)

	meta := types.MeetingMeta{Title: "Weekly Sync", Date: "2024-01-15T10:30:00Z", DocumentID: "doc-1", RunID: "run-1"}
	paths, err := m.SaveAll(fullResult(), meta)
	require.NoError(t, err)

	base := "2024-01-15_Weekly_Sync_090807"
	assert.Equal(t, filepath.Join(dir, "pm_tasks", base+".json"), paths.PMTasks)
	assert.Equal(t, filepath.Join(dir, "dev_tickets", base+".json"), paths.DevTickets)
	assert.Equal(t, filepath.Join(dir, "summaries", base+".md"), paths.Summary)
	assert.Equal(t, filepath.Join(dir, "summaries", base+".html"), paths.HTML)
	assert.Equal(t, filepath.Join(dir, "exports", base+".notion.json"), paths.Notion)
	assert.Equal(t, filepath.Join(dir, "exports", base+".linear.json"), paths.Linear)
	assert.Len(t, paths.All(), 6)

	var tasks map[string]any
	data, err := os.ReadFile(paths.PMTasks)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &tasks))
	assert.Equal(t, "Weekly Sync", tasks["meeting_title"])
	assert.Equal(t, "doc-1", tasks["document_id"])
	assert.Equal(t, "run-1", tasks["run_id"])
	assert.Equal(t, "2026-03-04T09:08:07Z", tasks["generated_at"])
	assert.Len(t, tasks["tasks"], 1)
	assert.NotContains(t, tasks, "tickets")

	var tickets map[string]any
	data, err = os.ReadFile(paths.DevTickets)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &tickets))
	assert.Len(t, tickets["tickets"], 1)

	summary, err := os.ReadFile(paths.Summary)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "---\nmeeting: Weekly Sync\n"))
	assert.Contains(t, string(summary), "document_id: doc-1\n")
	assert.Contains(t, string(summary), "run_id: run-1\n")
	assert.Contains(t, string(summary), "---\n\n*Meeting Summary*\nPlanning sync.")
	assert.Contains(t, string(summary), "• [@dana] Book venue")

	page, err := os.ReadFile(paths.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Weekly Sync</title>")
	assert.Contains(t, string(page), "<em>Meeting Summary</em>")

	var linear []digest.LinearIssue
	data, err = os.ReadFile(paths.Linear)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &linear))
	assert.Equal(t, []string{"backend", "meeting"}, linear[0].Labels)
}

func TestSaveAllSkipsEmptySections(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, types.OutputConfig{Dir: dir, Exports: []string{"notion", "linear"}}, nil)

	paths, err := m.SaveAll(&types.ExtractionResult{Summary: types.Summary{Overview: "Short."}}, types.MeetingMeta{Title: "T"})
	require.NoError(t, err)
	assert.Empty(t, paths.PMTasks)
	assert.Empty(t, paths.DevTickets)
	assert.Empty(t, paths.Notion)
	assert.Empty(t, paths.Linear)
	assert.NotEmpty(t, paths.Summary)

	summary, err := os.ReadFile(paths.Summary)
	require.NoError(t, err)
	assert.Equal(t, "*Meeting Summary*\nShort.\n\n", string(summary), "no frontmatter without include_metadata")

	paths, err = m.SaveAll(&types.ExtractionResult{}, types.MeetingMeta{Title: "Nothing"})
	require.NoError(t, err)
	assert.True(t, paths.Empty())
}

func TestListSummaries(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, types.OutputConfig{Dir: dir, IncludeMetadata: true}, nil)

	_, err := m.SaveAll(fullResult(), types.MeetingMeta{Title: "Older", Date: "2024-01-01", DocumentID: "d1", RunID: "r1"})
	require.NoError(t, err)

	m.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_, err = m.SaveAll(fullResult(), types.MeetingMeta{Title: "Newer", Date: "2024-01-02", DocumentID: "d2", RunID: "r2"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, SummariesDir, "plain.md"), []byte("no metadata"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SummariesDir, "ignored.txt"), []byte("x"), 0o644))

	got, err := ListSummaries(dir)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Newer", got[0].Meeting)
	assert.Equal(t, "d2", got[0].DocumentID)
	assert.Equal(t, "r2", got[0].RunID)
	assert.Equal(t, "2026-03-04T10:08:07Z", got[0].Generated)
	assert.True(t, strings.HasPrefix(got[0].Body, "*Meeting Summary*"))

	assert.Equal(t, "Older", got[1].Meeting)
	assert.Equal(t, "", got[2].Meeting)
	assert.Equal(t, "no metadata", got[2].Body)
}

func TestListSummariesMissingDir(t *testing.T) {
	got, err := ListSummaries(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
