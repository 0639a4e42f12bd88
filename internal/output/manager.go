// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes extraction results to the outputs directory and
// reads saved summaries back.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pm-agent/internal/digest"
	"github.com/pdiddy/pm-agent/pkg/types"
)

const (
	PMTasksDir    = "pm_tasks"
	DevTicketsDir = "dev_tickets"
	SummariesDir  = "summaries"
	ExportsDir    = "exports"

	exportNotion = "notion"
	exportLinear = "linear"
)

// Paths lists the files written for one meeting. Empty fields were not
// written.
type Paths struct {
	PMTasks    string
	DevTickets string
	Summary    string
	HTML       string
	Notion     string
	Linear     string
}

// All returns the written paths keyed by output kind.
func (p Paths) All() map[string]string {
	out := make(map[string]string)
	for kind, path := range map[string]string{
		"pm_tasks": p.PMTasks, "dev_tickets": p.DevTickets, "summary": p.Summary,
		"html": p.HTML, "notion": p.Notion, "linear": p.Linear,
	} {
		if path != "" {
			out[kind] = path
		}
	}
	return out
}

// Empty reports whether nothing was written.
func (p Paths) Empty() bool {
	return len(p.All()) == 0
}

// taskFile is the on-disk shape of pm_tasks/<name>.json and
// dev_tickets/<name>.json.
type taskFile struct {
	MeetingTitle string `json:"meeting_title"`
	MeetingDate  string `json:"meeting_date"`
	DocumentID   string `json:"document_id"`
	GeneratedAt  string `json:"generated_at"`
	RunID        string `json:"run_id,omitempty"`

	Tasks   []types.PMActionItem `json:"tasks,omitempty"`
	Tickets []types.DevTicket    `json:"tickets,omitempty"`
}

// SummaryMeta is the YAML frontmatter of a saved summary.
type SummaryMeta struct {
	Meeting    string `yaml:"meeting,omitempty"`
	Date       string `yaml:"date,omitempty"`
	DocumentID string `yaml:"document_id,omitempty"`
	Generated  string `yaml:"generated"`
	RunID      string `yaml:"run_id,omitempty"`
}

// Manager writes results under one output directory.
type Manager struct {
	cfg     types.OutputConfig
	handles digest.HandleLookup
	md      goldmark.Markdown
	logger  *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewManager creates the output subdirectories under cfg.Dir. handles maps
// assignees to Slack handles in summaries and may be nil.
func NewManager(cfg types.OutputConfig, handles digest.HandleLookup, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dirs := []string{PMTasksDir, DevTicketsDir, SummariesDir}
	if len(cfg.Exports) > 0 {
		dirs = append(dirs, ExportsDir)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	return &Manager{
		cfg:     cfg,
		handles: handles,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		logger: logger,
		now:    time.Now,
	}, nil
}

// SaveAll writes every non-empty section of result. All files for one call
// share a base name.
func (m *Manager) SaveAll(result *types.ExtractionResult, meta types.MeetingMeta) (Paths, error) {
	now := m.now()
	name := BaseName(meta, now)
	generated := now.Format(time.RFC3339)
	var paths Paths

	header := taskFile{
		MeetingTitle: meta.Title,
		MeetingDate:  meta.Date,
		DocumentID:   meta.DocumentID,
		GeneratedAt:  generated,
		RunID:        meta.RunID,
	}

	if len(result.PMActionItems) > 0 {
		f := header
		f.Tasks = result.PMActionItems
		path := filepath.Join(m.cfg.Dir, PMTasksDir, name+".json")
		if err := writeJSON(path, f); err != nil {
			return paths, err
		}
		paths.PMTasks = path
	}

	if len(result.DevTickets) > 0 {
		f := header
		f.Tickets = result.DevTickets
		path := filepath.Join(m.cfg.Dir, DevTicketsDir, name+".json")
		if err := writeJSON(path, f); err != nil {
			return paths, err
		}
		paths.DevTickets = path
	}

	if !result.Summary.IsZero() {
		body := digest.Slack(result, m.handles)
		sm := SummaryMeta{
			Meeting:    meta.Title,
			Date:       meta.Date,
			DocumentID: meta.DocumentID,
			Generated:  generated,
			RunID:      meta.RunID,
		}
		path := filepath.Join(m.cfg.Dir, SummariesDir, name+".md")
		if err := m.writeSummary(path, sm, body); err != nil {
			return paths, err
		}
		paths.Summary = path

		if m.cfg.HTML {
			htmlPath := filepath.Join(m.cfg.Dir, SummariesDir, name+".html")
			if err := m.writeHTML(htmlPath, meta.Title, body); err != nil {
				return paths, err
			}
			paths.HTML = htmlPath
		}
	}

	if slices.Contains(m.cfg.Exports, exportNotion) && len(result.PMActionItems) > 0 {
		path := filepath.Join(m.cfg.Dir, ExportsDir, name+".notion.json")
		if err := writeJSON(path, digest.Notion(result.PMActionItems)); err != nil {
			return paths, err
		}
		paths.Notion = path
	}

	if slices.Contains(m.cfg.Exports, exportLinear) && len(result.DevTickets) > 0 {
		path := filepath.Join(m.cfg.Dir, ExportsDir, name+".linear.json")
		if err := writeJSON(path, digest.Linear(result.DevTickets, m.cfg.DefaultTicketLabels)); err != nil {
			return paths, err
		}
		paths.Linear = path
	}

	m.logger.Debug("saved outputs", "document_id", meta.DocumentID, "name", name, "files", len(paths.All()))
	return paths, nil
}

func (m *Manager) writeSummary(path string, meta SummaryMeta, body string) error {
	var buf bytes.Buffer
	if m.cfg.IncludeMetadata {
		fm, err := yaml.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshaling summary metadata: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(fm)
		buf.WriteString("---\n\n")
	}
	buf.WriteString(body)
	buf.WriteString("\n")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (m *Manager) writeHTML(path, title, body string) error {
	var rendered bytes.Buffer
	if err := m.md.Convert([]byte(body), &rendered); err != nil {
		return fmt.Errorf("rendering summary HTML: %w", err)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(title))
	buf.Write(rendered.Bytes())
	buf.WriteString("</body>\n</html>\n")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
