// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest formats an extraction result for people and for import
// into task trackers.
package digest

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/pm-agent/pkg/types"
)

const (
	bullet     = "• "
	unassigned = "unassigned"
	noDeadline = "No deadline"
	todoStatus = "To Do"
)

// HandleLookup maps a person's name to a chat handle. It reports false when
// the name is unknown.
type HandleLookup func(name string) (string, bool)

// Slack renders a Slack-flavored summary: overview, key decisions,
// development tickets, action items (PM items first, then assigned items)
// and next steps. Empty sections are left out. Assignees are shown as their
// handle when handles knows them.
func Slack(result *types.ExtractionResult, handles HandleLookup) string {
	var lines []string
	s := result.Summary

	lines = append(lines, "*Meeting Summary*", s.Overview, "")

	if len(s.KeyDecisions) > 0 {
		lines = append(lines, "*Key Decisions*")
		for _, d := range s.KeyDecisions {
			lines = append(lines, bullet+d)
		}
		lines = append(lines, "")
	}

	if len(result.DevTickets) > 0 {
		lines = append(lines, fmt.Sprintf("*Development Tickets (%d)*", len(result.DevTickets)))
		for _, t := range result.DevTickets {
			lines = append(lines, fmt.Sprintf("%s[%s] %s", bullet, strings.ToUpper(t.Type), t.Title))
		}
		lines = append(lines, "")
	}

	items := actionItems(result, handles)
	if len(items) > 0 {
		lines = append(lines, fmt.Sprintf("*Action Items (%d)*", len(items)))
		lines = append(lines, items...)
		lines = append(lines, "")
	}

	if len(s.NextSteps) > 0 {
		lines = append(lines, "*Next Steps*")
		for _, step := range s.NextSteps {
			lines = append(lines, bullet+step)
		}
	}

	return strings.Join(lines, "\n")
}

func actionItems(result *types.ExtractionResult, handles HandleLookup) []string {
	var items []string
	for _, item := range result.PMActionItems {
		items = append(items, bullet+item.Title)
	}
	for _, item := range result.Summary.AdditionalActionItems {
		assignee := strings.TrimSpace(item.Assignee)
		if assignee == "" || strings.EqualFold(assignee, unassigned) {
			items = append(items, bullet+item.Task)
			continue
		}
		if handles != nil {
			if h, ok := handles(assignee); ok {
				assignee = h
			}
		}
		items = append(items, fmt.Sprintf("%s[%s] %s", bullet, assignee, item.Task))
	}
	return items
}

// NotionRow is one PM action item shaped for a Notion database import.
type NotionRow struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Priority    string `json:"Priority"`
	Deadline    string `json:"Deadline"`
	Status      string `json:"Status"`
}

// Notion shapes PM action items as Notion rows.
func Notion(items []types.PMActionItem) []NotionRow {
	rows := make([]NotionRow, 0, len(items))
	for _, item := range items {
		deadline := noDeadline
		if item.Deadline != nil && strings.TrimSpace(*item.Deadline) != "" {
			deadline = *item.Deadline
		}
		rows = append(rows, NotionRow{
			Name:        item.Title,
			Description: item.Description,
			Priority:    capitalize(string(item.Priority)),
			Deadline:    deadline,
			Status:      todoStatus,
		})
	}
	return rows
}

// LinearIssue is one development ticket shaped for a Linear import.
type LinearIssue struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Priority           string   `json:"priority"`
	Labels             []string `json:"labels"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// Linear shapes development tickets as Linear issues. Each issue is
// labeled with its ticket type followed by the default labels, without
// duplicates.
func Linear(tickets []types.DevTicket, defaultLabels []string) []LinearIssue {
	issues := make([]LinearIssue, 0, len(tickets))
	for _, t := range tickets {
		criteria := t.AcceptanceCriteria
		if criteria == nil {
			criteria = []string{}
		}
		issues = append(issues, LinearIssue{
			Title:              t.Title,
			Description:        t.Description,
			Priority:           string(t.Priority),
			Labels:             labels(t.Type, defaultLabels),
			AcceptanceCriteria: criteria,
		})
	}
	return issues
}

func labels(ticketType string, defaults []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, l := range append([]string{ticketType}, defaults...) {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
