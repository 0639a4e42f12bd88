// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/pm-agent/pkg/types"
)

// DefaultSystemPrompt frames the model as a meeting-notes analyst.
const DefaultSystemPrompt = `You are an AI assistant that analyzes meeting notes and extracts structured information.

Your task is to analyze meeting notes and extract:
1. Action items specifically for the PM (Product Manager)
2. Development tickets that need to be created (categorized as {{.TicketTypeList}})
3. A concise meeting summary plus any additional action items not captured in categories 1 or 2
4. Action items for anyone else. Use specific names to identify action item owners.

Be specific and actionable. For development tickets, include enough context that an engineer could understand what needs to be built.`

// defaultExtractionPrompt is rendered with the merged meeting notes.
const defaultExtractionPrompt = `Analyze the following meeting notes and extract information in the specified JSON format.

Meeting Notes:
{{.MeetingNotes}}

Return a JSON object with this exact structure:
{
  "pm_action_items": [
    {
      "title": "Brief action item title",
      "description": "Detailed description of what needs to be done",
      "priority": "high|medium|low",
      "deadline": "any mentioned deadline or null"
    }
  ],
  "dev_tickets": [
    {
      "title": "Ticket title",
      "description": "Detailed technical description",
      "type": "{{.TicketTypes}}",
      "priority": "high|medium|low",
      "acceptance_criteria": ["criterion 1", "criterion 2"]
    }
  ],
  "summary": {
    "overview": "2-3 sentence meeting summary",
    "key_decisions": ["decision 1", "decision 2"],
    "additional_action_items": [
      {
        "assignee": "person name or 'unassigned'",
        "task": "what needs to be done"
      }
    ],
    "next_steps": ["next step 1", "next step 2"]
  }
}

Only include items that are explicitly mentioned or clearly implied in the notes. If a section has no items, use an empty array.`

// DefaultTicketTypes are offered to the model when none are configured.
var DefaultTicketTypes = []string{"backend", "frontend", "design"}

// Prompts holds the rendered system prompt and the extraction template.
type Prompts struct {
	System      string
	extraction  *template.Template
	legacy      string
	ticketTypes []string
}

const legacyPlaceholder = "{meeting_notes}"


type promptData struct {
	MeetingNotes   string
	TicketTypes    string
	TicketTypeList string
}

// NewPrompts builds prompts from config. A system override replaces the
// default entirely; otherwise company and PM-role context are appended. An
// extraction override is a template using {{.MeetingNotes}}, or a legacy
// format string with a {meeting_notes} placeholder and doubled braces.
func NewPrompts(cfg types.PromptConfig) (Prompts, error) {
	ticketTypes := cfg.DevTicketTypes
	if len(ticketTypes) == 0 {
		ticketTypes = DefaultTicketTypes
	}
	data := promptData{
		TicketTypes:    strings.Join(ticketTypes, "|"),
		TicketTypeList: joinOr(ticketTypes),
	}

	system := cfg.SystemOverride
	if system == "" {
		tmpl, err := template.New("system").Parse(DefaultSystemPrompt)
		if err != nil {
			return Prompts{}, fmt.Errorf("parsing system prompt: %w", err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return Prompts{}, fmt.Errorf("rendering system prompt: %w", err)
		}
		system = buf.String()
		if cfg.CompanyContext != "" {
			system += "\n\nCompany Context: " + cfg.CompanyContext
		}
		if cfg.PMRoleDescription != "" {
			system += "\n\nPM Role: " + cfg.PMRoleDescription
		}
	}

	if strings.Contains(cfg.ExtractionOverride, legacyPlaceholder) {
		legacy := strings.NewReplacer("{{", "{", "}}", "}").Replace(cfg.ExtractionOverride)
		return Prompts{System: system, legacy: legacy, ticketTypes: ticketTypes}, nil
	}

	source := defaultExtractionPrompt
	if cfg.ExtractionOverride != "" {
		source = cfg.ExtractionOverride
	}
	tmpl, err := template.New("extraction").Parse(source)
	if err != nil {
		return Prompts{}, fmt.Errorf("parsing extraction prompt: %w", err)
	}

	return Prompts{System: system, extraction: tmpl, ticketTypes: ticketTypes}, nil
}

// Extraction renders the extraction prompt for one meeting's notes.
func (p Prompts) Extraction(notes string) (string, error) {
	if p.extraction == nil {
		return strings.ReplaceAll(p.legacy, legacyPlaceholder, notes), nil
	}
	var buf bytes.Buffer
	data := promptData{
		MeetingNotes:   notes,
		TicketTypes:    strings.Join(p.ticketTypes, "|"),
		TicketTypeList: joinOr(p.ticketTypes),
	}
	if err := p.extraction.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering extraction prompt: %w", err)
	}
	return buf.String(), nil
}

// joinOr renders ["a","b","c"] as "a, b, or c".
func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}
