// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Priority ranks an action item or ticket.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PMActionItem is a task owned by the product manager.
type PMActionItem struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`

	// Deadline is free text as mentioned in the meeting, nil when none was given.
	Deadline *string `json:"deadline" yaml:"deadline"`
}

// DevTicket is a development ticket to be filed with engineering.
type DevTicket struct {
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	Type               string   `json:"type" yaml:"type"`
	Priority           Priority `json:"priority" yaml:"priority"`
	AcceptanceCriteria []string `json:"acceptance_criteria" yaml:"acceptance_criteria"`
}

// AssignedAction is an action item for someone other than the PM.
type AssignedAction struct {
	Assignee string `json:"assignee" yaml:"assignee"`
	Task     string `json:"task" yaml:"task"`
}

// Summary is the meeting overview produced alongside the task lists.
type Summary struct {
	Overview              string           `json:"overview" yaml:"overview"`
	KeyDecisions          []string         `json:"key_decisions" yaml:"key_decisions"`
	AdditionalActionItems []AssignedAction `json:"additional_action_items" yaml:"additional_action_items"`
	NextSteps             []string         `json:"next_steps" yaml:"next_steps"`
}

// IsZero reports whether the summary carries no content at all.
func (s Summary) IsZero() bool {
	return s.Overview == "" && len(s.KeyDecisions) == 0 &&
		len(s.AdditionalActionItems) == 0 && len(s.NextSteps) == 0
}

// ExtractionResult is the structured record extracted from one meeting.
type ExtractionResult struct {
	PMActionItems []PMActionItem `json:"pm_action_items" yaml:"pm_action_items"`
	DevTickets    []DevTicket    `json:"dev_tickets" yaml:"dev_tickets"`
	Summary       Summary        `json:"summary" yaml:"summary"`
}

// MeetingMeta identifies the meeting a result belongs to when it is persisted.
type MeetingMeta struct {
	Title      string
	Date       string
	DocumentID string
	RunID      string
}
