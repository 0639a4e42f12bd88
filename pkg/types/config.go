// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on HTTP 429 and 503 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// GranolaConfig holds settings for the note-service client.
type GranolaConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root without version (default "https://api.granola.ai").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// CredentialsPath points at Granola's supabase.json.
	CredentialsPath string `json:"credentials_path" yaml:"credentials_path" mapstructure:"credentials_path"`

	// AccessToken bypasses the credentials file when set.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty" mapstructure:"access_token"`

	// ClientVersion is sent as User-Agent and X-Client-Version.
	ClientVersion string `json:"client_version" yaml:"client_version" mapstructure:"client_version"`
}

// Provider names a language-model API.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// AIConfig holds settings for the extraction stage.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier; empty selects the provider default.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	AnthropicAPIKey string `json:"-" yaml:"-" mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `json:"-" yaml:"-" mapstructure:"openai_api_key"`

	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// CallRetries is the number of retry attempts for failed model calls (default 3).
	CallRetries int `json:"call_retries" yaml:"call_retries" mapstructure:"call_retries"`
}

// APIKey returns the key for the configured provider.
func (c AIConfig) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

// PromptConfig customizes the prompts sent to the model.
type PromptConfig struct {
	CompanyContext     string `json:"company_context" yaml:"company_context" mapstructure:"company_context"`
	PMRoleDescription  string `json:"pm_role_description" yaml:"pm_role_description" mapstructure:"pm_role_description"`
	SystemOverride     string `json:"system_override" yaml:"system_override" mapstructure:"system_override"`
	ExtractionOverride string `json:"extraction_override" yaml:"extraction_override" mapstructure:"extraction_override"`

	// DevTicketTypes lists the ticket categories offered to the model.
	DevTicketTypes []string `json:"dev_ticket_types" yaml:"dev_ticket_types" mapstructure:"dev_ticket_types"`
}

// RulesConfig holds keyword and people mappings applied around extraction.
type RulesConfig struct {
	// SkipKeywords skips meetings whose title contains any keyword.
	SkipKeywords []string `json:"skip_keywords" yaml:"skip_keywords" mapstructure:"skip_keywords"`

	// PriorityKeywords raise matching items to high priority.
	PriorityKeywords []string `json:"priority_keywords" yaml:"priority_keywords" mapstructure:"priority_keywords"`

	// SlackHandles maps a person's name to a Slack handle.
	SlackHandles map[string]string `json:"slack_handles" yaml:"slack_handles" mapstructure:"slack_handles"`

	// MinMeetingLength is the minimum merged-notes length worth extracting.
	MinMeetingLength int `json:"min_meeting_length" yaml:"min_meeting_length" mapstructure:"min_meeting_length"`
}

// NotesConfig labels the sections of the merged meeting document.
type NotesConfig struct {
	TranscriptTitle    string `json:"transcript_title" yaml:"transcript_title" mapstructure:"transcript_title"`
	EnhancedNotesTitle string `json:"enhanced_notes_title" yaml:"enhanced_notes_title" mapstructure:"enhanced_notes_title"`
	ManualNotesTitle   string `json:"manual_notes_title" yaml:"manual_notes_title" mapstructure:"manual_notes_title"`
	MinManualLength    int    `json:"min_manual_length" yaml:"min_manual_length" mapstructure:"min_manual_length"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// HTML additionally renders each summary to HTML.
	HTML bool `json:"html" yaml:"html" mapstructure:"html"`

	// Exports lists extra export formats: "notion", "linear".
	Exports []string `json:"exports" yaml:"exports" mapstructure:"exports"`

	IncludeMetadata bool `json:"include_metadata" yaml:"include_metadata" mapstructure:"include_metadata"`

	DefaultTicketLabels []string `json:"default_ticket_labels" yaml:"default_ticket_labels" mapstructure:"default_ticket_labels"`
}

// TrackerBackend selects the processed-ID store implementation.
type TrackerBackend string

const (
	TrackerJSON   TrackerBackend = "json"
	TrackerSQLite TrackerBackend = "sqlite"
)

// TrackerConfig selects and locates the processed-ID store.
type TrackerConfig struct {
	Backend TrackerBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string         `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// Config groups all settings for a pm-agent run.
type Config struct {
	Granola GranolaConfig `json:"granola" yaml:"granola" mapstructure:"granola"`
	AI      AIConfig      `json:"ai" yaml:"ai" mapstructure:"ai"`
	Prompts PromptConfig  `json:"prompts" yaml:"prompts" mapstructure:"prompts"`
	Rules   RulesConfig   `json:"rules" yaml:"rules" mapstructure:"rules"`
	Notes   NotesConfig   `json:"notes" yaml:"notes" mapstructure:"notes"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Tracker TrackerConfig `json:"tracker" yaml:"tracker" mapstructure:"tracker"`
}
