// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles a types.Config from a config file, environment
// variables, a .env file and the secrets directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/pdiddy/pm-agent/internal/granola"
	"github.com/pdiddy/pm-agent/internal/notes"
	"github.com/pdiddy/pm-agent/internal/secrets"
	"github.com/pdiddy/pm-agent/pkg/types"
)

// EnvPrefix namespaces environment overrides, e.g. PM_AGENT_AI_MODEL.
const EnvPrefix = "PM_AGENT"

const (
	DefaultOutputDir        = "outputs"
	DefaultDataDir          = "data"
	DefaultMinMeetingLength = 10
)

var (
	DefaultPriorityKeywords = []string{"urgent", "blocker", "asap"}
	DefaultDevTicketTypes   = []string{"backend", "frontend", "design"}
)

// legacyEnv binds config keys to the unprefixed variable names older
// deployments set.
var legacyEnv = map[string]string{
	"ai.provider":                  "AI_PROVIDER",
	"ai.model":                     "AI_MODEL",
	"ai.temperature":               "AI_TEMPERATURE",
	"ai.max_tokens":                "MAX_TOKENS",
	"ai.anthropic_api_key":         "ANTHROPIC_API_KEY",
	"ai.openai_api_key":            "OPENAI_API_KEY",
	"output.dir":                   "OUTPUT_DIR",
	"output.default_ticket_labels": "DEFAULT_TICKET_LABELS",
	"prompts.company_context":      "COMPANY_CONTEXT",
	"prompts.pm_role_description":  "PM_ROLE_DESCRIPTION",
	"prompts.system_override":      "SYSTEM_PROMPT_OVERRIDE",
	"prompts.extraction_override":  "EXTRACTION_PROMPT_OVERRIDE",
	"prompts.dev_ticket_types":     "DEV_TICKET_TYPES",
	"rules.min_meeting_length":     "MIN_MEETING_LENGTH",
	"rules.skip_keywords":          "SKIP_RECURRING_KEYWORDS",
	"rules.priority_keywords":      "PRIORITY_KEYWORDS",
	"granola.access_token":         "GRANOLA_ACCESS_TOKEN",
	slackHandlesKey:                "SLACK_HANDLES",
	slackHandlesFileKey:            "SLACK_HANDLES_FILE",
}

// Slack handles arrive from the environment as "Name:@handle" pairs or a
// JSON file, so they live outside the rules section and are merged in.
const (
	slackHandlesKey     = "slack_handles"
	slackHandlesFileKey = "slack_handles_file"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("granola.base_url", granola.DefaultBaseURL)
	v.SetDefault("granola.client_version", granola.DefaultClientVersion)
	v.SetDefault("granola.credentials_path", granola.DefaultCredentialsPath())
	v.SetDefault("granola.timeout", 30*time.Second)
	v.SetDefault("granola.max_retries", 5)

	v.SetDefault("ai.provider", string(types.ProviderAnthropic))
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.timeout", 120*time.Second)
	v.SetDefault("ai.max_retries", 5)
	v.SetDefault("ai.call_retries", 3)

	v.SetDefault("prompts.dev_ticket_types", DefaultDevTicketTypes)

	v.SetDefault("rules.skip_keywords", []string{})
	v.SetDefault("rules.priority_keywords", DefaultPriorityKeywords)
	v.SetDefault("rules.min_meeting_length", DefaultMinMeetingLength)

	v.SetDefault("notes.transcript_title", notes.DefaultTranscriptTitle)
	v.SetDefault("notes.enhanced_notes_title", notes.DefaultEnhancedNotesTitle)
	v.SetDefault("notes.manual_notes_title", notes.DefaultManualNotesTitle)
	v.SetDefault("notes.min_manual_length", notes.DefaultMinManualLength)

	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.html", false)
	v.SetDefault("output.exports", []string{})
	v.SetDefault("output.include_metadata", true)

	v.SetDefault("tracker.backend", string(types.TrackerJSON))
	v.SetDefault("tracker.data_dir", DefaultDataDir)
}

// BindEnv enables PM_AGENT_* overrides for every key and binds the legacy
// variable names.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	return nil
}

// LoadDotEnv exports variables from a .env file into the process
// environment without overriding variables already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a Config, fills API keys and the note-service token
// from s when the config leaves them empty, and validates the result.
func Load(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.AI.Provider = types.Provider(strings.ToLower(strings.TrimSpace(string(cfg.AI.Provider))))
	if cfg.AI.AnthropicAPIKey == "" {
		cfg.AI.AnthropicAPIKey = s.Get(secrets.AnthropicAPIKey)
	}
	if cfg.AI.OpenAIAPIKey == "" {
		cfg.AI.OpenAIAPIKey = s.Get(secrets.OpenAIAPIKey)
	}
	if cfg.Granola.AccessToken == "" {
		cfg.Granola.AccessToken = s.Get(secrets.GranolaAccessToken)
	}

	cfg.Prompts.DevTicketTypes = cleanList(cfg.Prompts.DevTicketTypes)
	cfg.Rules.SkipKeywords = cleanList(cfg.Rules.SkipKeywords)
	cfg.Rules.PriorityKeywords = cleanList(cfg.Rules.PriorityKeywords)
	cfg.Output.DefaultTicketLabels = cleanList(cfg.Output.DefaultTicketLabels)
	cfg.Output.Exports = cleanList(cfg.Output.Exports)

	handles, err := slackHandles(v.GetString(slackHandlesFileKey), v.GetString(slackHandlesKey))
	if err != nil {
		return types.Config{}, err
	}
	if len(handles) > 0 {
		if cfg.Rules.SlackHandles == nil {
			cfg.Rules.SlackHandles = make(map[string]string, len(handles))
		}
		for name, handle := range handles {
			cfg.Rules.SlackHandles[name] = handle
		}
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// cleanList splits comma-joined entries, trims them and drops blanks. A
// list set from the environment arrives as a single comma-joined element
// or as already-split but untrimmed elements.
func cleanList(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, item := range strings.Split(entry, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// slackHandles reads name-to-handle pairs from a JSON file when one exists,
// else from a "Name:@handle, Name2:@handle2" list.
func slackHandles(file, list string) (map[string]string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		switch {
		case err == nil:
			var handles map[string]string
			if err := json.Unmarshal(data, &handles); err != nil {
				return nil, fmt.Errorf("parsing slack handles file %s: %w", file, err)
			}
			return handles, nil
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading slack handles file %s: %w", file, err)
		}
	}
	return ParseSlackHandles(list), nil
}

// ParseSlackHandles parses "Name:@handle, Name2:@handle2". Pairs without a
// colon are ignored.
func ParseSlackHandles(list string) map[string]string {
	handles := make(map[string]string)
	for _, pair := range strings.Split(list, ",") {
		name, handle, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		if name, handle = strings.TrimSpace(name), strings.TrimSpace(handle); name != "" && handle != "" {
			handles[name] = handle
		}
	}
	return handles
}
