// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/pm-agent/pkg/types"
)

// Export formats accepted in output.exports.
const (
	ExportNotion = "notion"
	ExportLinear = "linear"
)

// Validate checks value ranges and enumerations. It does not require API
// keys; see RequireCredentials.
func Validate(cfg types.Config) error {
	ai := cfg.AI
	out := cfg.Output
	rules := cfg.Rules
	tracker := cfg.Tracker
	notesCfg := cfg.Notes

	return validation.Errors{
		"ai": validation.ValidateStruct(&ai,
			validation.Field(&ai.Provider, validation.Required,
				validation.In(types.ProviderAnthropic, types.ProviderOpenAI).Error("must be anthropic or openai")),
			validation.Field(&ai.Temperature, validation.Min(0.0), validation.Max(2.0)),
			validation.Field(&ai.MaxTokens, validation.Required, validation.Min(1)),
			validation.Field(&ai.CallRetries, validation.Min(0)),
		),
		"output": validation.ValidateStruct(&out,
			validation.Field(&out.Dir, validation.Required),
			validation.Field(&out.Exports, validation.Each(validation.In(ExportNotion, ExportLinear))),
		),
		"rules": validation.ValidateStruct(&rules,
			validation.Field(&rules.MinMeetingLength, validation.Min(0)),
		),
		"notes": validation.ValidateStruct(&notesCfg,
			validation.Field(&notesCfg.MinManualLength, validation.Min(0)),
		),
		"tracker": validation.ValidateStruct(&tracker,
			validation.Field(&tracker.Backend, validation.Required,
				validation.In(types.TrackerJSON, types.TrackerSQLite).Error("must be json or sqlite")),
			validation.Field(&tracker.DataDir, validation.Required),
		),
	}.Filter()
}

// RequireCredentials checks that the key for the selected provider is set.
func RequireCredentials(cfg types.AIConfig) error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.AnthropicAPIKey,
			validation.When(cfg.Provider == types.ProviderAnthropic,
				validation.Required.Error("required for provider anthropic (ANTHROPIC_API_KEY or .secrets/anthropic-api-key)"))),
		validation.Field(&cfg.OpenAIAPIKey,
			validation.When(cfg.Provider == types.ProviderOpenAI,
				validation.Required.Error("required for provider openai (OPENAI_API_KEY or .secrets/openai-api-key)"))),
	)
}
