// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pm-agent/pkg/types"
)

func TestRulesShouldSkip(t *testing.T) {
	r := NewRules(types.RulesConfig{SkipKeywords: []string{"Standup", "1:1"}})
	assert.True(t, r.ShouldSkip("Daily standup"))
	assert.True(t, r.ShouldSkip("Ana / Mo 1:1"))
	assert.False(t, r.ShouldSkip("Roadmap review"))

	assert.False(t, NewRules(types.RulesConfig{}).ShouldSkip("anything"))
}

func TestRulesIsHighPriority(t *testing.T) {
	r := NewRules(types.RulesConfig{PriorityKeywords: []string{"urgent", "ASAP"}})
	assert.True(t, r.IsHighPriority("Fix login ASAP"))
	assert.True(t, r.IsHighPriority("URGENT: outage"))
	assert.False(t, r.IsHighPriority("Nice to have"))
}

func TestRulesSlackHandle(t *testing.T) {
	r := NewRules(types.RulesConfig{SlackHandles: map[string]string{
		"Tristan Smith": "tristan",
		"Dana":          "@dana",
	}})

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Tristan Smith", "@tristan", true},
		{"tristan smith", "@tristan", true},
		{"Tristan", "@tristan", true},
		{"Tristan Jones", "@tristan", true},
		{"dana", "@dana", true},
		{"Mo", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.SlackHandle(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
